package pixfilter

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestApplyKernelIdentity(t *testing.T) {
	src := patternBuffer(7, 9)
	for _, mode := range []EdgeMode{EdgeBand, EdgeTorus, EdgeClamp} {
		e := NewEngine(WithEdgeMode(mode))
		out, err := e.ApplyKernel(context.Background(), src, IdentityKernel())
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", mode, err)
		}
		for i := range src.Pix {
			if out.Pix[i] != src.Pix[i] {
				t.Fatalf("%v: byte %d expected %d, got %d", mode, i, src.Pix[i], out.Pix[i])
			}
		}
	}
}

func TestApplyKernelDoesNotModifySource(t *testing.T) {
	src := patternBuffer(6, 6)
	before := src.Clone()
	if _, err := NewEngine().ApplyKernel(context.Background(), src, SharpenKernel()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range src.Pix {
		if src.Pix[i] != before.Pix[i] {
			t.Fatalf("Source byte %d modified", i)
		}
	}
}

func TestApplyKernelTooLarge(t *testing.T) {
	logger, logs := captureLogger()
	e := NewEngine(WithLogger(logger))

	for _, size := range [][2]int{{2, 5}, {5, 2}, {2, 2}} {
		src := solidBuffer(size[0], size[1], 1, 2, 3)
		out, err := e.ApplyKernel(context.Background(), src, BoxBlurKernel())
		if !errors.Is(err, ErrKernelTooLarge) {
			t.Errorf("%dx%d: expected ErrKernelTooLarge, got %v", size[0], size[1], err)
		}
		if out.Pix != nil {
			t.Errorf("%dx%d: expected no output", size[0], size[1])
		}
	}
	if !strings.Contains(logs.String(), "kernel too big") {
		t.Errorf("Expected a warning in the log, got %q", logs.String())
	}
}

func TestApplyKernelExactFit(t *testing.T) {
	src := solidBuffer(3, 3, 40, 80, 120)
	out, err := NewEngine(WithWorkers(1)).ApplyKernel(context.Background(), src, GaussianBlurKernel())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := out.Offset(1, 1)
	if out.Pix[o+offRed] != 40 || out.Pix[o+offGreen] != 80 || out.Pix[o+offBlue] != 120 {
		t.Errorf("Expected the solid colour back, got %v", out.Pix[o:o+4])
	}
}

// float32Sum adds w*v for every weight in the same order and precision as
// the convolution loop.
func float32Sum(weights []float32, v byte) float32 {
	var sum float32
	for _, w := range weights {
		sum += float32(w * float32(v))
	}
	return sum
}

func TestApplyKernelSolidColour(t *testing.T) {
	src := solidBuffer(8, 12, 100, 150, 200)
	for _, k := range []Kernel{BoxBlurKernel(), GaussianBlurKernel(), SharpenKernel(), EdgeDetectionKernel()} {
		out, err := NewEngine().ApplyKernel(context.Background(), src, k)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", k.Name, err)
		}
		want := [4]byte{
			0xFF,
			narrowWrap(float32Sum(k.Weights, 200)),
			narrowWrap(float32Sum(k.Weights, 150)),
			narrowWrap(float32Sum(k.Weights, 100)),
		}
		for o := 0; o < len(out.Pix); o += BytesPerPixel {
			if [4]byte(out.Pix[o:o+4]) != want {
				t.Fatalf("%s: pixel at %d expected %v, got %v", k.Name, o/4, want, out.Pix[o:o+4])
			}
		}
	}
}

// verticalEdge is dark in columns [0, 4) and bright in [4, 8).
func verticalEdge() PixelBuffer {
	buf := NewPixelBuffer(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			o := buf.Offset(x, y)
			buf.Pix[o+offAlpha] = 0xFF
			if x >= 4 {
				buf.Pix[o+offBlue] = 255
				buf.Pix[o+offGreen] = 255
				buf.Pix[o+offRed] = 255
			}
		}
	}
	return buf
}

func TestEdgeDetectionNarrowing(t *testing.T) {
	src := verticalEdge()
	tests := []struct {
		narrowing  Narrowing
		dark, lite byte
	}{
		// -765 wraps to 3, +765 wraps to 253.
		{NarrowWrap, 3, 253},
		{NarrowClamp, 0, 255},
	}
	for _, tt := range tests {
		e := NewEngine(WithNarrowing(tt.narrowing))
		out, err := e.ApplyKernel(context.Background(), src, EdgeDetectionKernel())
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tt.narrowing, err)
		}
		for y := 0; y < 8; y++ {
			if got := out.Pix[out.Offset(3, y)+offRed]; got != tt.dark {
				t.Errorf("%v row %d: expected dark side %d, got %d", tt.narrowing, y, tt.dark, got)
			}
			if got := out.Pix[out.Offset(4, y)+offRed]; got != tt.lite {
				t.Errorf("%v row %d: expected bright side %d, got %d", tt.narrowing, y, tt.lite, got)
			}
			if got := out.Pix[out.Offset(1, y)+offRed]; got != 0 {
				t.Errorf("%v row %d: expected flat region 0, got %d", tt.narrowing, y, got)
			}
		}
	}
}

func TestConvolutionRotatesKernel(t *testing.T) {
	// A 3x1 kernel with its weight on the left reads the pixel to the right
	// once rotated.
	k, err := NewKernel("shift", 3, 1, 0, 1, []float32{1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	src := NewPixelBuffer(6, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 6; x++ {
			src.Pix[src.Offset(x, y)+offRed] = byte(10 * (x + 1))
		}
	}

	out, err := NewEngine().ApplyKernel(context.Background(), src, k)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for x := 0; x < 5; x++ {
		want := src.Pix[src.Offset(x+1, 0)+offRed]
		if got := out.Pix[out.Offset(x, 0)+offRed]; got != want {
			t.Errorf("column %d: expected %d, got %d", x, want, got)
		}
	}
	// Past the right edge the column shifts back by the kernel width.
	if got, want := out.Pix[out.Offset(5, 0)+offRed], src.Pix[src.Offset(3, 0)+offRed]; got != want {
		t.Errorf("last column: expected %d, got %d", want, got)
	}
}

func TestEmbossRotation(t *testing.T) {
	// A single bright pixel spreads the rotated kernel around it.
	src := NewPixelBuffer(5, 5)
	src.Pix[src.Offset(2, 2)+offRed] = 10
	out, err := NewEngine(WithWorkers(1), WithNarrowing(NarrowClamp)).ApplyKernel(context.Background(), src, EmbossKernel())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Output (1,1) sees the impulse through weight (0,0) = -2, clamped to 0,
	// and output (3,3) through weight (2,2) = 2. A correlation would give
	// the opposite.
	if got := out.Pix[out.Offset(1, 1)+offRed]; got != 0 {
		t.Errorf("Expected (1,1) = 0, got %d", got)
	}
	if got := out.Pix[out.Offset(3, 3)+offRed]; got != 20 {
		t.Errorf("Expected (3,3) = 20, got %d", got)
	}
}

// shiftDown is a 1x3 kernel whose output row p reads row p+1.
func shiftDown(t *testing.T) Kernel {
	t.Helper()
	k, err := NewKernel("shift-down", 1, 3, 1, 0, []float32{1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEdgeModesAtBandSeams(t *testing.T) {
	src := rowBuffer(4, 12, func(y int) byte { return byte(10 * y) })
	tests := []struct {
		mode EdgeMode
		// Expected output for the last row of band 0 (row 2) and the last row
		// of the image (row 11).
		row2, row11 byte
	}{
		{EdgeBand, 0, 90},
		{EdgeTorus, 30, 0},
		{EdgeClamp, 30, 110},
	}
	for _, tt := range tests {
		e := NewEngine(WithEdgeMode(tt.mode))
		out, err := e.ApplyKernel(context.Background(), src, shiftDown(t))
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tt.mode, err)
		}
		if got := out.Pix[out.Offset(0, 2)+offRed]; got != tt.row2 {
			t.Errorf("%v: row 2 expected %d, got %d", tt.mode, tt.row2, got)
		}
		if got := out.Pix[out.Offset(0, 11)+offRed]; got != tt.row11 {
			t.Errorf("%v: row 11 expected %d, got %d", tt.mode, tt.row11, got)
		}
		if got := out.Pix[out.Offset(0, 4)+offRed]; got != 50 {
			t.Errorf("%v: interior row 4 expected 50, got %d", tt.mode, got)
		}
	}
}

func TestEdgeBandShortBands(t *testing.T) {
	// Five rows over four workers leaves single-row bands.
	src := rowBuffer(4, 5, func(y int) byte { return byte(10 * (y + 1)) })
	out, err := NewEngine().ApplyKernel(context.Background(), src, shiftDown(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for y := 2; y < 5; y++ {
		want := src.Pix[src.Offset(0, y)+offRed]
		if got := out.Pix[out.Offset(0, y)+offRed]; got != want {
			t.Errorf("row %d: expected %d, got %d", y, want, got)
		}
	}
}

func TestResultIndependentOfWorkers(t *testing.T) {
	src := patternBuffer(9, 17)
	for _, mode := range []EdgeMode{EdgeTorus, EdgeClamp} {
		ref, err := NewEngine(WithWorkers(1), WithEdgeMode(mode)).ApplyKernel(context.Background(), src, EmbossKernel())
		if err != nil {
			t.Fatal(err)
		}
		for _, workers := range []int{2, 3, 7} {
			out, err := NewEngine(WithWorkers(workers), WithEdgeMode(mode)).ApplyKernel(context.Background(), src, EmbossKernel())
			if err != nil {
				t.Fatal(err)
			}
			for i := range ref.Pix {
				if out.Pix[i] != ref.Pix[i] {
					t.Fatalf("%v with %d workers: byte %d differs", mode, workers, i)
				}
			}
		}
	}
}

func TestNarrowWrap(t *testing.T) {
	tests := []struct {
		in   float32
		want byte
	}{
		{0, 0},
		{255.9, 255},
		{256, 0},
		{300, 44},
		{-1, 255},
		{-0.5, 0},
		{-765, 3},
		{float32(math.NaN()), 0},
		{1e10, 255},
		{-1e10, 0},
	}
	for _, tt := range tests {
		if got := narrowWrap(tt.in); got != tt.want {
			t.Errorf("narrowWrap(%v) = %d, expected %d", tt.in, got, tt.want)
		}
	}
}

func TestNarrowClamp(t *testing.T) {
	tests := []struct {
		in   float32
		want byte
	}{
		{-5, 0},
		{0, 0},
		{254.99, 254},
		{255, 255},
		{300, 255},
		{float32(math.NaN()), 0},
	}
	for _, tt := range tests {
		if got := narrowClamp(tt.in); got != tt.want {
			t.Errorf("narrowClamp(%v) = %d, expected %d", tt.in, got, tt.want)
		}
	}
}

func TestParseEdgeModeAndNarrowing(t *testing.T) {
	for _, m := range []EdgeMode{EdgeBand, EdgeTorus, EdgeClamp} {
		if got, err := ParseEdgeMode(m.String()); err != nil || got != m {
			t.Errorf("ParseEdgeMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	for _, n := range []Narrowing{NarrowWrap, NarrowClamp} {
		if got, err := ParseNarrowing(n.String()); err != nil || got != n {
			t.Errorf("ParseNarrowing(%q) = %v, %v", n.String(), got, err)
		}
	}
	if _, err := ParseEdgeMode("mirror"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption, got %v", err)
	}
}

func BenchmarkApplyKernel(b *testing.B) {
	src := patternBuffer(512, 512)
	e := NewEngine()
	k := GaussianBlurKernel()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.ApplyKernel(context.Background(), src, k); err != nil {
			b.Fatal(err)
		}
	}
}
