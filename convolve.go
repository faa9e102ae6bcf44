package pixfilter

import (
	"context"
	"fmt"
	"math"
)

// EdgeMode selects how samples that fall outside their region are brought
// back in.
type EdgeMode int

const (
	// EdgeBand shifts out-of-range rows by one kernel height back into the
	// worker's own band and out-of-range columns by one kernel width back
	// into the image. Pixels near a band boundary therefore sample the far
	// side of their band, which leaves a visible seam between bands. If a
	// band is shorter than the kernel the shifted row is clamped to the
	// band.
	EdgeBand EdgeMode = iota

	// EdgeTorus wraps rows and columns around the whole image.
	EdgeTorus

	// EdgeClamp repeats the image's edge pixels.
	EdgeClamp
)

func (m EdgeMode) String() string {
	switch m {
	case EdgeBand:
		return "band"
	case EdgeTorus:
		return "torus"
	case EdgeClamp:
		return "clamp"
	default:
		return fmt.Sprintf("EdgeMode(%d)", int(m))
	}
}

// ParseEdgeMode maps a CLI name onto an EdgeMode.
func ParseEdgeMode(name string) (EdgeMode, error) {
	for _, m := range []EdgeMode{EdgeBand, EdgeTorus, EdgeClamp} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: edge mode %q", ErrInvalidOption, name)
}

// Narrowing selects how a floating-point channel sum becomes a byte.
type Narrowing int

const (
	// NarrowWrap truncates toward zero and keeps the low eight bits, so
	// 256 becomes 0 and -1 becomes 255.
	NarrowWrap Narrowing = iota

	// NarrowClamp truncates toward zero and saturates to [0, 255].
	NarrowClamp
)

func (n Narrowing) String() string {
	switch n {
	case NarrowWrap:
		return "wrap"
	case NarrowClamp:
		return "clamp"
	default:
		return fmt.Sprintf("Narrowing(%d)", int(n))
	}
}

// ParseNarrowing maps a CLI name onto a Narrowing.
func ParseNarrowing(name string) (Narrowing, error) {
	for _, n := range []Narrowing{NarrowWrap, NarrowClamp} {
		if n.String() == name {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: narrowing %q", ErrInvalidOption, name)
}

func (n Narrowing) apply(v float32) byte {
	if n == NarrowClamp {
		return narrowClamp(v)
	}
	return narrowWrap(v)
}

// narrowWrap matches a float-to-int-to-byte cast: the int conversion
// saturates at the int32 range and maps NaN to 0.
func narrowWrap(v float32) byte {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case v >= math.MaxInt32:
		return 0xFF
	case v <= math.MinInt32:
		return 0
	}
	return byte(int32(v))
}

func narrowClamp(v float32) byte {
	switch {
	case math.IsNaN(float64(v)) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}

// ApplyKernel convolves buf with k and returns a new buffer of the same
// size. Channel sums are accumulated in float32, alpha is written as 0xFF.
//
// ApplyKernel fails with ErrKernelTooLarge, without producing output, when
// the kernel is wider or taller than the image. buf must not be modified
// while the call is running.
func (e *Engine) ApplyKernel(ctx context.Context, buf PixelBuffer, k Kernel) (PixelBuffer, error) {
	if err := e.validate(); err != nil {
		return PixelBuffer{}, err
	}
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, err
	}
	if err := k.Validate(); err != nil {
		return PixelBuffer{}, err
	}
	if buf.Width < k.Width || buf.Height < k.Height {
		e.log().Warn("can't process the image with the given kernel, kernel too big",
			"kernel", k.Name,
			"kernel_width", k.Width, "kernel_height", k.Height,
			"image_width", buf.Width, "image_height", buf.Height)
		return PixelBuffer{}, fmt.Errorf("%w: %dx%d kernel %q on %dx%d image",
			ErrKernelTooLarge, k.Width, k.Height, k.Name, buf.Width, buf.Height)
	}

	out := NewPixelBuffer(buf.Width, buf.Height)
	cols := e.columnTable(buf.Width, k)
	err := e.run(ctx, "apply kernel "+k.Name, buf.Height, func(ctx context.Context, b Band) error {
		return e.convolveBand(ctx, buf, out, k, cols, b)
	})
	return out, err
}

// columnTable precomputes, for every output column and kernel tap column,
// the byte offset of the sampled pixel within a row.
func (e *Engine) columnTable(width int, k Kernel) []int {
	tab := make([]int, width*k.Width)
	for c := 0; c < width; c++ {
		col := c - k.OriginCol
		for kx := 0; kx < k.Width; kx++ {
			tab[c*k.Width+kx] = e.sampleCol(col+k.Width-kx-1, width, k.Width) * BytesPerPixel
		}
	}
	return tab
}

func (e *Engine) sampleCol(c, width, kw int) int {
	switch e.Edge {
	case EdgeTorus:
		return wrapIndex(c, width)
	case EdgeClamp:
		return clampIndex(c, 0, width-1)
	}
	if c < 0 {
		c += kw
	} else if c >= width {
		c -= kw
	}
	return c
}

func (e *Engine) sampleRow(r int, b Band, height, kh int) int {
	switch e.Edge {
	case EdgeTorus:
		return wrapIndex(r, height)
	case EdgeClamp:
		return clampIndex(r, 0, height-1)
	}
	if r < b.Start {
		r += kh
	} else if r >= b.End {
		r -= kh
	}
	return clampIndex(r, b.Start, b.End-1)
}

func (e *Engine) convolveBand(ctx context.Context, src, dst PixelBuffer, k Kernel, cols []int, b Band) error {
	if b.Rows() == 0 {
		return nil
	}
	kw, kh := k.Width, k.Height
	stride := src.Stride()
	rows := make([]int, kh)

	for row := b.Start - k.OriginRow; row < b.End-k.OriginRow; row++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for ky := 0; ky < kh; ky++ {
			rows[ky] = e.sampleRow(row+kh-ky-1, b, src.Height, kh) * stride
		}

		o := (row + k.OriginRow) * stride
		for c := 0; c < src.Width; c++ {
			var blue, green, red float32
			tap := cols[c*kw : (c+1)*kw]
			for n, w := range k.Weights {
				pos := rows[n/kw] + tap[n%kw]
				px := src.Pix[pos+offBlue : pos+offRed+1]
				// Each product is rounded to float32 before it is added.
				blue += float32(w * float32(px[0]))
				green += float32(w * float32(px[1]))
				red += float32(w * float32(px[2]))
			}
			dst.Pix[o+offAlpha] = 0xFF
			dst.Pix[o+offBlue] = e.Narrowing.apply(blue)
			dst.Pix[o+offGreen] = e.Narrowing.apply(green)
			dst.Pix[o+offRed] = e.Narrowing.apply(red)
			o += BytesPerPixel
		}
	}
	return nil
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func clampIndex(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}
