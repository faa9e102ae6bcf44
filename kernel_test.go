package pixfilter

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestPresetKernels(t *testing.T) {
	for _, f := range []Filter{BoxBlur, GaussianBlur, EdgeDetection, Sharpen, Emboss} {
		k, ok := KernelFor(f)
		if !ok {
			t.Fatalf("%v has no kernel", f)
		}
		if err := k.Validate(); err != nil {
			t.Errorf("%v: %v", f, err)
		}
		if k.Width != 3 || k.Height != 3 || k.OriginRow != 1 || k.OriginCol != 1 {
			t.Errorf("%v: expected 3x3 with origin (1,1), got %dx%d (%d,%d)",
				f, k.Width, k.Height, k.OriginRow, k.OriginCol)
		}
		if k.Name != f.String() {
			t.Errorf("Expected kernel name %q, got %q", f.String(), k.Name)
		}
	}
}

func TestKernelWeightSums(t *testing.T) {
	tests := []struct {
		k    Kernel
		want float64
	}{
		{BoxBlurKernel(), 1},
		{GaussianBlurKernel(), 1},
		{EdgeDetectionKernel(), 0},
		{SharpenKernel(), 1},
		{EmbossKernel(), 1},
	}
	for _, tt := range tests {
		var sum float64
		for _, w := range tt.k.Weights {
			sum += float64(w)
		}
		if math.Abs(sum-tt.want) > 1e-6 {
			t.Errorf("%s: expected weights to sum to %v, got %v", tt.k.Name, tt.want, sum)
		}
	}
}

func TestPresetsAreFresh(t *testing.T) {
	k := SharpenKernel()
	k.Weights[4] = 100
	if SharpenKernel().At(1, 1) != 5 {
		t.Error("Modifying a returned preset changed the next one")
	}
}

func TestNewKernelCopiesWeights(t *testing.T) {
	w := []float32{1, 2, 3}
	k, err := NewKernel("row", 3, 1, 0, 1, w)
	if err != nil {
		t.Fatal(err)
	}
	w[0] = 9
	if k.At(0, 0) != 1 {
		t.Error("NewKernel should copy its weights")
	}
}

func TestNewKernelInvalid(t *testing.T) {
	tests := []struct {
		name                  string
		width, height, or, oc int
		weights               []float32
	}{
		{"zero size", 0, 3, 0, 0, nil},
		{"weight count", 3, 3, 1, 1, []float32{1, 2, 3}},
		{"origin row", 3, 1, 1, 0, []float32{1, 2, 3}},
		{"origin col", 3, 1, 0, 3, []float32{1, 2, 3}},
		{"negative origin", 1, 1, -1, 0, []float32{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKernel(tt.name, tt.width, tt.height, tt.or, tt.oc, tt.weights)
			if !errors.Is(err, ErrInvalidKernel) {
				t.Errorf("Expected ErrInvalidKernel, got %v", err)
			}
		})
	}
}

func TestEmbeddedKernels(t *testing.T) {
	names := EmbeddedKernels()
	want := []string{"gaussian5", "motion5", "sobel-x"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("Expected %q at %d, got %q", n, i, names[i])
		}
		k, err := LoadKernel(n)
		if err != nil {
			t.Errorf("LoadKernel(%q) failed: %v", n, err)
			continue
		}
		if k.Name == "" {
			t.Errorf("%q has no name", n)
		}
	}
}

func TestGaussian5Normalised(t *testing.T) {
	k, err := LoadKernel("gaussian5")
	if err != nil {
		t.Fatal(err)
	}
	if k.Width != 5 || k.Height != 5 || k.OriginRow != 2 || k.OriginCol != 2 {
		t.Fatalf("Unexpected shape %dx%d origin (%d,%d)", k.Width, k.Height, k.OriginRow, k.OriginCol)
	}
	var sum float64
	for _, w := range k.Weights {
		sum += float64(w)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Errorf("Expected weights to sum to 1, got %v", sum)
	}
}

func TestLoadKernelFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diag.json")
	data := `{"name": "diag", "width": 2, "height": 2, "origin": [1, 0], "weights": [0.5, 0, 0, 0.5]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	k, err := LoadKernel(path)
	if err != nil {
		t.Fatalf("LoadKernel failed: %v", err)
	}
	if k.Name != "diag" || k.Width != 2 || k.OriginRow != 1 || k.OriginCol != 0 || k.At(1, 1) != 0.5 {
		t.Errorf("Unexpected kernel %+v", k)
	}
}

func TestLoadKernelErrors(t *testing.T) {
	if _, err := LoadKernel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}
	if _, err := ParseKernel([]byte("{")); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
	_, err := ParseKernel([]byte(`{"name": "bad", "width": 2, "height": 2, "weights": [1]}`))
	if !errors.Is(err, ErrInvalidKernel) {
		t.Errorf("Expected ErrInvalidKernel, got %v", err)
	}
}
