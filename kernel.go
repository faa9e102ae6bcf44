package pixfilter

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed kerneldata/*.json
var kernelFS embed.FS

// Kernel is a convolution matrix with an anchor. Weights are stored flat in
// row-major order. OriginRow/OriginCol name the cell aligned with the
// output pixel.
type Kernel struct {
	Name      string
	Weights   []float32
	Width     int
	Height    int
	OriginRow int
	OriginCol int
}

// NewKernel builds and validates a kernel. The weights slice is copied.
func NewKernel(name string, width, height, originRow, originCol int, weights []float32) (Kernel, error) {
	k := Kernel{
		Name:      name,
		Weights:   append([]float32(nil), weights...),
		Width:     width,
		Height:    height,
		OriginRow: originRow,
		OriginCol: originCol,
	}
	if err := k.Validate(); err != nil {
		return Kernel{}, err
	}
	return k, nil
}

// Validate checks that the matrix matches the declared size and that the
// origin lies inside it.
func (k Kernel) Validate() error {
	switch {
	case k.Width <= 0 || k.Height <= 0:
		return fmt.Errorf("%w: %q has size %dx%d", ErrInvalidKernel, k.Name, k.Width, k.Height)
	case len(k.Weights) != k.Width*k.Height:
		return fmt.Errorf("%w: %q has %d weights for %dx%d",
			ErrInvalidKernel, k.Name, len(k.Weights), k.Width, k.Height)
	case k.OriginRow < 0 || k.OriginRow >= k.Height || k.OriginCol < 0 || k.OriginCol >= k.Width:
		return fmt.Errorf("%w: %q origin (%d,%d) outside %dx%d",
			ErrInvalidKernel, k.Name, k.OriginRow, k.OriginCol, k.Width, k.Height)
	}
	return nil
}

// At returns the weight at row r, column c.
func (k Kernel) At(r, c int) float32 {
	return k.Weights[r*k.Width+c]
}

func kernel3x3(name string, w ...float32) Kernel {
	return Kernel{Name: name, Weights: w, Width: 3, Height: 3, OriginRow: 1, OriginCol: 1}
}

// BoxBlurKernel returns the 3x3 mean filter.
func BoxBlurKernel() Kernel {
	const n = 1.0 / 9
	return kernel3x3("box-blur",
		n, n, n,
		n, n, n,
		n, n, n)
}

// GaussianBlurKernel returns the 3x3 binomial approximation of a Gaussian.
func GaussianBlurKernel() Kernel {
	return kernel3x3("gaussian-blur",
		1.0/16, 2.0/16, 1.0/16,
		2.0/16, 4.0/16, 2.0/16,
		1.0/16, 2.0/16, 1.0/16)
}

// EdgeDetectionKernel returns the 8-neighbour Laplacian.
func EdgeDetectionKernel() Kernel {
	return kernel3x3("edge-detection",
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1)
}

// SharpenKernel returns the 4-neighbour sharpening kernel.
func SharpenKernel() Kernel {
	return kernel3x3("sharpen",
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0)
}

// EmbossKernel returns a diagonal emboss. It is not symmetric, so the 180°
// rotation applied by convolution changes which way the relief faces.
func EmbossKernel() Kernel {
	return kernel3x3("emboss",
		-2, -1, 0,
		-1, 1, 1,
		0, 1, 2)
}

// IdentityKernel returns the 1x1 kernel with weight 1.
func IdentityKernel() Kernel {
	return Kernel{Name: "identity", Weights: []float32{1}, Width: 1, Height: 1}
}

// KernelFor returns the preset used by a convolution filter. ok is false
// for filters that are not convolutions.
func KernelFor(f Filter) (k Kernel, ok bool) {
	switch f {
	case BoxBlur:
		return BoxBlurKernel(), true
	case GaussianBlur:
		return GaussianBlurKernel(), true
	case EdgeDetection:
		return EdgeDetectionKernel(), true
	case Sharpen:
		return SharpenKernel(), true
	case Emboss:
		return EmbossKernel(), true
	}
	return Kernel{}, false
}

// kernelJSON is the on-disk form of a kernel.
type kernelJSON struct {
	Name    string    `json:"name"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Origin  [2]int    `json:"origin"`
	Weights []float32 `json:"weights"`
}

// ParseKernel decodes a kernel from JSON of the form
//
//	{"name": "motion", "width": 5, "height": 1, "origin": [0, 2],
//	 "weights": [0.2, 0.2, 0.2, 0.2, 0.2]}
func ParseKernel(data []byte) (Kernel, error) {
	var kj kernelJSON
	if err := json.Unmarshal(data, &kj); err != nil {
		return Kernel{}, fmt.Errorf("error unmarshalling kernel: %w", err)
	}
	return NewKernel(kj.Name, kj.Width, kj.Height, kj.Origin[0], kj.Origin[1], kj.Weights)
}

// LoadKernel loads a kernel by name from the embedded kernel set, falling
// back to reading name as a path on the filesystem.
func LoadKernel(name string) (Kernel, error) {
	data, vfsErr := kernelFS.ReadFile(fmt.Sprintf("kerneldata/%s.json", name))
	if vfsErr != nil {
		var fsErr error
		data, fsErr = os.ReadFile(name)
		if fsErr != nil {
			return Kernel{}, fmt.Errorf("error reading kernel: %w", fsErr)
		}
	}
	return ParseKernel(data)
}

// EmbeddedKernels lists the names accepted by LoadKernel without a path.
func EmbeddedKernels() []string {
	entries, err := kernelFS.ReadDir("kerneldata")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}
