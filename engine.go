// Package pixfilter is a parallel pixel filter engine. It convolves images
// with small kernels, isolates single colour channels and converts to
// grayscale, working on a packed alpha-blue-green-red byte buffer that is
// split into horizontal bands processed by a fixed pool of workers.
package pixfilter

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of bands, and workers, used by NewEngine.
const DefaultWorkers = 4

// Engine holds the configuration shared by every filter call. An Engine is
// safe for concurrent use as long as its fields are not modified.
type Engine struct {
	// Workers is the number of bands an image is split into and the number
	// of goroutines that process them.
	Workers   int
	Partition PartitionMode
	Edge      EdgeMode
	Narrowing Narrowing
	Luma      LumaWeights

	logger *slog.Logger
}

// EngineOption is a functional option for configuring an Engine.
type EngineOption func(*Engine)

// NewEngine creates an Engine with the given options.
// Defaults: Workers=4, Partition=PartitionEven, Edge=EdgeBand,
// Narrowing=NarrowWrap, Luma=BT601, package logger.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		Workers:   DefaultWorkers,
		Partition: PartitionEven,
		Edge:      EdgeBand,
		Narrowing: NarrowWrap,
		Luma:      BT601,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithWorkers sets the number of bands and workers.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.Workers = n
	}
}

// WithPartition sets how rows are split into bands.
func WithPartition(m PartitionMode) EngineOption {
	return func(e *Engine) {
		e.Partition = m
	}
}

// WithEdgeMode sets how convolution samples outside a band are handled.
func WithEdgeMode(m EdgeMode) EngineOption {
	return func(e *Engine) {
		e.Edge = m
	}
}

// WithNarrowing sets how channel sums are converted to bytes.
func WithNarrowing(n Narrowing) EngineOption {
	return func(e *Engine) {
		e.Narrowing = n
	}
}

// WithLumaWeights sets the grayscale coefficients.
func WithLumaWeights(w LumaWeights) EngineOption {
	return func(e *Engine) {
		e.Luma = w
	}
}

// WithLogger gives the engine its own logger instead of the package
// logger set with SetLogger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return Logger()
}

func (e *Engine) validate() error {
	switch {
	case e.Workers <= 0:
		return fmt.Errorf("%w: %d workers", ErrInvalidOption, e.Workers)
	case e.Partition < PartitionEven || e.Partition > PartitionTruncate:
		return fmt.Errorf("%w: %v", ErrInvalidOption, e.Partition)
	case e.Edge < EdgeBand || e.Edge > EdgeClamp:
		return fmt.Errorf("%w: %v", ErrInvalidOption, e.Edge)
	case e.Narrowing < NarrowWrap || e.Narrowing > NarrowClamp:
		return fmt.Errorf("%w: %v", ErrInvalidOption, e.Narrowing)
	}
	return nil
}

// run splits height rows into bands and calls work once per band on its
// own goroutine. It returns after every band has finished. Band failures
// do not stop the other bands; they are collected into a *PartialError.
func (e *Engine) run(ctx context.Context, op string, height int, work func(context.Context, Band) error) error {
	bands := Partition(height, e.Workers, e.Partition)
	if covered := Covered(bands); covered < height {
		e.log().Debug("rows not covered by any band",
			"op", op, "rows", height-covered, "partition", e.Partition.String())
	}

	errs := make([]error, len(bands))
	var g errgroup.Group
	g.SetLimit(e.Workers)
	for i, b := range bands {
		i, b := i, b // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			errs[i] = work(ctx, b)
			return nil
		})
	}
	// Band errors are kept in errs, so Wait always returns nil.
	_ = g.Wait()

	var failed []BandError
	for i, err := range errs {
		if err == nil {
			continue
		}
		e.log().Warn("band did not complete",
			"op", op, "start", bands[i].Start, "end", bands[i].End, "err", err)
		failed = append(failed, BandError{Band: bands[i], Err: err})
	}
	if len(failed) > 0 {
		return &PartialError{Op: op, Bands: len(bands), Failed: failed}
	}
	e.log().Debug("bands complete", "op", op, "bands", len(bands))
	return nil
}

// ProcessBuffer applies filter f to buf. Unknown filters return buf
// unchanged.
func (e *Engine) ProcessBuffer(ctx context.Context, buf PixelBuffer, f Filter) (PixelBuffer, error) {
	if k, ok := KernelFor(f); ok {
		return e.ApplyKernel(ctx, buf, k)
	}
	if ch, ok := channelFor(f); ok {
		return e.IsolateChannel(ctx, buf, ch)
	}
	if f == Grayscale {
		return e.Grayscale(ctx, buf)
	}
	e.log().Debug("unknown filter, passing image through", "filter", f.String())
	return buf, nil
}

// Process applies filter f to a private copy of img and returns the result
// as a new image. Unknown filters return img itself.
//
// When the kernel is larger than the image Process returns a nil image and
// an error wrapping ErrKernelTooLarge. When some bands fail, for example
// because ctx was cancelled, Process returns the partially filled image
// together with a *PartialError.
func (e *Engine) Process(ctx context.Context, img image.Image, f Filter) (image.Image, error) {
	if !f.known() {
		e.log().Debug("unknown filter, passing image through", "filter", f.String())
		return img, nil
	}
	out, err := e.ProcessBuffer(ctx, ToBuffer(img), f)
	return e.wrap(out, err)
}

// ProcessKernel convolves a private copy of img with a caller supplied
// kernel. Errors follow Process.
func (e *Engine) ProcessKernel(ctx context.Context, img image.Image, k Kernel) (image.Image, error) {
	out, err := e.ApplyKernel(ctx, ToBuffer(img), k)
	return e.wrap(out, err)
}

func (e *Engine) wrap(out PixelBuffer, err error) (image.Image, error) {
	if out.Pix == nil {
		return nil, err
	}
	res, ferr := FromBuffer(out)
	if ferr != nil {
		return nil, ferr
	}
	return res, err
}

func (f Filter) known() bool {
	return f >= 0 && int(f) < len(filterNames)
}
