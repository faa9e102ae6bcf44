package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/wbrown/pixfilter"
	"github.com/wbrown/pixfilter/imageutil"
)

// config holds the parsed command line.
type config struct {
	input     string
	output    string
	filter    string
	kernel    string
	workers   int
	partition string
	edge      string
	narrow    string
	preview   string
	sheet     string
	raw       string
	timeout   time.Duration
	verbose   bool
	list      bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "input", "",
		"Path to the input image file (required)")
	flag.StringVar(&cfg.output, "output", "",
		"Path to save the filtered image (default: input.<filter>.<ext>)")
	flag.StringVar(&cfg.filter, "filter", "box-blur",
		"Filter to apply, see -list")
	flag.StringVar(&cfg.kernel, "kernel", "",
		"Convolve with a kernel instead of -filter "+
			"(embedded name or path to a JSON kernel)")
	flag.IntVar(&cfg.workers, "workers", pixfilter.DefaultWorkers,
		"Number of bands and worker goroutines")
	flag.StringVar(&cfg.partition, "partition", pixfilter.PartitionEven.String(),
		"Row partitioning: even, remainder or truncate")
	flag.StringVar(&cfg.edge, "edge", pixfilter.EdgeBand.String(),
		"Convolution edge handling: band, torus or clamp")
	flag.StringVar(&cfg.narrow, "narrow", pixfilter.NarrowWrap.String(),
		"Byte conversion of channel sums: wrap or clamp")
	flag.StringVar(&cfg.preview, "preview", "",
		"Also write a nearest neighbour preview no larger than WxH")
	flag.StringVar(&cfg.sheet, "sheet", "",
		"Write a labelled contact sheet of every filter to this path")
	flag.StringVar(&cfg.raw, "raw", "",
		"Also write the filtered pixels as a zstd compressed raw dump")
	flag.DurationVar(&cfg.timeout, "timeout", 0,
		"Abort filtering after this long (0 disables)")
	flag.BoolVar(&cfg.verbose, "verbose", false,
		"Log band scheduling to stderr")
	flag.BoolVar(&cfg.list, "list", false,
		"List filters and embedded kernels, then exit")
	flag.Parse()

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	pixfilter.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	if cfg.list {
		printList(os.Stdout)
		return
	}
	if cfg.input == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printList(w io.Writer) {
	fmt.Fprintln(w, "Filters:")
	for _, f := range pixfilter.Filters() {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintln(w, "Embedded kernels:")
	for _, name := range pixfilter.EmbeddedKernels() {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

// newEngine maps the engine flags onto options.
func newEngine(cfg config) (*pixfilter.Engine, error) {
	partition, err := pixfilter.ParsePartitionMode(cfg.partition)
	if err != nil {
		return nil, err
	}
	edge, err := pixfilter.ParseEdgeMode(cfg.edge)
	if err != nil {
		return nil, err
	}
	narrow, err := pixfilter.ParseNarrowing(cfg.narrow)
	if err != nil {
		return nil, err
	}
	if cfg.workers <= 0 {
		return nil, fmt.Errorf("%w: -workers must be positive", pixfilter.ErrInvalidOption)
	}
	return pixfilter.NewEngine(
		pixfilter.WithWorkers(cfg.workers),
		pixfilter.WithPartition(partition),
		pixfilter.WithEdgeMode(edge),
		pixfilter.WithNarrowing(narrow),
	), nil
}

func run(ctx context.Context, cfg config, w io.Writer) error {
	begin := time.Now()
	e, err := newEngine(cfg)
	if err != nil {
		return err
	}

	img, err := imageutil.LoadImage(cfg.input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.input, err)
	}
	b := img.Bounds()
	fmt.Fprintf(w, "Loaded %s (%dx%d) in %v\n", cfg.input, b.Dx(), b.Dy(), time.Since(begin))

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	startFilter := time.Now()
	out, label, err := apply(ctx, e, img, cfg)
	var partial *pixfilter.PartialError
	if err != nil && !errors.As(err, &partial) {
		return err
	}
	fmt.Fprintf(w, "Applied %s with %d workers in %v\n", label, e.Workers, time.Since(startFilter))

	output := cfg.output
	if output == "" {
		output = imageutil.SidecarPath(cfg.input, label)
		if filepath.Ext(cfg.input) == "" {
			output += ".png"
		}
	}
	if err := imageutil.SaveImage(out, output); err != nil {
		return err
	}
	fmt.Fprintf(w, "Output written to %s\n", output)
	if partial != nil {
		// The partial image is still written so it can be inspected.
		return partial
	}

	if cfg.preview != "" {
		pw, ph, err := imageutil.ParseSize(cfg.preview)
		if err != nil {
			return err
		}
		path := imageutil.SidecarPath(output, "preview")
		if err := imageutil.SaveImage(imageutil.Preview(out, pw, ph), path); err != nil {
			return err
		}
		fmt.Fprintf(w, "Preview written to %s\n", path)
	}

	if cfg.raw != "" {
		if err := imageutil.SaveRaw(cfg.raw, pixfilter.ToBuffer(out)); err != nil {
			return err
		}
		fmt.Fprintf(w, "Raw dump written to %s\n", cfg.raw)
	}

	if cfg.sheet != "" {
		startSheet := time.Now()
		if err := writeSheet(ctx, e, img, cfg.sheet); err != nil {
			return err
		}
		fmt.Fprintf(w, "Contact sheet written to %s in %v\n", cfg.sheet, time.Since(startSheet))
	}

	fmt.Fprintf(w, "Total time: %v\n", time.Since(begin))
	return nil
}

// apply runs either the custom kernel or the named filter and returns the
// name used for output paths.
func apply(ctx context.Context, e *pixfilter.Engine, img image.Image, cfg config) (image.Image, string, error) {
	if cfg.kernel != "" {
		k, err := pixfilter.LoadKernel(cfg.kernel)
		if err != nil {
			return nil, "", err
		}
		out, err := e.ProcessKernel(ctx, img, k)
		return out, k.Name, err
	}
	f, err := pixfilter.ParseFilter(cfg.filter)
	if err != nil {
		return nil, "", err
	}
	out, err := e.Process(ctx, img, f)
	return out, f.String(), err
}

// sheetCell is the largest size of one contact sheet thumbnail.
const sheetCell = 256

// writeSheet filters a thumbnail of img with every filter and lays the
// results out on one labelled image.
func writeSheet(ctx context.Context, e *pixfilter.Engine, img image.Image, path string) error {
	thumb := imageutil.Preview(img, sheetCell, sheetCell)
	cells := []imageutil.Cell{{Label: "original", Image: thumb}}
	for _, f := range pixfilter.Filters() {
		out, err := e.Process(ctx, thumb, f)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		cells = append(cells, imageutil.Cell{Label: f.String(), Image: out})
	}
	sheet, err := imageutil.ContactSheet(cells, imageutil.SheetOptions{Columns: 5})
	if err != nil {
		return err
	}
	return imageutil.SaveImage(sheet, path)
}
