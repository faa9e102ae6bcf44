package pixfilter

import "fmt"

// Band is a half-open row range [Start, End) handled by one worker.
type Band struct {
	Start int
	End   int
}

// Rows returns the number of rows in the band.
func (b Band) Rows() int {
	if b.End < b.Start {
		return 0
	}
	return b.End - b.Start
}

// PartitionMode selects how rows are split into bands.
type PartitionMode int

const (
	// PartitionEven gives every band height/workers rows and hands the
	// remainder out one row at a time to the first bands. Every row is
	// covered exactly once.
	PartitionEven PartitionMode = iota

	// PartitionRemainderLast gives every band height/workers rows and
	// appends the remainder to the last band.
	PartitionRemainderLast

	// PartitionTruncate gives every band height/workers rows and leaves the
	// trailing height%workers rows uncovered. Those rows stay zero in the
	// output, which shows as a dark strip at the bottom of the image.
	PartitionTruncate
)

func (m PartitionMode) String() string {
	switch m {
	case PartitionEven:
		return "even"
	case PartitionRemainderLast:
		return "remainder"
	case PartitionTruncate:
		return "truncate"
	default:
		return fmt.Sprintf("PartitionMode(%d)", int(m))
	}
}

// ParsePartitionMode maps a CLI name onto a PartitionMode.
func ParsePartitionMode(name string) (PartitionMode, error) {
	for _, m := range []PartitionMode{PartitionEven, PartitionRemainderLast, PartitionTruncate} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: partition mode %q", ErrInvalidOption, name)
}

// Partition splits [0, height) into exactly workers bands. Bands may be
// empty when there are more workers than rows. workers must be positive.
func Partition(height, workers int, mode PartitionMode) []Band {
	bands := make([]Band, workers)
	per := height / workers
	rem := height % workers

	start := 0
	for i := range bands {
		rows := per
		switch mode {
		case PartitionEven:
			if i < rem {
				rows++
			}
		case PartitionRemainderLast:
			if i == workers-1 {
				rows += rem
			}
		}
		bands[i] = Band{Start: start, End: start + rows}
		start += rows
	}
	return bands
}

// Covered returns the total number of rows covered by bands.
func Covered(bands []Band) int {
	n := 0
	for _, b := range bands {
		n += b.Rows()
	}
	return n
}
