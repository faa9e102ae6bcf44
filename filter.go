package pixfilter

import (
	"fmt"
	"strings"
)

// Filter identifies one of the engine's named operations.
type Filter int

const (
	BoxBlur Filter = iota
	GaussianBlur
	EdgeDetection
	Sharpen
	Emboss
	RedIsolate
	GreenIsolate
	BlueIsolate
	Grayscale
)

var filterNames = [...]string{
	BoxBlur:       "box-blur",
	GaussianBlur:  "gaussian-blur",
	EdgeDetection: "edge-detection",
	Sharpen:       "sharpen",
	Emboss:        "emboss",
	RedIsolate:    "red",
	GreenIsolate:  "green",
	BlueIsolate:   "blue",
	Grayscale:     "grayscale",
}

// Aliases accepted by ParseFilter in addition to the canonical names,
// including the picker labels ("RED COLORING").
var filterAliases = map[string]Filter{
	"blur":          BoxBlur,
	"gaussian":      GaussianBlur,
	"edge":          EdgeDetection,
	"edges":         EdgeDetection,
	"redcoloring":   RedIsolate,
	"redisolate":    RedIsolate,
	"greencoloring": GreenIsolate,
	"greenisolate":  GreenIsolate,
	"bluecoloring":  BlueIsolate,
	"blueisolate":   BlueIsolate,
	"gray":          Grayscale,
	"greyscale":     Grayscale,
}

func (f Filter) String() string {
	if f >= 0 && int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// Filters returns every known filter in declaration order.
func Filters() []Filter {
	fs := make([]Filter, len(filterNames))
	for i := range fs {
		fs[i] = Filter(i)
	}
	return fs
}

// ParseFilter resolves a filter name. Matching ignores case, spaces,
// dashes and underscores, so "GAUSSIAN BLUR", "gaussian-blur" and
// "GaussianBlur" all resolve to GaussianBlur.
func ParseFilter(name string) (Filter, error) {
	key := normalizeName(name)
	for i, n := range filterNames {
		if normalizeName(n) == key {
			return Filter(i), nil
		}
	}
	if f, ok := filterAliases[key]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

func normalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// channelFor returns the channel kept by an isolate filter.
func channelFor(f Filter) (Channel, bool) {
	switch f {
	case RedIsolate:
		return Red, true
	case GreenIsolate:
		return Green, true
	case BlueIsolate:
		return Blue, true
	}
	return 0, false
}
