package imageutil

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// ResizeNearest scales img to width x height with nearest-neighbour
// sampling. Pixel values are copied, never blended.
func ResizeNearest(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// FitSize returns the largest size no bigger than maxW x maxH that keeps
// the aspect ratio of srcW x srcH. Images already inside the box keep their
// size. Each side is at least 1.
func FitSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	if srcW <= maxW && srcH <= maxH {
		return srcW, srcH
	}
	// Compare maxW/srcW against maxH/srcH without floating point.
	var w, h int
	if maxW*srcH <= maxH*srcW {
		w = maxW
		h = srcH * maxW / srcW
	} else {
		h = maxH
		w = srcW * maxH / srcH
	}
	return max(w, 1), max(h, 1)
}

// Preview returns img scaled with nearest-neighbour sampling to fit inside
// maxW x maxH.
func Preview(img image.Image, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	return ResizeNearest(img, w, h)
}

// ParseSize parses "WxH" into positive width and height.
func ParseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: expected WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}
