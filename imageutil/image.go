// Package imageutil provides the file and display plumbing around the
// pixfilter engine: decoding and encoding images, nearest-neighbour
// previews, compressed raw buffer dumps, labelled contact sheets and test
// patterns.
package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA returns img as an *image.NRGBA with its origin at (0, 0). An
// NRGBA that already starts at the origin is returned as is; anything else
// is copied.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Clone creates a deep copy of img as an NRGBA image.
func Clone(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
