package pixfilter

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// BytesPerPixel is the size of one pixel in a PixelBuffer.
const BytesPerPixel = 4

// Byte offsets of each channel inside a pixel.
const (
	offAlpha = 0
	offBlue  = 1
	offGreen = 2
	offRed   = 3
)

// PixelBuffer is an owned, contiguous, row-major pixel array with four
// bytes per pixel in alpha, blue, green, red order.
type PixelBuffer struct {
	Pix    []byte
	Width  int
	Height int
}

// NewPixelBuffer allocates a zero-filled buffer of the given size.
func NewPixelBuffer(width, height int) PixelBuffer {
	return PixelBuffer{
		Pix:    make([]byte, width*height*BytesPerPixel),
		Width:  width,
		Height: height,
	}
}

// Validate reports ErrInvalidBufferLength when the buffer's length does not
// match its declared dimensions.
func (b PixelBuffer) Validate() error {
	if b.Width < 0 || b.Height < 0 || len(b.Pix) != b.Width*b.Height*BytesPerPixel {
		return fmt.Errorf("%w: %d bytes for %dx%d",
			ErrInvalidBufferLength, len(b.Pix), b.Width, b.Height)
	}
	return nil
}

// Stride returns the number of bytes in one row.
func (b PixelBuffer) Stride() int {
	return b.Width * BytesPerPixel
}

// Offset returns the index of the alpha byte of pixel (x, y).
func (b PixelBuffer) Offset(x, y int) int {
	return y*b.Width*BytesPerPixel + x*BytesPerPixel
}

// Clone returns a deep copy of the buffer.
func (b PixelBuffer) Clone() PixelBuffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return PixelBuffer{Pix: pix, Width: b.Width, Height: b.Height}
}

// ToBuffer copies img into a new ABGR PixelBuffer. Any source format is
// accepted; colours are converted to non-premultiplied 8-bit channels.
// The result never shares memory with img.
func ToBuffer(img image.Image) PixelBuffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	nrgba := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	buf := NewPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		dst := buf.Pix[y*buf.Stride() : (y+1)*buf.Stride()]
		for i := 0; i < len(src); i += 4 {
			dst[i+offAlpha] = src[i+3]
			dst[i+offBlue] = src[i+2]
			dst[i+offGreen] = src[i+1]
			dst[i+offRed] = src[i]
		}
	}
	return buf
}

// FromBuffer builds a new image of the buffer's size from its pixels.
func FromBuffer(buf PixelBuffer) (*image.NRGBA, error) {
	return FromBytes(buf.Pix, buf.Width, buf.Height)
}

// FromBytes builds a new width x height image from raw ABGR bytes. It
// returns ErrInvalidDimensions if len(pix) != width*height*4.
func FromBytes(pix []byte, width, height int) (*image.NRGBA, error) {
	buf := PixelBuffer{Pix: pix, Width: width, Height: height}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(pix); i += 4 {
		img.Pix[i] = pix[i+offRed]
		img.Pix[i+1] = pix[i+offGreen]
		img.Pix[i+2] = pix[i+offBlue]
		img.Pix[i+3] = pix[i+offAlpha]
	}
	return img, nil
}
