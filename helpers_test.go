package pixfilter

import (
	"bytes"
	"log/slog"
)

// patternBuffer returns a deterministic opaque buffer where neighbouring
// pixels differ in every channel.
func patternBuffer(width, height int) PixelBuffer {
	buf := NewPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := buf.Offset(x, y)
			buf.Pix[o+offAlpha] = 0xFF
			buf.Pix[o+offBlue] = byte(x*31 + y*7)
			buf.Pix[o+offGreen] = byte(x*13 + y*17)
			buf.Pix[o+offRed] = byte(x*5 + y*29 + 11)
		}
	}
	return buf
}

// solidBuffer returns a buffer filled with one opaque colour.
func solidBuffer(width, height int, r, g, b byte) PixelBuffer {
	buf := NewPixelBuffer(width, height)
	for o := 0; o < len(buf.Pix); o += BytesPerPixel {
		buf.Pix[o+offAlpha] = 0xFF
		buf.Pix[o+offBlue] = b
		buf.Pix[o+offGreen] = g
		buf.Pix[o+offRed] = r
	}
	return buf
}

// rowBuffer returns a buffer whose pixels in row y all have value f(y) in
// every colour channel.
func rowBuffer(width, height int, f func(y int) byte) PixelBuffer {
	buf := NewPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		v := f(y)
		for x := 0; x < width; x++ {
			o := buf.Offset(x, y)
			buf.Pix[o+offAlpha] = 0xFF
			buf.Pix[o+offBlue] = v
			buf.Pix[o+offGreen] = v
			buf.Pix[o+offRed] = v
		}
	}
	return buf
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return l, &buf
}

// rowIsZero reports whether every byte of row y is zero.
func rowIsZero(buf PixelBuffer, y int) bool {
	for _, v := range buf.Pix[y*buf.Stride() : (y+1)*buf.Stride()] {
		if v != 0 {
			return false
		}
	}
	return true
}
