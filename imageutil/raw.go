package imageutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/wbrown/pixfilter"
)

// Raw dumps are a 12 byte header, the magic "PXF1" followed by big endian
// uint32 width and height, then the zstd compressed ABGR pixel bytes.
const (
	rawMagic      = "PXF1"
	rawHeaderSize = 12
	maxRawPixels  = 1 << 28
)

// ErrBadRawHeader is returned by ReadRaw when the input is not a raw dump.
var ErrBadRawHeader = errors.New("not a pixfilter raw dump")

// WriteRaw writes buf to w as a raw dump.
func WriteRaw(w io.Writer, buf pixfilter.PixelBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	var hdr [rawHeaderSize]byte
	copy(hdr[:4], rawMagic)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(buf.Width))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(buf.Height))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("failed to write raw header: %w", err)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if _, err := enc.Write(buf.Pix); err != nil {
		enc.Close()
		return fmt.Errorf("failed to compress pixels: %w", err)
	}
	return enc.Close()
}

// ReadRaw reads a raw dump written by WriteRaw.
func ReadRaw(r io.Reader) (pixfilter.PixelBuffer, error) {
	var hdr [rawHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return pixfilter.PixelBuffer{}, fmt.Errorf("%w: %v", ErrBadRawHeader, err)
	}
	if string(hdr[:4]) != rawMagic {
		return pixfilter.PixelBuffer{}, fmt.Errorf("%w: magic %q", ErrBadRawHeader, hdr[:4])
	}
	width := int(binary.BigEndian.Uint32(hdr[4:8]))
	height := int(binary.BigEndian.Uint32(hdr[8:12]))
	// Bound each side before multiplying so the product cannot overflow.
	if width > maxRawPixels || height > maxRawPixels || (width > 0 && height > maxRawPixels/width) {
		return pixfilter.PixelBuffer{}, fmt.Errorf("%w: %dx%d too large", ErrBadRawHeader, width, height)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return pixfilter.PixelBuffer{}, err
	}
	defer dec.Close()

	buf := pixfilter.NewPixelBuffer(width, height)
	if _, err := io.ReadFull(dec, buf.Pix); err != nil {
		return pixfilter.PixelBuffer{}, fmt.Errorf("failed to decompress pixels: %w", err)
	}
	var extra [1]byte
	if n, _ := dec.Read(extra[:]); n != 0 {
		return pixfilter.PixelBuffer{}, fmt.Errorf("%w: trailing pixel data", pixfilter.ErrInvalidBufferLength)
	}
	return buf, nil
}

// SaveRaw writes buf as a raw dump to path.
func SaveRaw(path string, buf pixfilter.PixelBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteRaw(f, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadRaw reads a raw dump from path.
func LoadRaw(path string) (pixfilter.PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return pixfilter.PixelBuffer{}, fmt.Errorf("failed to open raw dump: %w", err)
	}
	defer f.Close()
	return ReadRaw(f)
}
