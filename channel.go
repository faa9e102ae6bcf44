package pixfilter

import (
	"context"
	"fmt"
)

// Channel selects one colour channel of a pixel.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Offset returns the channel's byte offset inside an ABGR pixel.
func (c Channel) Offset() int {
	switch c {
	case Blue:
		return offBlue
	case Green:
		return offGreen
	default:
		return offRed
	}
}

// IsolateChannel keeps channel ch of every pixel and zeroes the other two.
// Alpha is written as 0xFF. Isolating an already isolated buffer returns an
// identical buffer.
func (e *Engine) IsolateChannel(ctx context.Context, buf PixelBuffer, ch Channel) (PixelBuffer, error) {
	if err := e.validate(); err != nil {
		return PixelBuffer{}, err
	}
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, err
	}

	out := NewPixelBuffer(buf.Width, buf.Height)
	keep := ch.Offset()
	stride := buf.Stride()
	err := e.run(ctx, "isolate "+ch.String(), buf.Height, func(ctx context.Context, b Band) error {
		for row := b.Start; row < b.End; row++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for pos := row * stride; pos < (row+1)*stride; pos += BytesPerPixel {
				// Blue, green and red default to 0; only the kept channel is copied.
				out.Pix[pos+offAlpha] = 0xFF
				out.Pix[pos+keep] = buf.Pix[pos+keep]
			}
		}
		return nil
	})
	return out, err
}
