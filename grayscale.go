package pixfilter

import "context"

// LumaWeights are the per-channel coefficients of the grayscale converter.
type LumaWeights struct {
	R, G, B float32
}

// BT601 are the ITU-R BT.601 luma coefficients.
var BT601 = LumaWeights{R: 0.299, G: 0.587, B: 0.114}

// Luma returns the weighted sum of r, g and b in float32 with each term
// rounded separately.
func (w LumaWeights) Luma(r, g, b byte) float32 {
	sum := float32(w.R*float32(r)) + float32(w.G*float32(g))
	return sum + float32(w.B*float32(b))
}

// Grayscale replaces the three colour channels of every pixel with the
// truncated luma of the original pixel. Alpha is written as 0xFF.
func (e *Engine) Grayscale(ctx context.Context, buf PixelBuffer) (PixelBuffer, error) {
	if err := e.validate(); err != nil {
		return PixelBuffer{}, err
	}
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, err
	}

	out := NewPixelBuffer(buf.Width, buf.Height)
	stride := buf.Stride()
	err := e.run(ctx, "grayscale", buf.Height, func(ctx context.Context, b Band) error {
		for row := b.Start; row < b.End; row++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for pos := row * stride; pos < (row+1)*stride; pos += BytesPerPixel {
				px := buf.Pix[pos : pos+BytesPerPixel]
				gray := e.Narrowing.apply(e.Luma.Luma(px[offRed], px[offGreen], px[offBlue]))
				out.Pix[pos+offAlpha] = 0xFF
				out.Pix[pos+offBlue] = gray
				out.Pix[pos+offGreen] = gray
				out.Pix[pos+offRed] = gray
			}
		}
		return nil
	})
	return out, err
}
