package imageutil

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Cell is one labelled image on a contact sheet.
type Cell struct {
	Label string
	Image image.Image
}

// SheetOptions controls contact sheet layout. Zero fields take the
// defaults noted on each field.
type SheetOptions struct {
	Columns    int         // default 3
	Padding    int         // default 4
	FontSize   float64     // points at 72 DPI, default 12
	Background color.Color // default black
	LabelColor color.Color // default white
}

func (o SheetOptions) withDefaults() SheetOptions {
	if o.Columns <= 0 {
		o.Columns = 3
	}
	if o.Padding <= 0 {
		o.Padding = 4
	}
	if o.FontSize <= 0 {
		o.FontSize = 12
	}
	if o.Background == nil {
		o.Background = color.Black
	}
	if o.LabelColor == nil {
		o.LabelColor = color.White
	}
	return o
}

// LabelHeight returns the height of the strip reserved under each cell for
// its label.
func (o SheetOptions) LabelHeight() int {
	return int(math.Ceil(o.withDefaults().FontSize * 1.5))
}

// SheetSize returns the dimensions of a sheet holding n cells of
// cellW x cellH pixels.
func (o SheetOptions) SheetSize(n, cellW, cellH int) (int, int) {
	o = o.withDefaults()
	cols := min(o.Columns, n)
	rows := (n + o.Columns - 1) / o.Columns
	w := cols*cellW + (cols+1)*o.Padding
	h := rows*(cellH+o.LabelHeight()) + (rows+1)*o.Padding
	return w, h
}

// ContactSheet lays cells out on a grid, left to right and top to bottom,
// with each label centred under its image. Every cell is as large as the
// largest image; smaller images are drawn at their top-left.
func ContactSheet(cells []Cell, opts SheetOptions) (*image.NRGBA, error) {
	if len(cells) == 0 {
		return nil, errors.New("contact sheet needs at least one cell")
	}
	opts = opts.withDefaults()

	var cellW, cellH int
	for _, c := range cells {
		b := c.Image.Bounds()
		cellW = max(cellW, b.Dx())
		cellH = max(cellH, b.Dy())
	}

	w, h := opts.SheetSize(len(cells), cellW, cellH)
	sheet := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	ttf, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(opts.FontSize)
	ctx.SetClip(sheet.Bounds())
	ctx.SetDst(sheet)
	ctx.SetSrc(image.NewUniform(opts.LabelColor))
	ctx.SetHinting(font.HintingFull)

	labelH := opts.LabelHeight()
	ascent := face.Metrics().Ascent.Ceil()
	for i, c := range cells {
		col, row := i%opts.Columns, i/opts.Columns
		x := opts.Padding + col*(cellW+opts.Padding)
		y := opts.Padding + row*(cellH+labelH+opts.Padding)

		b := c.Image.Bounds()
		draw.Draw(sheet, image.Rect(x, y, x+b.Dx(), y+b.Dy()), c.Image, b.Min, draw.Src)

		if c.Label == "" {
			continue
		}
		textW := font.MeasureString(face, c.Label).Ceil()
		tx := x + max((cellW-textW)/2, 0)
		ty := y + cellH + (labelH+ascent)/2
		if _, err := ctx.DrawString(c.Label, freetype.Pt(tx, ty)); err != nil {
			return nil, fmt.Errorf("failed to draw label %q: %w", c.Label, err)
		}
	}
	return sheet, nil
}
