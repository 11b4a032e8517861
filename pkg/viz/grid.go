package viz

import (
	"context"
	"fmt"
	"image"

	"github.com/nfnt/resize"
	"github.com/slate-ml/slate/pkg/viz/store"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DefaultColumns is the grid width used when the caller does not
// choose a column count.
const DefaultColumns = 2

// geometry of one grid cell on the composed canvas.
const (
	cellWidth  = 5 * vg.Inch
	cellHeight = 4 * vg.Inch

	// thumbnails are downscaled to fit this box before composition,
	// keeping aspect ratio.
	thumbnailWidth  = 640
	thumbnailHeight = 480
)

// Rows returns the number of grid rows for count cells in columns columns.
func Rows(count, columns int) int {
	return (count + columns - 1) / columns
}

// Compose arranges cells into a single row-major grid image with
// the given column count.
//
// Each cell is drawn with its caption as a title. Cells past the last
// one (when count is not a multiple of columns) stay blank.
func Compose(cells []Cell, columns int) (image.Image, error) {
	if columns <= 0 {
		return nil, fmt.Errorf("columns must be positive: %d", columns)
	}

	rows := Rows(len(cells), columns)
	if rows < 1 {
		rows = 1
	}

	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, columns)
	}

	for _, cell := range cells {
		row := cell.Index / columns
		col := cell.Index % columns
		if row < 0 || rows <= row {
			return nil, fmt.Errorf("cell index out of grid: %d", cell.Index)
		}

		p := plot.New()
		p.Title.Text = cell.Caption
		p.Title.TextStyle.Font.Size = vg.Points(10)
		p.HideAxes()

		thumb := resize.Thumbnail(
			thumbnailWidth, thumbnailHeight, cell.Image, resize.Bilinear,
		)
		bounds := thumb.Bounds()
		p.Add(plotter.NewImage(
			thumb, 0, 0, float64(bounds.Dx()), float64(bounds.Dy()),
		))

		plots[row][col] = p
	}

	canvas := vgimg.New(
		vg.Length(columns)*cellWidth, vg.Length(rows)*cellHeight,
	)
	dc := vgdraw.New(canvas)

	tiles := vgdraw.Tiles{
		Rows: rows,
		Cols: columns,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}

	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		for col := range plots[row] {
			if plots[row][col] == nil {
				continue
			}
			plots[row][col].Draw(canvases[row][col])
		}
	}

	return canvas.Image(), nil
}

// RenderGrid loads all annotation records under annotationPrefix from s,
// annotates their images (found under imagePrefix), and composes them
// into one grid image.
//
// This is Load followed by Compose.
func RenderGrid(
	ctx context.Context,
	s store.Store,
	annotationPrefix, imagePrefix string,
	columns int,
) (image.Image, error) {
	cells, err := Load(ctx, s, annotationPrefix, imagePrefix)
	if err != nil {
		return nil, err
	}
	return Compose(cells, columns)
}
