package viz

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/slate-ml/slate-api-types/annotations"
)

// line thickness of box borders, in pixels.
const borderThickness = 2

// ClassColor selects the border color for a class.
//
// The color channel `classId mod 3` is set to maximum intensity and the
// other two are zero, giving a 3-color round-robin over R, G, B.
// This convention is what downstream consumers of these visualizations
// expect; keep it even for class sets larger than 3.
func ClassColor(classId int) color.RGBA {
	c := color.RGBA{A: 255}
	switch classId % 3 {
	case 0:
		c.R = 255
	case 1:
		c.G = 255
	case 2:
		c.B = 255
	}
	return c
}

// Annotate draws every bounding box of record onto img, in place.
//
// Boxes are unfilled rectangles from (Left, Top) to (Right, Bottom),
// clipped to the image bounds.
func Annotate(img *image.RGBA, boxes []annotations.BoundingBox) {
	for _, box := range boxes {
		drawBox(img, box)
	}
}

func drawBox(img *image.RGBA, box annotations.BoundingBox) {
	c := ClassColor(box.ClassId)
	left, top := box.Left, box.Top
	right, bottom := box.Right(), box.Bottom()

	// four border strips, drawn inward from the box edges.
	fillRect(img, left, top, right, top+borderThickness, c)
	fillRect(img, left, bottom-borderThickness, right, bottom, c)
	fillRect(img, left, top, left+borderThickness, bottom, c)
	fillRect(img, right-borderThickness, top, right, bottom, c)
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	r := image.Rect(x0, y0, x1, y1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// toRGBA redraws img into 3-channel (+alpha) RGBA,
// whatever color model the source has.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
