package section

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/llgcode/draw2d/draw2dimg"
)

// Render rasterizes the section in black on white.
func (s *Section) Render(o Options) *image.RGBA {
	o = o.normalized()
	lines := s.Lines()
	c := newCanvas(lines, o.Scale, o.Margin)
	img := image.NewRGBA(image.Rect(0, 0, max(c.width, 1), max(c.height, 1)))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	gc := draw2dimg.NewGraphicContext(img)
	gc.SetStrokeColor(color.Black)
	gc.SetLineWidth(1)
	for _, l := range lines {
		x1, y1 := c.point(l.A)
		x2, y2 := c.point(l.B)
		gc.MoveTo(x1, y1)
		gc.LineTo(x2, y2)
	}
	gc.Stroke()
	return img
}

// SavePNG writes Render's output to path.
func (s *Section) SavePNG(path string, o Options) error {
	if err := draw2dimg.SaveToPngFile(path, s.Render(o)); err != nil {
		return fmt.Errorf("section: save %s: %w", path, err)
	}
	return nil
}
