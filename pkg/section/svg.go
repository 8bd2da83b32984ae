package section

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
)

const svgStyle = "stroke:black;stroke-width:1;fill:none"

// WriteSVG draws the section as SVG line elements.
func (s *Section) WriteSVG(w io.Writer, o Options) error {
	o = o.normalized()
	lines := s.Lines()
	c := newCanvas(lines, o.Scale, o.Margin)

	bw := bufio.NewWriter(w)
	doc := svg.New(bw)
	doc.Start(c.width, c.height)
	for _, l := range lines {
		x1, y1 := c.point(l.A)
		x2, y2 := c.point(l.B)
		doc.Line(round(x1), round(y1), round(x2), round(y2), svgStyle)
	}
	doc.End()
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("section: write svg: %w", err)
	}
	return nil
}

func (s *Section) saveSVG(path string, o Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("section: %w", err)
	}
	if err := s.WriteSVG(f, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func round(v float64) int {
	return int(math.Round(v))
}
