package section

import (
	"fmt"

	"github.com/yofu/dxf"
)

// SaveDXF writes the section as DXF line entities in plane coordinates
// multiplied by o.Scale.
func (s *Section) SaveDXF(path string, o Options) error {
	o = o.normalized()
	d := dxf.NewDrawing()
	for _, l := range s.Lines() {
		if _, err := d.Line(l.A.X*o.Scale, l.A.Y*o.Scale, 0, l.B.X*o.Scale, l.B.Y*o.Scale, 0); err != nil {
			return fmt.Errorf("section: dxf line: %w", err)
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("section: save %s: %w", path, err)
	}
	return nil
}
