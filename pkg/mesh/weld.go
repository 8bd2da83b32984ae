package mesh

import (
	"math"

	"github.com/chazu/trimesh/pkg/geom"
)

// welder maps points to the first point seen within tol of them. Cells
// are tol wide, so any earlier point within tol sits in one of the 27
// cells around the query.
type welder struct {
	tol   float64
	cells map[[3]int64][]geom.Vec
}

func newWelder(tol float64) *welder {
	return &welder{tol: tol, cells: make(map[[3]int64][]geom.Vec)}
}

func (w *welder) cell(p geom.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / w.tol)),
		int64(math.Floor(p.Y / w.tol)),
		int64(math.Floor(p.Z / w.tol)),
	}
}

// snap returns the representative of p, registering p when it has none.
func (w *welder) snap(p geom.Vec) geom.Vec {
	c := w.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, q := range w.cells[[3]int64{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if geom.PointsEqualTol(p, q, w.tol) {
						return q
					}
				}
			}
		}
	}
	w.cells[c] = append(w.cells[c], p)
	return p
}

// Weld moves every vertex onto the first vertex found within tol of it,
// so nearly coincident corners become bit-identical. Faces left with two
// identical corners are removed. It returns the number of removed faces.
// tol <= 0 means DefaultEdgePrecision.
func (m *Mesh) Weld(tol float64) int {
	if tol <= 0 {
		tol = DefaultEdgePrecision
	}
	w := newWelder(tol)
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		t := geom.Triangle{
			P1: w.snap(f.Triangle.P1),
			P2: w.snap(f.Triangle.P2),
			P3: w.snap(f.Triangle.P3),
		}
		if t.P1 == t.P2 || t.P2 == t.P3 || t.P3 == t.P1 {
			continue
		}
		f.Triangle = t
		kept = append(kept, f)
	}
	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}
