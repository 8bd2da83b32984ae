package triangulate

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/chazu/trimesh/pkg/geom"
)

// Region is a loop bounding material together with the loops directly
// inside it, as indices into the slice given to Regions.
type Region struct {
	Outer int
	Holes []int
}

// Regions groups non-crossing loops by even-odd nesting. A loop inside an
// even number of others bounds material; a loop inside an odd number is a
// hole of its innermost enclosing loop.
func Regions(loops [][]geom.Vec2) []Region {
	parents := make([][]int, len(loops))
	for i, l := range loops {
		if len(l) == 0 {
			continue
		}
		for j, o := range loops {
			if i != j && len(o) >= 3 && insidePolygon(o, l[0]) {
				parents[i] = append(parents[i], j)
			}
		}
	}

	var out []Region
	region := make(map[int]int)
	for i := range loops {
		if len(parents[i])%2 == 0 {
			region[i] = len(out)
			out = append(out, Region{Outer: i})
		}
	}
	for i := range loops {
		d := len(parents[i])
		if d%2 == 0 {
			continue
		}
		for _, j := range parents[i] {
			if len(parents[j]) == d-1 {
				out[region[j]].Holes = append(out[region[j]].Holes, i)
				break
			}
		}
	}
	return out
}

// Ref names a point of a bridged loop: Loop 0 is the outer loop and Loop
// k the k-th hole, Index the point within it.
type Ref struct {
	Loop, Index int
}

// Bridge joins the holes into outer through zero-width channels, giving
// one loop any Triangulator can fill. The result runs counter-clockwise
// with the holes clockwise; refs[i] tells where point i came from, and
// the two ends of every channel appear twice.
func Bridge(outer []geom.Vec2, holes [][]geom.Vec2) ([]geom.Vec2, []Ref, error) {
	all := append([][]geom.Vec2{outer}, holes...)
	at := func(r Ref) geom.Vec2 { return all[r.Loop][r.Index] }
	ring := func(k int, counterClockwise bool) []Ref {
		refs := make([]Ref, len(all[k]))
		for i := range refs {
			refs[i] = Ref{Loop: k, Index: i}
		}
		if (SignedArea(all[k]) > 0) != counterClockwise {
			slices.Reverse(refs)
		}
		return refs
	}

	// rightmost holes first, so later channels never cross earlier ones
	order := make([]int, len(holes))
	for i := range order {
		order[i] = i + 1
	}
	maxX := func(k int) float64 {
		x := math.Inf(-1)
		for _, p := range all[k] {
			x = max(x, p.X)
		}
		return x
	}
	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(maxX(b), maxX(a)) })

	merged := ring(0, true)
	for _, k := range order {
		if len(all[k]) < 3 {
			continue
		}
		h := ring(k, false)
		m := 0
		for i := range h {
			if at(h[i]).X > at(h[m]).X {
				m = i
			}
		}
		mp := at(h[m])

		best, bestD := -1, math.Inf(1)
		for i, r := range merged {
			p := at(r)
			d := math.Hypot(p.X-mp.X, p.Y-mp.Y)
			if d >= bestD {
				continue
			}
			n := len(merged)
			prev, next := at(merged[(i+n-1)%n]), at(merged[(i+1)%n])
			if !inCone(prev, p, next, mp) || blocked(p, mp, merged, all, at) {
				continue
			}
			best, bestD = i, d
		}
		if best < 0 {
			return nil, nil, fmt.Errorf("triangulate: no channel to hole of %d points: %w", len(h), ErrDegenerate)
		}

		spliced := make([]Ref, 0, len(merged)+len(h)+2)
		spliced = append(spliced, merged[:best+1]...)
		spliced = append(spliced, h[m:]...)
		spliced = append(spliced, h[:m+1]...)
		spliced = append(spliced, merged[best:]...)
		merged = spliced
	}

	pts := make([]geom.Vec2, len(merged))
	for i, r := range merged {
		pts[i] = at(r)
	}
	return pts, merged, nil
}

// inCone reports whether q is seen from p inside the interior angle of a
// counter-clockwise loop at p, whose neighbours are a and c.
func inCone(a, p, c, q geom.Vec2) bool {
	if cross(a, p, c) > 0 {
		return cross(a, p, q) > 0 && cross(p, c, q) > 0
	}
	return cross(a, p, q) > 0 || cross(p, c, q) > 0
}

// blocked reports whether the channel p–q touches any loop edge other
// than at p or q.
func blocked(p, q geom.Vec2, merged []Ref, all [][]geom.Vec2, at func(Ref) geom.Vec2) bool {
	for i := range merged {
		if crosses(p, q, at(merged[i]), at(merged[(i+1)%len(merged)])) {
			return true
		}
	}
	for _, l := range all[1:] {
		for i := range l {
			if crosses(p, q, l[i], l[(i+1)%len(l)]) {
				return true
			}
		}
	}
	return false
}

// crosses reports whether segments pq and ab meet, ignoring contact at a
// shared endpoint.
func crosses(p, q, a, b geom.Vec2) bool {
	if same(p, a) || same(p, b) || same(q, a) || same(q, b) {
		return false
	}
	eps := geom.Tolerance * geom.Tolerance
	d1, d2 := cross(p, q, a), cross(p, q, b)
	d3, d4 := cross(a, b, p), cross(a, b, q)
	if ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps)) {
		return true
	}
	return onSegment2(p, q, a) || onSegment2(p, q, b)
}

// onSegment2 reports whether r lies on the segment pq.
func onSegment2(p, q, r geom.Vec2) bool {
	if math.Abs(cross(p, q, r)) > geom.Tolerance*geom.Tolerance {
		return false
	}
	dot := (r.X-p.X)*(q.X-p.X) + (r.Y-p.Y)*(q.Y-p.Y)
	l2 := (q.X-p.X)*(q.X-p.X) + (q.Y-p.Y)*(q.Y-p.Y)
	return dot > 0 && dot < l2
}
