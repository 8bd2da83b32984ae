package triangulate

import (
	"math"

	"github.com/chazu/trimesh/pkg/geom"
)

// LoopOrderer chains unordered cut segments into closed loops. A loop is
// returned without repeating its first point.
type LoopOrderer interface {
	Order(segs []geom.Segment) [][]geom.Vec
}

// NearestEndpoint walks from segment to segment, each time taking the
// unused segment with an endpoint closest to the current chain end and
// reversing it when needed. Chains that do not close are dropped.
type NearestEndpoint struct {
	// Tolerance is the largest gap bridged between two segments. Zero
	// means geom.Tolerance.
	Tolerance float64
}

func (o NearestEndpoint) tol() float64 {
	if o.Tolerance > 0 {
		return o.Tolerance
	}
	return geom.Tolerance
}

func (o NearestEndpoint) Order(segs []geom.Segment) [][]geom.Vec {
	tol := o.tol()
	rest := dedupe(segs, tol)

	var loops [][]geom.Vec
	for len(rest) > 0 {
		first := rest[0]
		rest = rest[1:]
		chain := []geom.Vec{first.A, first.B}
		closed := false
		for len(rest) > 0 {
			end := chain[len(chain)-1]
			i, reversed, d := nearest(rest, end)
			if d > tol {
				break
			}
			s := rest[i]
			rest = append(rest[:i], rest[i+1:]...)
			next := s.B
			if reversed {
				next = s.A
			}
			if geom.PointsEqualTol(next, chain[0], tol) {
				closed = true
				break
			}
			chain = append(chain, next)
		}
		if closed && len(chain) >= 3 {
			loops = append(loops, chain)
		}
	}
	return loops
}

// nearest finds the segment whose start (or end, when reversed) is
// closest to p.
func nearest(segs []geom.Segment, p geom.Vec) (int, bool, float64) {
	best, reversed, bestD := 0, false, math.Inf(1)
	for i, s := range segs {
		if d := s.A.Sub(p).Length(); d < bestD {
			best, reversed, bestD = i, false, d
		}
		if d := s.B.Sub(p).Length(); d < bestD {
			best, reversed, bestD = i, true, d
		}
	}
	return best, reversed, bestD
}

func dedupe(segs []geom.Segment, tol float64) []geom.Segment {
	out := make([]geom.Segment, 0, len(segs))
next:
	for _, s := range segs {
		if geom.PointsEqualTol(s.A, s.B, tol) {
			continue
		}
		for _, o := range out {
			if (geom.PointsEqualTol(s.A, o.A, tol) && geom.PointsEqualTol(s.B, o.B, tol)) ||
				(geom.PointsEqualTol(s.A, o.B, tol) && geom.PointsEqualTol(s.B, o.A, tol)) {
				continue next
			}
		}
		out = append(out, s)
	}
	return out
}
