package mesh

import (
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"

	"github.com/chazu/trimesh/pkg/geom"
)

// Index is an R-tree over bounding boxes. Queries only read the tree, so
// it can be shared by goroutines once built.
type Index struct {
	tree *rtreego.Rtree
}

type indexed struct {
	i    int
	rect rtreego.Rect
}

func (x *indexed) Bounds() rtreego.Rect {
	return x.rect
}

// toRect pads the box so flat and point boxes still get a volume, which
// the tree requires.
func toRect(b geom.AABB) (rtreego.Rect, error) {
	b = b.Enlarge(geom.Tolerance)
	s := b.Size()
	return rtreego.NewRect(rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z}, []float64{s.X, s.Y, s.Z})
}

// NewIndex indexes boxes by their position in the slice.
func NewIndex(boxes []geom.AABB) (*Index, error) {
	tree := rtreego.NewTree(3, 4, 16)
	for i, b := range boxes {
		r, err := toRect(b)
		if err != nil {
			return nil, err
		}
		tree.Insert(&indexed{i: i, rect: r})
	}
	return &Index{tree: tree}, nil
}

// NewFaceIndex indexes the bounds of faces.
func NewFaceIndex(faces []Face) (*Index, error) {
	return NewIndex(lo.Map(faces, func(f Face, _ int) geom.AABB {
		return f.Triangle.Bounds()
	}))
}

// Near returns, in ascending order, the indices of the boxes meeting b.
func (x *Index) Near(b geom.AABB) ([]int, error) {
	r, err := toRect(b)
	if err != nil {
		return nil, err
	}
	found := lo.Map(x.tree.SearchIntersect(r), func(s rtreego.Spatial, _ int) int {
		return s.(*indexed).i
	})
	slices.Sort(found)
	return found, nil
}
