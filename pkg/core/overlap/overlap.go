// Package overlap decomposes two intersecting shapes into the negative space
// around the dominant one.
//
// Given a subordinate shape A (lower in the stack) and a dominant shape B
// drawn on top of it, the four regions describe the part of A visible above,
// below, left of and right of B:
//
//	top    {B.x, A.y, B.w, B.y - A.y}
//	bottom {B.x, A.y + top.h + B.h, B.w, A.h - top.h - B.h}
//	left   {A.x, B.y, B.x - A.x, B.h}
//	right  {B.x + B.w, B.y, A.w - B.w - left.w, B.h}
//
// Regions with non-positive width or height do not exist; [Region.Err]
// reports them as DEGENERATE_REGION and callers skip them.
package overlap

import (
	"github.com/samber/lo"

	"github.com/matzehuels/redline/pkg/core/gap"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/errors"
)

// Region is one directional rectangle of negative space.
type Region struct {
	geom.Box    `bson:",inline" yaml:",inline"`
	Side        geom.Side        `json:"side" yaml:"side" bson:"side"`
	Orientation geom.Orientation `json:"orientation" yaml:"orientation" bson:"orientation"`
}

// Err returns a DEGENERATE_REGION error when the region has no area.
func (r Region) Err() error {
	if r.Degenerate() {
		return errors.New(errors.ErrCodeDegenerateRegion, "%s region %v has no area", r.Side, r.Box)
	}
	return nil
}

// Distance returns the extent the region measures: its height for top and
// bottom, its width for left and right.
func (r Region) Distance() float64 {
	if r.Side.IsVertical() {
		return r.Height
	}
	return r.Width
}

// Line returns the measuring line across the region, centred on it.
func (r Region) Line() (x1, y1, x2, y2 float64) {
	if r.Side.IsVertical() {
		return r.CenterX(), r.Y, r.CenterX(), r.YOuter()
	}
	return r.X, r.CenterY(), r.XOuter(), r.CenterY()
}

// Regions is the decomposition of an overlapping pair.
type Regions struct {
	Top    Region `json:"top" yaml:"top" bson:"top"`
	Bottom Region `json:"bottom" yaml:"bottom" bson:"bottom"`
	Left   Region `json:"left" yaml:"left" bson:"left"`
	Right  Region `json:"right" yaml:"right" bson:"right"`

	ShapeA string `json:"shapeA" yaml:"shapeA" bson:"shape_a"` // subordinate
	ShapeB string `json:"shapeB" yaml:"shapeB" bson:"shape_b"` // dominant
}

// All returns the four regions in top, bottom, left, right order.
func (r Regions) All() []Region {
	return []Region{r.Top, r.Bottom, r.Left, r.Right}
}

// Visible returns the regions with positive area, in [Regions.All] order.
func (r Regions) Visible() []Region {
	return lo.Filter(r.All(), func(reg Region, _ int) bool { return reg.Err() == nil })
}

// Compute decomposes the overlap between the two shapes named by ids.
//
// Stacking indices are compared as plain numbers even when the shapes have
// different parents; the common ancestor's ordering is not consulted.
//
// Errors:
//   - GAP_EXISTS when the shapes are disjoint (see gap.Compute)
//   - AMBIGUOUS_STACK_ORDER when both shapes share a stacking index
//   - anything gap.Subjects returns for unresolvable ids
func Compute(ix *scene.Index, ids ...string) (*Regions, error) {
	a, b, err := gap.Subjects(ix, ids...)
	if err != nil {
		return nil, err
	}
	if g := gap.Analyze(a, b); g != nil {
		return nil, errors.New(errors.ErrCodeGapExists,
			"shapes %q and %q are separated by a %s gap of %g", a.ID, b.ID, g.Orientation, g.Distance())
	}

	sa, _ := ix.Shape(a.ID)
	sb, _ := ix.Shape(b.ID)
	switch {
	case sa.Stack == sb.Stack:
		return nil, errors.New(errors.ErrCodeAmbiguousStackOrder,
			"shapes %q and %q share stacking index %d", a.ID, b.ID, sa.Stack)
	case sa.Stack > sb.Stack:
		a, b = b, a
	}

	r := Decompose(a.Box, b.Box)
	r.ShapeA, r.ShapeB = a.ID, b.ID
	return &r, nil
}

// Decompose computes the regions of subordinate box a around dominant box b.
// It does not check that the boxes intersect.
func Decompose(a, b geom.Box) Regions {
	top := geom.Box{X: b.X, Y: a.Y, Width: b.Width, Height: b.Y - a.Y}
	left := geom.Box{X: a.X, Y: b.Y, Width: b.X - a.X, Height: b.Height}
	bottom := geom.Box{
		X:      b.X,
		Y:      a.Y + top.Height + b.Height,
		Width:  b.Width,
		Height: a.Height - top.Height - b.Height,
	}
	right := geom.Box{
		X:      b.XOuter(),
		Y:      b.Y,
		Width:  a.Width - b.Width - left.Width,
		Height: b.Height,
	}

	return Regions{
		Top:    Region{Box: top, Side: geom.Top, Orientation: geom.Horizontal},
		Bottom: Region{Box: bottom, Side: geom.Bottom, Orientation: geom.Horizontal},
		Left:   Region{Box: left, Side: geom.Left, Orientation: geom.Vertical},
		Right:  Region{Box: right, Side: geom.Right, Orientation: geom.Vertical},
	}
}
