package gap

import (
	"github.com/matzehuels/redline/pkg/core/bounds"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/errors"
)

// Result describes the gap between two disjoint shapes.
//
// For a vertical gap X and Width cover the strip between the shapes, Y is
// the midpoint of the perpendicular span and Height is the span's length.
// A horizontal gap mirrors this: Y and Height cover the strip, X is the
// midpoint and Width the span.
type Result struct {
	geom.Box    `bson:",inline" yaml:",inline"`
	Orientation geom.Orientation `json:"orientation" yaml:"orientation" bson:"orientation"`
	ShapeA      string           `json:"shapeA" yaml:"shapeA" bson:"shape_a"`
	ShapeB      string           `json:"shapeB" yaml:"shapeB" bson:"shape_b"`

	// Padded is set when the gap lies inside auto-layout padding of one of
	// the two shapes rather than between them.
	Padded bool `json:"padded,omitempty" yaml:"padded,omitempty" bson:"padded,omitempty"`
}

// Distance returns the size of the gap along its measuring axis.
func (r Result) Distance() float64 {
	if r.Orientation == geom.Vertical {
		return r.Width
	}
	return r.Height
}

// Line returns the endpoints of the measuring line drawn across the gap.
func (r Result) Line() (x1, y1, x2, y2 float64) {
	if r.Orientation == geom.Vertical {
		return r.X, r.Y, r.XOuter(), r.Y
	}
	return r.X, r.Y, r.X, r.YOuter()
}

// Strip returns the full rectangle of empty space the gap measures, with the
// perpendicular extent starting at the span's low edge rather than its
// midpoint.
func (r Result) Strip() geom.Box {
	if r.Orientation == geom.Vertical {
		return geom.Box{X: r.X, Y: r.Y - r.Height/2, Width: r.Width, Height: r.Height}
	}
	return geom.Box{X: r.X - r.Width/2, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Subject is a shape reduced to what gap analysis needs.
type Subject struct {
	ID     string
	Box    geom.Box
	Layout *scene.AutoLayout
}

// Compute resolves both shapes in ix and analyzes the space between them.
//
// It returns (nil, nil) when the shapes touch or overlap. Errors:
//   - INVALID_INPUT when not given exactly two ids
//   - SHAPE_NOT_FOUND / NOT_IN_FRAME from the index
//   - FRAME_MISMATCH when the shapes live in different frames
func Compute(ix *scene.Index, ids ...string) (*Result, error) {
	a, b, err := Subjects(ix, ids...)
	if err != nil {
		return nil, err
	}
	return Analyze(a, b), nil
}

// Subjects resolves the pair of shapes named by ids.
func Subjects(ix *scene.Index, ids ...string) (Subject, Subject, error) {
	if len(ids) != 2 {
		return Subject{}, Subject{}, errors.New(errors.ErrCodeInvalidInput, "gap analysis needs exactly two shapes, got %d", len(ids))
	}

	var (
		subjects [2]Subject
		frames   [2]*scene.Frame
	)
	for i, id := range ids {
		box, f, err := bounds.ResolveID(ix, id)
		if err != nil {
			return Subject{}, Subject{}, err
		}
		s, _ := ix.Shape(id)
		subjects[i] = Subject{ID: id, Box: box, Layout: s.Layout}
		frames[i] = f
	}
	if frames[0].ID != frames[1].ID {
		return Subject{}, Subject{}, errors.New(errors.ErrCodeFrameMismatch,
			"shapes %q and %q are in different frames (%q, %q)", ids[0], ids[1], frames[0].ID, frames[1].ID)
	}
	return subjects[0], subjects[1], nil
}

// Analyze returns the gap between a and b, or nil when there is none.
func Analyze(a, b Subject) *Result {
	lead, trail := order(a, b, geom.Horizontal)
	if lead.Box.XOuter() < trail.Box.X {
		return between(lead, trail, geom.Vertical)
	}
	if lead.Box.XOuter() == trail.Box.X {
		if r := insidePadding(lead, trail); r != nil {
			return r
		}
	}

	lead, trail = order(a, b, geom.Vertical)
	if lead.Box.YOuter() < trail.Box.Y {
		return between(lead, trail, geom.Horizontal)
	}
	return nil
}

// order returns the leading and trailing subject along the axis the gap is
// measured on. Ties keep the argument order.
func order(a, b Subject, axis geom.Orientation) (Subject, Subject) {
	if axis == geom.Horizontal {
		if b.Box.X < a.Box.X {
			return b, a
		}
		return a, b
	}
	if b.Box.Y < a.Box.Y {
		return b, a
	}
	return a, b
}

func between(lead, trail Subject, o geom.Orientation) *Result {
	r := &Result{Orientation: o, ShapeA: lead.ID, ShapeB: trail.ID}
	if o == geom.Vertical {
		span, _ := PerpendicularSpan(lead.Box.Span(geom.Vertical), trail.Box.Span(geom.Vertical))
		r.X = lead.Box.XOuter()
		r.Width = trail.Box.X - lead.Box.XOuter()
		r.Y = span.Mid()
		r.Height = span.Len()
		return r
	}
	span, _ := PerpendicularSpan(lead.Box.Span(geom.Horizontal), trail.Box.Span(geom.Horizontal))
	r.Y = lead.Box.YOuter()
	r.Height = trail.Box.Y - lead.Box.YOuter()
	r.X = span.Mid()
	r.Width = span.Len()
	return r
}

// insidePadding handles two shapes sharing a vertical edge where one of them
// lays out its children horizontally with padding on that edge. Only
// horizontal auto-layout qualifies.
func insidePadding(lead, trail Subject) *Result {
	if p, ok := horizontalPadding(lead); ok && p.Right > 0 {
		return padded(lead, trail, lead.Box.XOuter()-p.Right, p.Right, lead.Box, p)
	}
	if p, ok := horizontalPadding(trail); ok && p.Left > 0 {
		return padded(lead, trail, trail.Box.X, p.Left, trail.Box, p)
	}
	return nil
}

func horizontalPadding(s Subject) (scene.Padding, bool) {
	if s.Layout == nil || s.Layout.Mode != scene.LayoutHorizontal {
		return scene.Padding{}, false
	}
	return s.Layout.Padding, true
}

func padded(lead, trail Subject, x, width float64, inner geom.Box, p scene.Padding) *Result {
	span := geom.Interval{Lo: inner.Y + p.Top, Hi: inner.YOuter() - p.Bottom}
	if span.Hi < span.Lo {
		span.Hi = span.Lo
	}
	return &Result{
		Box:         geom.Box{X: x, Y: span.Mid(), Width: width, Height: span.Len()},
		Orientation: geom.Vertical,
		ShapeA:      lead.ID,
		ShapeB:      trail.ID,
		Padded:      true,
	}
}
