package scene

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/redline/pkg/core/geom"
)

// LayoutMode is the auto-layout direction of a container shape.
type LayoutMode string

const (
	LayoutNone       LayoutMode = ""
	LayoutHorizontal LayoutMode = "horizontal"
	LayoutVertical   LayoutMode = "vertical"
)

// Padding is the inner spacing of an auto-layout container.
type Padding struct {
	Top    float64 `json:"top,omitempty" yaml:"top,omitempty"`
	Right  float64 `json:"right,omitempty" yaml:"right,omitempty"`
	Bottom float64 `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Left   float64 `json:"left,omitempty" yaml:"left,omitempty"`
}

// AutoLayout describes how a container arranges its children.
type AutoLayout struct {
	Mode    LayoutMode `json:"mode" yaml:"mode"`
	Padding Padding    `json:"padding" yaml:"padding"`
}

// Shape is an annotatable element.
type Shape struct {
	ID       string
	Name     string
	ParentID string // frame id or id of an enclosing shape

	Transform     matrix.Matrix
	Width, Height float64

	// Stack is the draw-order index within the common ancestor; higher
	// values are drawn on top.
	Stack int

	Layout *AutoLayout
}

// Frame is a top-level container; its origin is the origin for every shape
// nested inside it.
type Frame struct {
	ID            string
	Name          string
	Transform     matrix.Matrix
	Width, Height float64
}

// NewShape returns an unrotated shape at absolute position (x, y).
func NewShape(id string, x, y, w, h float64) Shape {
	return Shape{ID: id, Transform: Translation(x, y), Width: w, Height: h}
}

// NewFrame returns a frame at absolute position (x, y).
func NewFrame(id string, x, y, w, h float64) Frame {
	return Frame{ID: id, Transform: Translation(x, y), Width: w, Height: h}
}

// In returns a copy of s parented to the given frame or shape.
func (s Shape) In(parentID string) Shape {
	s.ParentID = parentID
	return s
}

// WithStack returns a copy of s with the given stacking index.
func (s Shape) WithStack(i int) Shape {
	s.Stack = i
	return s
}

// WithRotation returns a copy of s rotated by deg degrees about its
// transform origin.
func (s Shape) WithRotation(deg float64) Shape {
	o := s.Origin()
	s.Transform = Rotation(o.X, o.Y, deg)
	return s
}

// WithLayout returns a copy of s carrying the given auto-layout.
func (s Shape) WithLayout(mode LayoutMode, p Padding) Shape {
	s.Layout = &AutoLayout{Mode: mode, Padding: p}
	return s
}

// Origin returns the translation component of the shape's transform.
func (s Shape) Origin() vec.Vec2 { return origin(s.Transform) }

// Rotation returns the rotation angle of the transform in degrees.
func (s Shape) Rotation() float64 {
	m := s.Transform
	return math.Atan2(-m[1], m[0]) * 180 / math.Pi
}

// Origin returns the translation component of the frame's transform.
func (f Frame) Origin() vec.Vec2 { return origin(f.Transform) }

// Box returns the frame's own rectangle in frame coordinates.
func (f Frame) Box() geom.Box {
	return geom.Box{Width: f.Width, Height: f.Height}
}

// Size returns the frame dimensions.
func (f Frame) Size() geom.Size {
	return geom.Size{Width: f.Width, Height: f.Height}
}

func origin(m matrix.Matrix) vec.Vec2 {
	return vec.Vec2{X: m[4], Y: m[5]}
}

// Translation returns a transform that only moves by (x, y).
func Translation(x, y float64) matrix.Matrix {
	return matrix.Matrix{1, 0, 0, 1, x, y}
}

// Rotation returns a transform that rotates by deg degrees counter-clockwise
// on screen and then moves by (x, y).
func Rotation(x, y, deg float64) matrix.Matrix {
	rad := deg * math.Pi / 180
	cos, sin := snapUnit(math.Cos(rad)), snapUnit(math.Sin(rad))
	return matrix.Matrix{cos, -sin, sin, cos, x, y}
}

// snapUnit removes floating point noise around 0 and ±1 so that quarter
// turns produce exact extents.
func snapUnit(v float64) float64 {
	const eps = 1e-12
	for _, t := range []float64{-1, 0, 1} {
		if math.Abs(v-t) < eps {
			return t
		}
	}
	return v
}

// IsZero reports whether m is the zero matrix, which scene files use for
// "no transform given".
func IsZero(m matrix.Matrix) bool {
	return m == matrix.Matrix{}
}
