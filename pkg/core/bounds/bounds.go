// Package bounds resolves the frame-relative, axis-aligned bounding box of a
// shape.
//
// A rotated shape covers more of its frame than its local width and height
// suggest. [Resolve] maps the four corners of the local rectangle through the
// shape's transform, shifts them into frame space and returns their
// envelope. The computation is closed form; no scratch copies of the shape
// are made.
package bounds

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/errors"
)

// Resolve returns the smallest axis-aligned box, relative to f, that covers
// the rotated extent of s.
//
// A nil frame is an error (NOT_IN_FRAME), never an empty box.
func Resolve(s *scene.Shape, f *scene.Frame) (geom.Box, error) {
	if s == nil {
		return geom.Box{}, errors.New(errors.ErrCodeInvalidShape, "nil shape")
	}
	if f == nil {
		return geom.Box{}, errors.New(errors.ErrCodeNotInFrame, "shape %q has no frame", s.ID)
	}

	m := relative(s.Transform, f.Origin())
	corners := [4]vec.Vec2{
		{X: 0, Y: 0},
		{X: s.Width, Y: 0},
		{X: 0, Y: s.Height},
		{X: s.Width, Y: s.Height},
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := apply(m, c)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	return geom.Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, nil
}

// ResolveID looks up the shape and its frame in ix and resolves its box.
func ResolveID(ix *scene.Index, id string) (geom.Box, *scene.Frame, error) {
	s, err := ix.Shape(id)
	if err != nil {
		return geom.Box{}, nil, err
	}
	f, err := ix.FrameOf(id)
	if err != nil {
		return geom.Box{}, nil, err
	}
	b, err := Resolve(s, f)
	return b, f, err
}

// relative moves the translation of m into the frame's coordinate space.
// Only the frame's translation is removed; frames are not rotated.
func relative(m matrix.Matrix, frameOrigin vec.Vec2) matrix.Matrix {
	if scene.IsZero(m) {
		m = matrix.Identity
	}
	m[4] -= frameOrigin.X
	m[5] -= frameOrigin.Y
	return m
}

func apply(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}
