package scene

import (
	"slices"

	"github.com/matzehuels/redline/pkg/errors"
)

// Scene is a flattened snapshot of frames and the shapes nested inside them.
type Scene struct {
	Frames []Frame
	Shapes []Shape
}

// Index maps every shape to its top-level frame. It is built once per batch
// and is read-only afterwards, so it is safe for concurrent use.
type Index struct {
	frames     map[string]*Frame
	shapes     map[string]*Shape
	owner      map[string]string // shape id -> frame id ("" when not in a frame)
	frameOrder []string
	shapeOrder []string
}

// NewIndex validates s and resolves the frame of every shape.
//
// It fails with INVALID_SCENE on duplicate ids, parent references to unknown
// ids, and parent cycles. A shape whose chain ends without reaching a frame
// is valid; [Index.FrameOf] reports NOT_IN_FRAME for it.
func NewIndex(s Scene) (*Index, error) {
	s.Frames = slices.Clone(s.Frames)
	s.Shapes = slices.Clone(s.Shapes)
	ix := &Index{
		frames: make(map[string]*Frame, len(s.Frames)),
		shapes: make(map[string]*Shape, len(s.Shapes)),
		owner:  make(map[string]string, len(s.Shapes)),
	}

	for i := range s.Frames {
		f := &s.Frames[i]
		if err := errors.ValidateShapeID(f.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "frame %d", i)
		}
		if _, dup := ix.frames[f.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidScene, "duplicate frame id %q", f.ID)
		}
		ix.frames[f.ID] = f
		ix.frameOrder = append(ix.frameOrder, f.ID)
	}

	for i := range s.Shapes {
		sh := &s.Shapes[i]
		if err := errors.ValidateShapeID(sh.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "shape %d", i)
		}
		if _, dup := ix.shapes[sh.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidScene, "duplicate shape id %q", sh.ID)
		}
		if _, clash := ix.frames[sh.ID]; clash {
			return nil, errors.New(errors.ErrCodeInvalidScene, "shape id %q is also a frame id", sh.ID)
		}
		for _, d := range []struct {
			name string
			v    float64
		}{{"width", sh.Width}, {"height", sh.Height}} {
			if err := errors.ValidateDimension(d.name, d.v); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "shape %q", sh.ID)
			}
		}
		ix.shapes[sh.ID] = sh
		ix.shapeOrder = append(ix.shapeOrder, sh.ID)
	}

	for _, id := range ix.shapeOrder {
		if _, err := ix.resolve(id); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// resolve walks the parent chain of id, memoising every shape on the way.
func (ix *Index) resolve(id string) (string, error) {
	var chain []string
	seen := make(map[string]bool)
	cur := id
	frameID := ""

	for {
		if owner, ok := ix.owner[cur]; ok {
			frameID = owner
			break
		}
		if seen[cur] {
			return "", errors.New(errors.ErrCodeInvalidScene, "parent cycle through shape %q", cur)
		}
		seen[cur] = true
		chain = append(chain, cur)

		parent := ix.shapes[cur].ParentID
		if parent == "" {
			break
		}
		if _, ok := ix.frames[parent]; ok {
			frameID = parent
			break
		}
		if _, ok := ix.shapes[parent]; !ok {
			return "", errors.New(errors.ErrCodeInvalidScene, "shape %q references unknown parent %q", cur, parent)
		}
		cur = parent
	}

	for _, sid := range chain {
		ix.owner[sid] = frameID
	}
	return frameID, nil
}

// Shape returns the shape with the given id.
func (ix *Index) Shape(id string) (*Shape, error) {
	s, ok := ix.shapes[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeShapeNotFound, "shape %q not found", id)
	}
	return s, nil
}

// Frame returns the frame with the given id.
func (ix *Index) Frame(id string) (*Frame, bool) {
	f, ok := ix.frames[id]
	return f, ok
}

// FrameOf returns the top-level frame that contains the shape.
func (ix *Index) FrameOf(shapeID string) (*Frame, error) {
	if _, err := ix.Shape(shapeID); err != nil {
		return nil, err
	}
	fid := ix.owner[shapeID]
	if fid == "" {
		return nil, errors.New(errors.ErrCodeNotInFrame, "shape %q is not inside a frame", shapeID)
	}
	return ix.frames[fid], nil
}

// Frames returns all frames in scene order.
func (ix *Index) Frames() []*Frame {
	out := make([]*Frame, len(ix.frameOrder))
	for i, id := range ix.frameOrder {
		out[i] = ix.frames[id]
	}
	return out
}

// Shapes returns all shapes in scene order.
func (ix *Index) Shapes() []*Shape {
	out := make([]*Shape, len(ix.shapeOrder))
	for i, id := range ix.shapeOrder {
		out[i] = ix.shapes[id]
	}
	return out
}

// ShapesIn returns the shapes owned by the given frame, in scene order.
func (ix *Index) ShapesIn(frameID string) []*Shape {
	var out []*Shape
	for _, id := range ix.shapeOrder {
		if ix.owner[id] == frameID {
			out = append(out, ix.shapes[id])
		}
	}
	return out
}

// ShapeCount returns the number of shapes in the index.
func (ix *Index) ShapeCount() int { return len(ix.shapeOrder) }
