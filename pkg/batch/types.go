package batch

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/matzehuels/redline/pkg/core/gap"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/overlap"
	"github.com/matzehuels/redline/pkg/core/placement"
	"github.com/matzehuels/redline/pkg/errors"
)

// =============================================================================
// Kinds
// =============================================================================

// Kind is an annotation category.
type Kind string

const (
	KindDimension Kind = "dimension"
	KindSpacing   Kind = "spacing"
	KindOverlap   Kind = "overlap"
	KindName      Kind = "name"
)

// zOrder lists kinds from bottom to top.
var zOrder = map[Kind]int{
	KindOverlap:   0,
	KindSpacing:   1,
	KindDimension: 2,
	KindName:      3,
}

// ZOrder returns the draw layer of k. Higher layers are drawn on top.
func (k Kind) ZOrder() int { return zOrder[k] }

// ParseKind parses a request kind. Overlap annotations are derived from
// spacing requests and cannot be requested directly.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDimension, KindSpacing, KindName:
		return k, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid annotation kind: %q (must be one of: dimension, spacing, name)", s)
}

// =============================================================================
// Request
// =============================================================================

// Request asks for one annotation.
type Request struct {
	Kind   Kind      `json:"kind" yaml:"kind" bson:"kind"`
	Shapes []string  `json:"shapes" yaml:"shapes" bson:"shapes"`
	Side   geom.Side `json:"orientation,omitempty" yaml:"orientation,omitempty" bson:"orientation,omitempty"`
}

// Validate checks the kind and the number of shapes.
func (r Request) Validate() error {
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	want := 1
	if r.Kind == KindSpacing {
		want = 2
	}
	if len(r.Shapes) != want {
		return errors.New(errors.ErrCodeInvalidInput, "%s annotation needs %d shape(s), got %d", r.Kind, want, len(r.Shapes))
	}
	for _, id := range r.Shapes {
		if err := errors.ValidateShapeID(id); err != nil {
			return err
		}
	}
	if r.Side != "" {
		if _, err := geom.ParseSide(string(r.Side)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOrientation, err, "%s", r)
		}
	}
	return nil
}

// String returns a compact signature such as "spacing:a,b@top".
func (r Request) String() string {
	s := string(r.Kind) + ":" + strings.Join(r.Shapes, ",")
	if r.Side != "" {
		s += "@" + string(r.Side)
	}
	return s
}

// ParseRequest parses the signature form produced by [Request.String].
func ParseRequest(s string) (Request, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok || rest == "" {
		return Request{}, errors.New(errors.ErrCodeInvalidInput, "invalid request %q (want kind:shape[,shape][@side])", s)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return Request{}, err
	}
	r := Request{Kind: k}
	if ids, side, ok := strings.Cut(rest, "@"); ok {
		sd, err := geom.ParseSide(side)
		if err != nil {
			return Request{}, errors.Wrap(errors.ErrCodeInvalidOrientation, err, "request %q", s)
		}
		r.Side = sd
		rest = ids
	}
	r.Shapes = strings.Split(rest, ",")
	return r, r.Validate()
}

// =============================================================================
// Results
// =============================================================================

// Line is a measuring line in frame coordinates.
type Line struct {
	X1 float64 `json:"x1" yaml:"x1" bson:"x1"`
	Y1 float64 `json:"y1" yaml:"y1" bson:"y1"`
	X2 float64 `json:"x2" yaml:"x2" bson:"x2"`
	Y2 float64 `json:"y2" yaml:"y2" bson:"y2"`
}

// Annotation is one placed label.
type Annotation struct {
	ID      string   `json:"id" yaml:"id" bson:"id"`
	Kind    Kind     `json:"kind" yaml:"kind" bson:"kind"`
	FrameID string   `json:"frame" yaml:"frame" bson:"frame"`
	Shapes  []string `json:"shapes" yaml:"shapes" bson:"shapes"`
	Label   string   `json:"label" yaml:"label" bson:"label"`

	// Target is the rectangle the label describes: a shape, a gap strip or
	// an overlap region.
	Target geom.Box         `json:"target" yaml:"target" bson:"target"`
	Line   *Line            `json:"line,omitempty" yaml:"line,omitempty" bson:"line,omitempty"`
	Placed placement.Placed `json:"placed" yaml:"placed" bson:"placed"`

	Gap    *gap.Result     `json:"gap,omitempty" yaml:"gap,omitempty" bson:"gap,omitempty"`
	Region *overlap.Region `json:"region,omitempty" yaml:"region,omitempty" bson:"region,omitempty"`

	// seq keeps request order for sorting; not serialized.
	seq int
}

// Skipped records a request that produced no annotation.
type Skipped struct {
	Request Request     `json:"request" yaml:"request" bson:"request"`
	FrameID string      `json:"frame,omitempty" yaml:"frame,omitempty" bson:"frame,omitempty"`
	Code    errors.Code `json:"code" yaml:"code" bson:"code"`
	Message string      `json:"message" yaml:"message" bson:"message"`
}

// SkippedFrom builds a Skipped entry from an error.
func SkippedFrom(r Request, frameID string, err error) Skipped {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return Skipped{Request: r, FrameID: frameID, Code: code, Message: errors.UserMessage(err)}
}

// ShapeBox is a resolved shape, kept for drawing the scene under the
// annotations.
type ShapeBox struct {
	ID   string   `json:"id" yaml:"id" bson:"id"`
	Name string   `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Box  geom.Box `json:"box" yaml:"box" bson:"box"`
}

// Frame is a frame with its resolved shapes.
type Frame struct {
	ID     string     `json:"id" yaml:"id" bson:"id"`
	Name   string     `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Width  float64    `json:"width" yaml:"width" bson:"width"`
	Height float64    `json:"height" yaml:"height" bson:"height"`
	Shapes []ShapeBox `json:"shapes,omitempty" yaml:"shapes,omitempty" bson:"shapes,omitempty"`
}

// Size returns the frame dimensions.
func (f Frame) Size() geom.Size { return geom.Size{Width: f.Width, Height: f.Height} }

// Batch is the result of one annotation run.
type Batch struct {
	ID        string    `json:"id" yaml:"id" bson:"_id"`
	SceneHash string    `json:"scene_hash" yaml:"scene_hash" bson:"scene_hash"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" bson:"created_at"`

	Frames      []Frame      `json:"frames" yaml:"frames" bson:"frames"`
	Annotations []Annotation `json:"annotations" yaml:"annotations" bson:"annotations"`
	Skipped     []Skipped    `json:"skipped,omitempty" yaml:"skipped,omitempty" bson:"skipped,omitempty"`
}

// Frame returns the frame with the given id.
func (b *Batch) Frame(id string) (Frame, bool) {
	return lo.Find(b.Frames, func(f Frame) bool { return f.ID == id })
}

// InFrame returns the annotations of one frame in their stored order.
func (b *Batch) InFrame(id string) []Annotation {
	return lo.Filter(b.Annotations, func(a Annotation, _ int) bool { return a.FrameID == id })
}

// CountByKind tallies annotations per kind.
func (b *Batch) CountByKind() map[Kind]int {
	return lo.CountValuesBy(b.Annotations, func(a Annotation) Kind { return a.Kind })
}

// DrawOrder returns the annotations sorted for drawing: by kind layer, then
// by id. The batch itself is not modified.
func (b *Batch) DrawOrder() []Annotation {
	out := slices.Clone(b.Annotations)
	slices.SortStableFunc(out, func(x, y Annotation) int {
		if c := cmp.Compare(x.Kind.ZOrder(), y.Kind.ZOrder()); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return out
}

// WithSeq returns a copy of a tagged with its position in request order.
func (a Annotation) WithSeq(seq int) Annotation {
	a.seq = seq
	return a
}

// SortAnnotations orders annotations by frame position in frames, then by
// request sequence. It is used to merge per-frame results deterministically.
func SortAnnotations(anns []Annotation, frames []Frame) {
	pos := make(map[string]int, len(frames))
	for i, f := range frames {
		pos[f.ID] = i
	}
	slices.SortStableFunc(anns, func(x, y Annotation) int {
		if c := cmp.Compare(pos[x.FrameID], pos[y.FrameID]); c != 0 {
			return c
		}
		return cmp.Compare(x.seq, y.seq)
	})
}
