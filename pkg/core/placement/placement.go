package placement

import (
	"math"

	"github.com/matzehuels/redline/pkg/core/geom"
)

// Kind selects the clearance used between glyph and target.
type Kind string

const (
	// Text annotations carry names and other free-form labels.
	Text Kind = "text"
	// Measurement annotations carry dimensions and spacings.
	Measurement Kind = "measurement"
)

const (
	DefaultTextClearance        = 12.0
	DefaultMeasurementClearance = 6.0
	DefaultMargin               = 4.0
)

// Options tunes a single placement.
type Options struct {
	Kind                 Kind
	TextClearance        float64
	MeasurementClearance float64

	// Margin is kept between a clamped glyph and the frame edge.
	Margin float64
}

// DefaultOptions returns options for a text annotation with the default
// clearances and margin.
func DefaultOptions() Options {
	return Options{
		Kind:                 Text,
		TextClearance:        DefaultTextClearance,
		MeasurementClearance: DefaultMeasurementClearance,
		Margin:               DefaultMargin,
	}
}

// WithKind returns a copy of o for the given annotation kind.
func (o Options) WithKind(k Kind) Options {
	o.Kind = k
	return o
}

func (o Options) clearance() float64 {
	if o.Kind == Measurement {
		return o.MeasurementClearance
	}
	return o.TextClearance
}

// Pointer is where the connector leaves the glyph and which way it points.
type Pointer struct {
	X         float64   `json:"x" yaml:"x" bson:"x"`
	Y         float64   `json:"y" yaml:"y" bson:"y"`
	Direction geom.Side `json:"direction" yaml:"direction" bson:"direction"`
}

// Placed is a glyph position in frame coordinates.
type Placed struct {
	geom.Box  `bson:",inline" yaml:",inline"`
	Side      geom.Side `json:"orientation" yaml:"orientation" bson:"orientation"`
	Requested geom.Side `json:"requested" yaml:"requested" bson:"requested"`
	Pointer   Pointer   `json:"pointer" yaml:"pointer" bson:"pointer"`

	// Flipped is set when the glyph moved to another side of the target.
	Flipped bool `json:"flipped,omitempty" yaml:"flipped,omitempty" bson:"flipped,omitempty"`
	// Clamped is set when the glyph was pushed back inside the frame.
	Clamped bool `json:"clamped,omitempty" yaml:"clamped,omitempty" bson:"clamped,omitempty"`
}

// Place positions a glyph of the given size on side of target, inside a frame
// of the given size. An empty side means [geom.Top].
func Place(target geom.Box, frame geom.Size, glyph geom.Size, side geom.Side, opts Options) Placed {
	if side == "" {
		side = geom.Top
	}
	c := opts.clearance()
	p := Placed{Side: side, Requested: side}
	p.Box = naive(target, glyph, side, c)

	// 1. flip to the opposite side on the axis that bleeds
	if b := bleedOf(p.Box, frame); b.on(side) {
		p.Side = side.Opposite()
		p.Flipped = true
		p.Box = naive(target, glyph, p.Side, c)
	}

	// 2. top/bottom running off a side edge turn inward
	if p.Side.IsVertical() {
		b := bleedOf(p.Box, frame)
		switch {
		case b.left:
			p.Side = geom.Right
			p.Flipped = true
			p.Box = naive(target, glyph, p.Side, c)
		case b.right:
			p.Side = geom.Left
			p.Flipped = true
			p.Box = naive(target, glyph, p.Side, c)
		}
	}

	// 3. left/right running off the top or bottom hug that edge
	if !p.Side.IsVertical() {
		if b := bleedOf(p.Box, frame); b.top || b.bottom {
			p.Y = clamp(p.Y, glyph.Height, frame.Height, opts.Margin)
			p.Clamped = true
		}
	}

	// 4. final clamp
	if b := bleedOf(p.Box, frame); b.any() {
		if b.left || b.right {
			p.X = clamp(p.X, glyph.Width, frame.Width, opts.Margin)
		}
		if b.top || b.bottom {
			p.Y = clamp(p.Y, glyph.Height, frame.Height, opts.Margin)
		}
		p.Clamped = true
	}

	p.Pointer = pointer(p.Box, target, p.Side)
	return p
}

// naive centres the glyph on side of target at distance c.
func naive(target geom.Box, glyph geom.Size, side geom.Side, c float64) geom.Box {
	b := geom.Box{Width: glyph.Width, Height: glyph.Height}
	switch side {
	case geom.Top:
		b.X = target.CenterX() - glyph.Width/2
		b.Y = target.Y - c - glyph.Height
	case geom.Bottom:
		b.X = target.CenterX() - glyph.Width/2
		b.Y = target.YOuter() + c
	case geom.Left:
		b.X = target.X - c - glyph.Width
		b.Y = target.CenterY() - glyph.Height/2
	case geom.Right:
		b.X = target.XOuter() + c
		b.Y = target.CenterY() - glyph.Height/2
	}
	return b
}

type bleed struct {
	top, bottom, left, right bool
}

func bleedOf(b geom.Box, frame geom.Size) bleed {
	return bleed{
		top:    b.Y < 0,
		bottom: b.YOuter() > frame.Height,
		left:   b.X < 0,
		right:  b.XOuter() > frame.Width,
	}
}

// on reports whether the glyph bleeds past the frame edge on side s.
func (b bleed) on(s geom.Side) bool {
	switch s {
	case geom.Top:
		return b.top
	case geom.Bottom:
		return b.bottom
	case geom.Left:
		return b.left
	case geom.Right:
		return b.right
	}
	return false
}

func (b bleed) any() bool { return b.top || b.bottom || b.left || b.right }

// clamp keeps [v, v+size] inside [margin, extent-margin]. When the glyph
// does not fit, the near edge wins.
func clamp(v, size, extent, margin float64) float64 {
	return math.Max(margin, math.Min(v, extent-size-margin))
}

// pointer attaches the connector to the glyph edge facing the target, as
// close to the target's centre as the glyph allows.
func pointer(g, target geom.Box, side geom.Side) Pointer {
	switch side {
	case geom.Top:
		return Pointer{X: within(target.CenterX(), g.X, g.XOuter()), Y: g.YOuter(), Direction: geom.Bottom}
	case geom.Bottom:
		return Pointer{X: within(target.CenterX(), g.X, g.XOuter()), Y: g.Y, Direction: geom.Top}
	case geom.Left:
		return Pointer{X: g.XOuter(), Y: within(target.CenterY(), g.Y, g.YOuter()), Direction: geom.Right}
	default:
		return Pointer{X: g.X, Y: within(target.CenterY(), g.Y, g.YOuter()), Direction: geom.Left}
	}
}

func within(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
