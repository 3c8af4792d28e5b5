package geom

import "fmt"

// Box is an axis-aligned rectangle in frame coordinates.
type Box struct {
	X      float64 `json:"x" yaml:"x" bson:"x"`
	Y      float64 `json:"y" yaml:"y" bson:"y"`
	Width  float64 `json:"width" yaml:"width" bson:"width"`
	Height float64 `json:"height" yaml:"height" bson:"height"`
}

// Size is the measured extent of a glyph or frame.
type Size struct {
	Width  float64 `json:"width" yaml:"width" bson:"width"`
	Height float64 `json:"height" yaml:"height" bson:"height"`
}

// XOuter returns the right edge of the box.
func (b Box) XOuter() float64 { return b.X + b.Width }

// YOuter returns the bottom edge of the box.
func (b Box) YOuter() float64 { return b.Y + b.Height }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Size returns the width and height of the box.
func (b Box) Size() Size { return Size{Width: b.Width, Height: b.Height} }

// Degenerate reports whether the box has no positive area.
func (b Box) Degenerate() bool { return b.Width <= 0 || b.Height <= 0 }

// Contains reports whether o lies entirely within b. Shared edges count.
func (b Box) Contains(o Box) bool {
	return o.X >= b.X && o.Y >= b.Y && o.XOuter() <= b.XOuter() && o.YOuter() <= b.YOuter()
}

// Translate returns b moved by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	b.X += dx
	b.Y += dy
	return b
}

// Span returns the extent of b along the given axis as [lo, hi].
func (b Box) Span(o Orientation) Interval {
	if o == Horizontal {
		return Interval{Lo: b.X, Hi: b.XOuter()}
	}
	return Interval{Lo: b.Y, Hi: b.YOuter()}
}

func (b Box) String() string {
	return fmt.Sprintf("{x:%g y:%g w:%g h:%g}", b.X, b.Y, b.Width, b.Height)
}

// Interval is a closed range on one axis.
type Interval struct {
	Lo, Hi float64
}

// Len returns Hi - Lo.
func (i Interval) Len() float64 { return i.Hi - i.Lo }

// Mid returns the midpoint of the interval.
func (i Interval) Mid() float64 { return i.Lo + (i.Hi-i.Lo)/2 }
