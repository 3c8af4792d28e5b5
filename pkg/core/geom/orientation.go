package geom

import (
	"fmt"
	"strings"
)

// Orientation is the direction a gap or region is measured in.
//
// A vertical gap separates two shapes side by side: its measuring line runs
// horizontally between them but the gap itself is a vertical strip.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Perpendicular returns the other orientation.
func (o Orientation) Perpendicular() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Side is where an annotation sits relative to its target.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
	Left   Side = "left"
	Right  Side = "right"
)

// Sides lists every side in a fixed order.
var Sides = []Side{Top, Bottom, Left, Right}

// Opposite returns the side facing s.
func (s Side) Opposite() Side {
	switch s {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	case Right:
		return Left
	}
	return s
}

// IsVertical reports whether s places the glyph above or below the target.
func (s Side) IsVertical() bool { return s == Top || s == Bottom }

// ParseSide parses a side name. The empty string yields [Top].
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case "", Top:
		return Top, nil
	case Bottom:
		return Bottom, nil
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	}
	return "", fmt.Errorf("invalid orientation: %q (must be one of: top, bottom, left, right)", s)
}
