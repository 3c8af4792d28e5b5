// Package geom defines the axis-aligned rectangle and orientation types shared
// by the bounds, gap, overlap and placement packages.
//
// All coordinates use a top-left origin with y growing downwards and are
// relative to the enclosing frame. A [Box] is a value type; nothing in redline
// mutates a box after it has been computed.
package geom
