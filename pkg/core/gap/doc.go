// Package gap finds the empty space between two shapes.
//
// # Algorithm
//
// Both shapes are resolved to frame-relative boxes. The left-most box is A,
// the other is B. When A's right edge lies strictly before B's left edge the
// pair is separated horizontally and the result is a vertical gap: a strip
// from A.XOuter to B.X whose measuring line sits at the midpoint of the
// vertical span chosen by [PerpendicularSpan]. Otherwise the same test runs on
// the vertical axis with the top-most box as A, producing a horizontal gap.
//
// Two boxes that share an edge are not separated. The one exception is a
// shape with horizontal auto-layout padding on the touching side: the gap is
// then reported inside that padding, spanning the shape's padded inner
// height.
//
// When neither axis separates the pair, [Compute] returns a nil result and a
// nil error. Callers then use the overlap package instead.
//
// # Tie-breaks
//
// The perpendicular span comes from a fixed, ordered table of six edge
// orderings; the first row that matches wins. Equal coordinates therefore
// always resolve the same way, and the table must not be reordered.
package gap
