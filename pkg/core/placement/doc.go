// Package placement positions an annotation glyph next to its target so the
// glyph stays inside the target's frame.
//
// [Place] starts from a naive placement centred on the requested side of the
// target, offset by a clearance that depends on the annotation [Kind]. If the
// glyph would bleed past the frame it is reflowed in a fixed order:
//
//  1. top bleeding above the frame flips to bottom, bottom bleeding below
//     flips to top; left and right flip the same way on the x axis
//  2. top or bottom bleeding past a side edge is turned into a left or right
//     placement on the inward side of the target, vertically centred
//  3. left or right bleeding past the top or bottom is clamped to that edge
//  4. anything still bleeding is clamped inside the frame with a margin
//
// Place never fails; it returns the best placement it found together with
// the side it ended up on and where its pointer should attach.
package placement
