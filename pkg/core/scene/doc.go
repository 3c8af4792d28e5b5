// Package scene holds immutable snapshots of the shapes and frames that the
// spatial engine reasons about, and the ownership index that maps every shape
// to its top-level frame.
//
// # Transforms
//
// Shapes and frames carry an absolute 2×3 affine transform in the
// [matrix.Matrix] layout {a, b, c, d, e, f}, where a point (x, y) in the
// shape's local space maps to
//
//	x' = a·x + c·y + e
//	y' = b·x + d·y + f
//
// Local space spans (0, 0)–(width, height). [Translation] and [Rotation]
// build the common cases; positive rotation angles turn the shape
// counter-clockwise on screen, the way design tools report them.
//
// # Ownership
//
// [NewIndex] walks every parent chain exactly once and records which frame a
// shape belongs to. Downstream packages ask the index rather than walking the
// scene themselves:
//
//	ix, err := scene.NewIndex(s)
//	frame, err := ix.FrameOf("12:34") // NOT_IN_FRAME when the chain has no frame
//
// [matrix.Matrix]: https://pkg.go.dev/seehuhn.de/go/geom/matrix
package scene
