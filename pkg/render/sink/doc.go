// Package sink renders annotation batches.
//
// # SVG
//
// [RenderSVG] draws every frame of a batch side by side: the frame outline,
// the resolved shape boxes, and each annotation with its measuring line,
// connector and label glyph. Annotations are drawn in kind order (overlap,
// spacing, dimension, name) so that names are never hidden behind
// measurements; within a kind the order is stable by annotation id.
//
//	svg := sink.RenderSVG(b, sink.WithRegions())
//
// # JSON
//
// [RenderJSON] encodes the batch itself, indented, for tools that place
// their own overlays.
package sink
