// Package render groups the output formats for annotation batches.
//
// # Overview
//
// Rendering is the last pipeline phase. It never changes geometry: every
// coordinate it draws comes from the batch produced by the annotate phase.
//
//   - SVG overlay of frames, shapes and placed annotations (in [sink])
//   - JSON encoding of the batch (in [sink])
//
//	svg := sink.RenderSVG(b, sink.WithRegions())
//	data, err := sink.RenderJSON(b)
//
// [sink]: github.com/matzehuels/redline/pkg/render/sink
package render
