package sink

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/samber/lo"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/label"
)

const (
	canvasPadding = 20
	frameSpacing  = 40
)

// kindColors maps annotation kinds to their stroke and pill colour.
var kindColors = map[batch.Kind]string{
	batch.KindOverlap:   "#8e4ec6",
	batch.KindSpacing:   "#f76b15",
	batch.KindDimension: "#e5484d",
	batch.KindName:      "#0090ff",
}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       label.Style
	showRegions bool
	showShapes  bool
	frames      map[string]bool
}

// WithRegions fills the gap strips and overlap regions that spacing and
// overlap annotations measure.
func WithRegions() SVGOption { return func(r *svgRenderer) { r.showRegions = true } }

// WithLabelStyle sets the font size used for label text.
func WithLabelStyle(s label.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithoutShapes omits the shape outlines.
func WithoutShapes() SVGOption { return func(r *svgRenderer) { r.showShapes = false } }

// WithFrames restricts output to the given frame ids.
func WithFrames(ids ...string) SVGOption {
	return func(r *svgRenderer) { r.frames = lo.SliceToMap(ids, func(id string) (string, bool) { return id, true }) }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: label.DefaultStyle, showShapes: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws the batch as a standalone SVG document.
func RenderSVG(b *batch.Batch, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	frames := lo.Filter(b.Frames, func(f batch.Frame, _ int) bool {
		return r.frames == nil || r.frames[f.ID]
	})
	width, height := canvasSize(frames)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#f4f4f5")

	byFrame := lo.GroupBy(b.DrawOrder(), func(a batch.Annotation) string { return a.FrameID })

	x := canvasPadding
	for _, f := range frames {
		canvas.Translate(x, canvasPadding)
		canvas.Gid("frame-" + f.ID)
		canvas.Title(lo.Ternary(f.Name != "", f.Name, f.ID))
		r.renderFrame(canvas, f, byFrame[f.ID])
		canvas.Gend()
		canvas.Gend()
		x += px(f.Width) + frameSpacing
	}

	canvas.End()
	return buf.Bytes()
}

func canvasSize(frames []batch.Frame) (int, int) {
	w, h := canvasPadding, 0
	for i, f := range frames {
		if i > 0 {
			w += frameSpacing
		}
		w += px(f.Width)
		h = max(h, px(f.Height))
	}
	return w + canvasPadding, h + 2*canvasPadding
}

func (r *svgRenderer) renderFrame(canvas *svg.SVG, f batch.Frame, anns []batch.Annotation) {
	canvas.Rect(0, 0, px(f.Width), px(f.Height), "fill:#ffffff;stroke:#a1a1aa;stroke-width:1")

	if r.showShapes {
		for _, s := range f.Shapes {
			rect(canvas, s.Box, "fill:none;stroke:#71717a;stroke-width:1;stroke-dasharray:2,2")
		}
	}

	if r.showRegions {
		for _, a := range anns {
			if a.Kind == batch.KindSpacing || a.Kind == batch.KindOverlap {
				rect(canvas, a.Target, fmt.Sprintf("fill:%s;fill-opacity:0.15;stroke:none", kindColors[a.Kind]))
			}
		}
	}

	for _, a := range anns {
		r.renderAnnotation(canvas, a)
	}
}

func (r *svgRenderer) renderAnnotation(canvas *svg.SVG, a batch.Annotation) {
	color := kindColors[a.Kind]
	canvas.Gid("annotation-" + a.ID)

	if a.Line != nil {
		canvas.Line(px(a.Line.X1), px(a.Line.Y1), px(a.Line.X2), px(a.Line.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:1", color))
	}

	ex, ey := connectorEnd(a.Placed.Pointer.X, a.Placed.Pointer.Y, a.Placed.Pointer.Direction, a.Target)
	canvas.Line(px(a.Placed.Pointer.X), px(a.Placed.Pointer.Y), px(ex), px(ey),
		fmt.Sprintf("stroke:%s;stroke-width:1;stroke-dasharray:3,2", color))

	g := a.Placed.Box
	canvas.Roundrect(px(g.X), px(g.Y), px(g.Width), px(g.Height), 3, 3, "fill:"+color)
	fs := r.style.EffectiveFontSize()
	canvas.Text(px(g.CenterX()), px(g.CenterY()+fs*0.35), a.Label,
		fmt.Sprintf("fill:#ffffff;font-family:sans-serif;font-size:%gpx;text-anchor:middle", fs))

	canvas.Gend()
}

// connectorEnd returns where a connector leaving the glyph at (x, y) in
// direction dir meets the target.
func connectorEnd(x, y float64, dir geom.Side, target geom.Box) (float64, float64) {
	switch dir {
	case geom.Bottom:
		return x, target.Y
	case geom.Top:
		return x, target.YOuter()
	case geom.Right:
		return target.X, y
	default:
		return target.XOuter(), y
	}
}

func rect(canvas *svg.SVG, b geom.Box, style string) {
	canvas.Rect(px(b.X), px(b.Y), px(b.Width), px(b.Height), style)
}

// px rounds a frame coordinate to the integer grid svgo draws on.
func px(v float64) int { return int(math.Round(v)) }
