package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/label"
	"github.com/matzehuels/redline/pkg/core/placement"
)

func testBatch() *batch.Batch {
	return &batch.Batch{
		ID: "b",
		Frames: []batch.Frame{
			{ID: "f", Name: "Home", Width: 400, Height: 300, Shapes: []batch.ShapeBox{
				{ID: "a", Box: geom.Box{X: 0, Y: 0, Width: 100, Height: 50}},
				{ID: "b", Box: geom.Box{X: 150, Y: 10, Width: 100, Height: 50}},
			}},
			{ID: "g", Width: 200, Height: 320},
		},
		Annotations: []batch.Annotation{
			{ID: "n1", Kind: batch.KindName, FrameID: "f", Label: "<Logo>",
				Target: geom.Box{Width: 100, Height: 50},
				Placed: placement.Placed{Box: geom.Box{X: 30, Y: 62, Width: 40, Height: 18}, Side: geom.Bottom,
					Pointer: placement.Pointer{X: 50, Y: 62, Direction: geom.Top}}},
			{ID: "s1", Kind: batch.KindSpacing, FrameID: "f", Label: "50",
				Target: geom.Box{X: 100, Y: 10, Width: 50, Height: 40},
				Line:   &batch.Line{X1: 100, Y1: 30, X2: 150, Y2: 30},
				Placed: placement.Placed{Box: geom.Box{X: 115, Y: 56, Width: 20, Height: 18}, Side: geom.Bottom,
					Pointer: placement.Pointer{X: 125, Y: 56, Direction: geom.Top}}},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	out := string(RenderSVG(testBatch()))

	if !strings.Contains(out, "<svg") || !strings.HasSuffix(strings.TrimSpace(out), "</svg>") {
		t.Fatalf("not an svg document:\n%s", out)
	}
	// 20 + 400 + 40 + 200 + 20 wide, 320 + 2*20 high
	if !strings.Contains(out, `width="680"`) || !strings.Contains(out, `height="360"`) {
		t.Errorf("unexpected canvas size:\n%s", out[:200])
	}
	for _, want := range []string{`id="frame-f"`, `id="frame-g"`, `id="annotation-s1"`, "<title>Home</title>", "&lt;Logo&gt;"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestRenderSVGDrawOrder(t *testing.T) {
	out := string(RenderSVG(testBatch()))
	spacing := strings.Index(out, "annotation-s1")
	name := strings.Index(out, "annotation-n1")
	if spacing < 0 || name < 0 || spacing > name {
		t.Errorf("spacing (%d) should be drawn before name (%d)", spacing, name)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	plain := RenderSVG(testBatch())
	withRegions := RenderSVG(testBatch(), WithRegions())
	if bytes.Contains(plain, []byte("fill-opacity:0.15")) {
		t.Error("regions drawn without WithRegions")
	}
	if !bytes.Contains(withRegions, []byte("fill-opacity:0.15")) {
		t.Error("WithRegions did not draw regions")
	}

	noShapes := RenderSVG(testBatch(), WithoutShapes())
	if bytes.Contains(noShapes, []byte("stroke-dasharray:2,2")) {
		t.Error("WithoutShapes still drew shapes")
	}

	only := string(RenderSVG(testBatch(), WithFrames("g")))
	if strings.Contains(only, "frame-f") || !strings.Contains(only, "frame-g") {
		t.Error("WithFrames did not filter frames")
	}
}

func TestRenderSVGClampsFontSize(t *testing.T) {
	out := string(RenderSVG(testBatch(), WithLabelStyle(label.Style{FontSize: 30})))
	if strings.Contains(out, "font-size:30px") || !strings.Contains(out, "font-size:24px") {
		t.Error("label text should be drawn at the clamped size it was measured with")
	}

	out = string(RenderSVG(testBatch(), WithLabelStyle(label.Style{})))
	if !strings.Contains(out, "font-size:11px") {
		t.Error("unset font size should fall back to the default")
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	if !bytes.Equal(RenderSVG(testBatch()), RenderSVG(testBatch())) {
		t.Error("RenderSVG output is not deterministic")
	}
}

func TestConnectorEnd(t *testing.T) {
	target := geom.Box{X: 10, Y: 20, Width: 30, Height: 40}
	tests := []struct {
		dir    geom.Side
		wx, wy float64
	}{
		{geom.Bottom, 5, 20},
		{geom.Top, 5, 60},
		{geom.Right, 10, 7},
		{geom.Left, 40, 7},
	}
	for _, tt := range tests {
		x, y := connectorEnd(5, 7, tt.dir, target)
		if x != tt.wx || y != tt.wy {
			t.Errorf("connectorEnd(%s) = (%g,%g), want (%g,%g)", tt.dir, x, y, tt.wx, tt.wy)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testBatch())
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	b, err := batch.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(b.Annotations) != 2 || b.Annotations[1].Line == nil {
		t.Errorf("round trip lost data: %+v", b.Annotations)
	}
}
