package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/cache"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/label"
	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("empty options should pass: %v", err)
	}
	if opts.Orientation != geom.Top {
		t.Errorf("Orientation = %q, want top", opts.Orientation)
	}
	if opts.TextClearance != 12 || opts.MeasurementClearance != 6 || opts.Margin != 4 {
		t.Errorf("clearances = %g/%g/%g", opts.TextClearance, opts.MeasurementClearance, opts.Margin)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Concurrency < 1 || opts.Logger == nil {
		t.Errorf("Concurrency = %d, Logger = %v", opts.Concurrency, opts.Logger)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad orientation", Options{Orientation: "north"}, errors.ErrCodeInvalidOrientation},
		{"negative margin", Options{Margin: -1}, errors.ErrCodeInvalidInput},
		{"bad request", Options{Requests: []batch.Request{{Kind: batch.KindSpacing, Shapes: []string{"a"}}}}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want %s", err, tt.code)
			}
		})
	}
}

// fixture builds a two-frame scene:
//
//	frame f: a and b side by side, outer with inner nested on top, twin
//	         overlapping a at the same stack index
//	frame g: c
//	loose:   not inside any frame
func fixture() scene.Scene {
	return scene.Scene{
		Frames: []scene.Frame{
			scene.NewFrame("f", 0, 0, 400, 300),
			scene.NewFrame("g", 1000, 0, 200, 200),
		},
		Shapes: []scene.Shape{
			scene.NewShape("a", 0, 0, 100, 50).In("f"),
			scene.NewShape("b", 150, 10, 100, 50).In("f"),
			scene.NewShape("outer", 200, 150, 100, 100).In("f"),
			scene.NewShape("inner", 225, 175, 50, 50).In("f").WithStack(1),
			scene.NewShape("twin", 10, 10, 20, 20).In("f"),
			scene.NewShape("c", 1010, 10, 50, 50).In("g"),
			scene.NewShape("loose", 0, 0, 10, 10),
		},
	}
}

func requests(t *testing.T, sigs ...string) []batch.Request {
	t.Helper()
	out := make([]batch.Request, len(sigs))
	for i, s := range sigs {
		r, err := batch.ParseRequest(s)
		if err != nil {
			t.Fatalf("ParseRequest(%q): %v", s, err)
		}
		out[i] = r
	}
	return out
}

func fullRequests(t *testing.T) []batch.Request {
	return requests(t,
		"spacing:a,b",
		"spacing:outer,inner",
		"dimension:c",
		"dimension:loose",
		"spacing:a,c",
		"spacing:a,twin",
		"name:a",
	)
}

func TestAnnotate(t *testing.T) {
	b, err := Annotate(context.Background(), fixture(), Options{Requests: fullRequests(t)})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	wantKinds := []batch.Kind{
		batch.KindSpacing,
		batch.KindOverlap, batch.KindOverlap, batch.KindOverlap, batch.KindOverlap,
		batch.KindName,
		batch.KindDimension,
	}
	if len(b.Annotations) != len(wantKinds) {
		t.Fatalf("got %d annotations, want %d: %+v", len(b.Annotations), len(wantKinds), b.Annotations)
	}
	for i, a := range b.Annotations {
		if a.Kind != wantKinds[i] {
			t.Errorf("annotation %d kind = %s, want %s", i, a.Kind, wantKinds[i])
		}
	}

	sp := b.Annotations[0]
	if sp.Gap == nil || sp.Gap.Box != (geom.Box{X: 100, Y: 30, Width: 50, Height: 40}) {
		t.Errorf("spacing gap = %+v", sp.Gap)
	}
	if sp.Label != "50" || sp.Target != (geom.Box{X: 100, Y: 10, Width: 50, Height: 40}) {
		t.Errorf("spacing label/target = %q %v", sp.Label, sp.Target)
	}
	if sp.Placed.Side != geom.Bottom || !sp.Placed.Flipped {
		t.Errorf("spacing glyph should flip below the gap, got %+v", sp.Placed)
	}

	for _, a := range b.Annotations[1:5] {
		if a.Region == nil || a.Label != "25" {
			t.Errorf("overlap annotation = %+v", a)
		}
	}

	if b.Annotations[5].Label != "a" {
		t.Errorf("name label = %q, want a", b.Annotations[5].Label)
	}
	dim := b.Annotations[6]
	if dim.FrameID != "g" || dim.Label != "50 × 50" || dim.Target != (geom.Box{X: 10, Y: 10, Width: 50, Height: 50}) {
		t.Errorf("dimension = %+v", dim)
	}

	wantSkipped := map[string]errors.Code{
		"dimension:loose": errors.ErrCodeNotInFrame,
		"spacing:a,c":     errors.ErrCodeFrameMismatch,
		"spacing:a,twin":  errors.ErrCodeAmbiguousStackOrder,
	}
	if len(b.Skipped) != len(wantSkipped) {
		t.Fatalf("skipped = %+v", b.Skipped)
	}
	for _, s := range b.Skipped {
		if want := wantSkipped[s.Request.String()]; s.Code != want {
			t.Errorf("skipped %s code = %s, want %s", s.Request, s.Code, want)
		}
	}

	if len(b.Frames) != 2 || len(b.Frames[0].Shapes) != 5 || len(b.Frames[1].Shapes) != 1 {
		t.Errorf("frames = %+v", b.Frames)
	}
}

func TestAnnotateStaysInsideFrame(t *testing.T) {
	b, err := Annotate(context.Background(), fixture(), Options{Requests: fullRequests(t)})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	for _, a := range b.Annotations {
		f, _ := b.Frame(a.FrameID)
		p := a.Placed
		if p.X < 0 || p.Y < 0 || p.XOuter() > f.Width || p.YOuter() > f.Height {
			t.Errorf("%s %s glyph %v leaves frame %gx%g", a.Kind, a.Shapes, p.Box, f.Width, f.Height)
		}
	}
}

func TestAnnotateDeterministic(t *testing.T) {
	ctx := context.Background()
	serial, err := Annotate(ctx, fixture(), Options{Requests: fullRequests(t), Concurrency: 1})
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := Annotate(ctx, fixture(), Options{Requests: fullRequests(t), Concurrency: 8})
	if err != nil {
		t.Fatal(err)
	}
	if serial.ID == parallel.ID {
		t.Error("batch ids should differ between runs")
	}
	if len(serial.Annotations) != len(parallel.Annotations) {
		t.Fatalf("annotation count differs: %d vs %d", len(serial.Annotations), len(parallel.Annotations))
	}
	for i := range serial.Annotations {
		s, p := serial.Annotations[i], parallel.Annotations[i]
		if s.ID != p.ID || s.Placed != p.Placed {
			t.Errorf("annotation %d differs: %+v vs %+v", i, s, p)
		}
	}
}

func TestAnnotateDefaultRequests(t *testing.T) {
	b, err := Annotate(context.Background(), fixture(), Options{})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	// Every framed shape gets a dimension; loose is not framed.
	if len(b.Annotations) != 6 || len(b.Skipped) != 0 {
		t.Errorf("annotations = %d, skipped = %d", len(b.Annotations), len(b.Skipped))
	}
	for _, a := range b.Annotations {
		if a.Kind != batch.KindDimension {
			t.Errorf("default request kind = %s", a.Kind)
		}
	}
}

func TestAnnotateInvalidScene(t *testing.T) {
	s := scene.Scene{Shapes: []scene.Shape{
		scene.NewShape("a", 0, 0, 1, 1),
		scene.NewShape("a", 0, 0, 1, 1),
	}}
	if _, err := Annotate(context.Background(), s, Options{}); !errors.Is(err, errors.ErrCodeInvalidScene) {
		t.Errorf("Annotate() = %v, want INVALID_SCENE", err)
	}
}

func TestAnnotateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Annotate(ctx, fixture(), Options{}); err == nil {
		t.Error("Annotate with canceled context should fail")
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	ctx := context.Background()
	opts := Options{Requests: fullRequests(t), Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, fixture(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.AnnotateHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}
	if !bytes.Contains(first.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact missing <svg element")
	}

	second, err := r.Execute(ctx, fixture(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.AnnotateHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if second.Batch.ID == first.Batch.ID {
		t.Error("cached batch should get a new id")
	}
	if second.Batch.Annotations[0].ID != first.Batch.Annotations[0].ID {
		t.Error("annotation ids should be stable across cache hits")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}
	if !bytes.Contains(second.Artifacts[FormatJSON], []byte(second.Batch.ID)) {
		t.Error("json artifact should carry the current batch id")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, fixture(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if third.CacheInfo.AnnotateHit {
		t.Error("refresh should bypass the result cache")
	}
}

func TestRunnerCacheKeyCoversLabelStyle(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	ctx := context.Background()
	opts := Options{
		Requests: fullRequests(t),
		Formats:  []string{FormatSVG},
		Label:    label.Style{FontSize: 11, PaddingX: 4, PaddingY: 2},
	}
	if _, err := r.Execute(ctx, fixture(), opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	padded := opts
	padded.Label.PaddingX = 40
	cached, err := r.Execute(ctx, fixture(), padded)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if cached.CacheInfo.AnnotateHit {
		t.Error("changing label padding should miss the result cache")
	}

	fresh, err := NewRunner(nil, nil, nil).Execute(ctx, fixture(), padded)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if cached.Batch.Annotations[0].Placed.Box != fresh.Batch.Annotations[0].Placed.Box {
		t.Errorf("glyph = %+v, want %+v", cached.Batch.Annotations[0].Placed.Box, fresh.Batch.Annotations[0].Placed.Box)
	}

	for _, size := range []float64{24, 30} {
		large := opts
		large.Label.FontSize = size
		res, err := r.Execute(ctx, fixture(), large)
		if err != nil {
			t.Fatalf("Execute(font %g): %v", size, err)
		}
		if !bytes.Contains(res.Artifacts[FormatSVG], []byte("font-size:24px")) {
			t.Errorf("font %g: svg should draw text at the clamped 24px", size)
		}
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), fixture(), Options{Formats: []string{"pdf"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute() = %v, want INVALID_FORMAT", err)
	}
}
