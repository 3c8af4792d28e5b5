package batch

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/redline/pkg/core/gap"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/placement"
	"github.com/matzehuels/redline/pkg/errors"
)

func sample() *Batch {
	return &Batch{
		ID:        "b1",
		SceneHash: "abc",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Frames: []Frame{
			{ID: "f", Width: 400, Height: 300, Shapes: []ShapeBox{{ID: "a", Box: geom.Box{X: 10, Y: 10, Width: 90, Height: 40}}}},
			{ID: "g", Width: 200, Height: 200},
		},
		Annotations: []Annotation{
			{ID: "3", Kind: KindName, FrameID: "f", Shapes: []string{"a"}, Label: "a"},
			{ID: "2", Kind: KindSpacing, FrameID: "g", Shapes: []string{"a", "b"}, Label: "50",
				Gap:  &gap.Result{Box: geom.Box{X: 100, Y: 30, Width: 50, Height: 40}, Orientation: geom.Vertical, ShapeA: "a", ShapeB: "b"},
				Line: &Line{X1: 100, Y1: 30, X2: 150, Y2: 30}},
			{ID: "1", Kind: KindDimension, FrameID: "f", Shapes: []string{"a"}, Label: "90 × 40",
				Placed: placement.Placed{Box: geom.Box{X: 35, Y: 56, Width: 40, Height: 20}, Side: geom.Bottom, Requested: geom.Top, Flipped: true}},
			{ID: "0", Kind: KindOverlap, FrameID: "f", Shapes: []string{"a", "c"}, Label: "12"},
		},
		Skipped: []Skipped{{Request: Request{Kind: KindDimension, Shapes: []string{"loose"}}, Code: errors.ErrCodeNotInFrame, Message: "no frame"}},
	}
}

func TestRoundTrip(t *testing.T) {
	b := sample()
	data, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != b.ID || !got.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("header = %s %v, want %s %v", got.ID, got.CreatedAt, b.ID, b.CreatedAt)
	}
	if len(got.Annotations) != 4 {
		t.Fatalf("annotations = %d, want 4", len(got.Annotations))
	}
	sp := got.Annotations[1]
	if sp.Gap == nil || sp.Gap.Width != 50 || sp.Gap.Orientation != geom.Vertical {
		t.Errorf("gap = %+v", sp.Gap)
	}
	dim := got.Annotations[2]
	if dim.Placed.Side != geom.Bottom || !dim.Placed.Flipped || dim.Placed.Y != 56 {
		t.Errorf("placed = %+v", dim.Placed)
	}
	if got.Skipped[0].Code != errors.ErrCodeNotInFrame {
		t.Errorf("skipped code = %s", got.Skipped[0].Code)
	}
}

func TestPlacedJSONShape(t *testing.T) {
	data, err := Marshal(sample())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"orientation": "bottom"`, `"x": 35`, `"scene_hash": "abc"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	if err := WriteFile(sample(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got.Frames) != 2 || got.Frames[0].Shapes[0].Box.Width != 90 {
		t.Errorf("frames = %+v", got.Frames)
	}
}

type failingCloser struct {
	bytes.Buffer
	err error
}

func (f *failingCloser) Close() error { return f.err }

func TestWriteCloseReportsCloseError(t *testing.T) {
	w := &failingCloser{err: errors.New(errors.ErrCodeStorage, "flush failed")}
	err := writeClose(sample(), w)
	if !errors.Is(err, errors.ErrCodeStorage) {
		t.Errorf("writeClose() = %v, want close error", err)
	}
	if w.Len() == 0 {
		t.Error("batch was not written before close")
	}

	if err := writeClose(sample(), &failingCloser{}); err != nil {
		t.Errorf("writeClose() = %v, want nil", err)
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: got %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Unmarshal([]byte("{not json")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad json: got %v, want INVALID_FORMAT", err)
	}
}

func TestDrawOrder(t *testing.T) {
	b := sample()
	got := b.DrawOrder()
	want := []Kind{KindOverlap, KindSpacing, KindDimension, KindName}
	for i, a := range got {
		if a.Kind != want[i] {
			t.Errorf("position %d = %s, want %s", i, a.Kind, want[i])
		}
	}
	if b.Annotations[0].Kind != KindName {
		t.Error("DrawOrder modified the batch")
	}
}

func TestDrawOrderStableByID(t *testing.T) {
	b := &Batch{Annotations: []Annotation{
		{ID: "z", Kind: KindDimension},
		{ID: "a", Kind: KindDimension},
		{ID: "m", Kind: KindSpacing},
	}}
	got := b.DrawOrder()
	if got[0].ID != "m" || got[1].ID != "a" || got[2].ID != "z" {
		t.Errorf("order = %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSortAnnotations(t *testing.T) {
	frames := []Frame{{ID: "f"}, {ID: "g"}}
	anns := []Annotation{
		Annotation{ID: "g0", FrameID: "g"}.WithSeq(0),
		Annotation{ID: "f1", FrameID: "f"}.WithSeq(1),
		Annotation{ID: "f0", FrameID: "f"}.WithSeq(0),
	}
	SortAnnotations(anns, frames)
	if anns[0].ID != "f0" || anns[1].ID != "f1" || anns[2].ID != "g0" {
		t.Errorf("order = %s %s %s", anns[0].ID, anns[1].ID, anns[2].ID)
	}
}

func TestBatchLookups(t *testing.T) {
	b := sample()
	if f, ok := b.Frame("g"); !ok || f.Width != 200 {
		t.Errorf("Frame(g) = %+v, %v", f, ok)
	}
	if _, ok := b.Frame("nope"); ok {
		t.Error("Frame(nope) found")
	}
	if n := len(b.InFrame("f")); n != 3 {
		t.Errorf("InFrame(f) = %d, want 3", n)
	}
	counts := b.CountByKind()
	if counts[KindSpacing] != 1 || counts[KindName] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		code errors.Code
	}{
		{"dimension", Request{Kind: KindDimension, Shapes: []string{"a"}}, ""},
		{"spacing", Request{Kind: KindSpacing, Shapes: []string{"a", "b"}, Side: geom.Left}, ""},
		{"spacing one shape", Request{Kind: KindSpacing, Shapes: []string{"a"}}, errors.ErrCodeInvalidInput},
		{"name two shapes", Request{Kind: KindName, Shapes: []string{"a", "b"}}, errors.ErrCodeInvalidInput},
		{"overlap not requestable", Request{Kind: KindOverlap, Shapes: []string{"a", "b"}}, errors.ErrCodeInvalidInput},
		{"empty id", Request{Kind: KindName, Shapes: []string{""}}, errors.ErrCodeInvalidShape},
		{"bad side", Request{Kind: KindName, Shapes: []string{"a"}, Side: "north"}, errors.ErrCodeInvalidOrientation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestParseRequest(t *testing.T) {
	r, err := ParseRequest("spacing:title,icon@bottom")
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if r.Kind != KindSpacing || len(r.Shapes) != 2 || r.Shapes[1] != "icon" || r.Side != geom.Bottom {
		t.Errorf("got %+v", r)
	}
	if r.String() != "spacing:title,icon@bottom" {
		t.Errorf("String() = %q", r.String())
	}

	for _, bad := range []string{"", "dimension", "dimension:", "size:a", "name:a@up", "spacing:a"} {
		if _, err := ParseRequest(bad); err == nil {
			t.Errorf("ParseRequest(%q) succeeded", bad)
		}
	}
}

func TestSkippedFrom(t *testing.T) {
	r := Request{Kind: KindName, Shapes: []string{"x"}}
	s := SkippedFrom(r, "f", errors.New(errors.ErrCodeNotInFrame, "shape %q has no frame", "x"))
	if s.Code != errors.ErrCodeNotInFrame || s.Message != `shape "x" has no frame` || s.FrameID != "f" {
		t.Errorf("got %+v", s)
	}
	if s := SkippedFrom(r, "", bytes.ErrTooLarge); s.Code != errors.ErrCodeInternal {
		t.Errorf("plain error code = %s", s.Code)
	}
}
