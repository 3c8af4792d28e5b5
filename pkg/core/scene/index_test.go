package scene

import (
	"testing"

	"github.com/matzehuels/redline/pkg/errors"
)

func testScene() Scene {
	return Scene{
		Frames: []Frame{
			NewFrame("home", 1000, 0, 375, 812),
			NewFrame("settings", 2000, 0, 375, 812),
		},
		Shapes: []Shape{
			NewShape("card", 1016, 100, 343, 200).In("home"),
			NewShape("title", 1032, 116, 200, 24).In("card"),
			NewShape("icon", 1300, 116, 24, 24).In("card"),
			NewShape("toggle", 2300, 80, 51, 31).In("settings"),
			NewShape("loose", 0, 0, 10, 10),
		},
	}
}

func TestNewIndexOwnership(t *testing.T) {
	ix, err := NewIndex(testScene())
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	tests := []struct {
		shape string
		frame string
	}{
		{"card", "home"},
		{"title", "home"},
		{"icon", "home"},
		{"toggle", "settings"},
	}
	for _, tt := range tests {
		f, err := ix.FrameOf(tt.shape)
		if err != nil {
			t.Errorf("FrameOf(%q): %v", tt.shape, err)
			continue
		}
		if f.ID != tt.frame {
			t.Errorf("FrameOf(%q) = %q, want %q", tt.shape, f.ID, tt.frame)
		}
	}
}

func TestFrameOfNotInFrame(t *testing.T) {
	ix, err := NewIndex(testScene())
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	_, err = ix.FrameOf("loose")
	if !errors.Is(err, errors.ErrCodeNotInFrame) {
		t.Errorf("FrameOf(loose) error = %v, want NOT_IN_FRAME", err)
	}

	_, err = ix.FrameOf("missing")
	if !errors.Is(err, errors.ErrCodeShapeNotFound) {
		t.Errorf("FrameOf(missing) error = %v, want SHAPE_NOT_FOUND", err)
	}
}

func TestNewIndexInvalid(t *testing.T) {
	tests := []struct {
		name  string
		scene Scene
	}{
		{
			name: "duplicate shape",
			scene: Scene{Shapes: []Shape{
				NewShape("a", 0, 0, 1, 1),
				NewShape("a", 0, 0, 1, 1),
			}},
		},
		{
			name: "duplicate frame",
			scene: Scene{Frames: []Frame{
				NewFrame("f", 0, 0, 1, 1),
				NewFrame("f", 0, 0, 1, 1),
			}},
		},
		{
			name: "shape id clashes with frame",
			scene: Scene{
				Frames: []Frame{NewFrame("f", 0, 0, 1, 1)},
				Shapes: []Shape{NewShape("f", 0, 0, 1, 1)},
			},
		},
		{
			name:  "unknown parent",
			scene: Scene{Shapes: []Shape{NewShape("a", 0, 0, 1, 1).In("ghost")}},
		},
		{
			name: "parent cycle",
			scene: Scene{Shapes: []Shape{
				NewShape("a", 0, 0, 1, 1).In("b"),
				NewShape("b", 0, 0, 1, 1).In("a"),
			}},
		},
		{
			name:  "negative width",
			scene: Scene{Shapes: []Shape{NewShape("a", 0, 0, -1, 1)}},
		},
		{
			name:  "empty id",
			scene: Scene{Shapes: []Shape{NewShape("", 0, 0, 1, 1)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIndex(tt.scene)
			if !errors.Is(err, errors.ErrCodeInvalidScene) {
				t.Errorf("NewIndex() error = %v, want INVALID_SCENE", err)
			}
		})
	}
}

func TestShapesIn(t *testing.T) {
	ix, err := NewIndex(testScene())
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	got := ix.ShapesIn("home")
	want := []string{"card", "title", "icon"}
	if len(got) != len(want) {
		t.Fatalf("ShapesIn(home) returned %d shapes, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s.ID != want[i] {
			t.Errorf("ShapesIn(home)[%d] = %q, want %q", i, s.ID, want[i])
		}
	}
	if n := ix.ShapeCount(); n != 5 {
		t.Errorf("ShapeCount() = %d, want 5", n)
	}
	if frames := ix.Frames(); len(frames) != 2 || frames[0].ID != "home" {
		t.Errorf("Frames() = %v", frames)
	}
}

func TestIndexIsolatedFromCaller(t *testing.T) {
	s := testScene()
	ix, err := NewIndex(s)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	s.Shapes[0].Width = 1

	card, _ := ix.Shape("card")
	if card.Width != 343 {
		t.Errorf("index shape mutated through caller slice: width = %v", card.Width)
	}
}
