package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"seehuhn.de/go/geom/matrix"

	"github.com/matzehuels/redline/pkg/core/scene"
)

// WriteScene encodes s to w in the given format.
func WriteScene(s scene.Scene, w io.Writer, f Format) error {
	doc := toDocument(s)
	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportScene writes s to path, choosing the format from the extension.
func ExportScene(s scene.Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteScene(s, f, DetectFormat(path))
}

func toDocument(s scene.Scene) document {
	doc := document{
		Frames: make([]frame, len(s.Frames)),
		Shapes: make([]shape, len(s.Shapes)),
	}
	for i, f := range s.Frames {
		o := f.Origin()
		doc.Frames[i] = frame{
			ID:        f.ID,
			Name:      f.Name,
			X:         o.X,
			Y:         o.Y,
			Width:     f.Width,
			Height:    f.Height,
			Transform: elements(f.Transform),
		}
	}
	for i, sh := range s.Shapes {
		o := sh.Origin()
		out := shape{
			ID:        sh.ID,
			Name:      sh.Name,
			Parent:    sh.ParentID,
			X:         o.X,
			Y:         o.Y,
			Width:     sh.Width,
			Height:    sh.Height,
			Rotation:  sh.Rotation(),
			Transform: elements(sh.Transform),
			Stack:     sh.Stack,
		}
		if l := sh.Layout; l != nil {
			out.Layout = &autoLayout{
				Mode: string(l.Mode),
				Padding: padding{
					Top:    l.Padding.Top,
					Right:  l.Padding.Right,
					Bottom: l.Padding.Bottom,
					Left:   l.Padding.Left,
				},
			}
		}
		doc.Shapes[i] = out
	}
	return doc
}

func elements(m matrix.Matrix) []float64 {
	if scene.IsZero(m) {
		return nil
	}
	return m[:]
}
