package io

import (
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"seehuhn.de/go/geom/matrix"

	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/errors"
)

// ReadScene decodes a scene document from r. ReadScene does not close r.
func ReadScene(r io.Reader, f Format) (scene.Scene, error) {
	var doc document
	switch f {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return scene.Scene{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml scene")
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return scene.Scene{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json scene")
		}
	}
	return fromDocument(doc)
}

// ImportScene reads the scene file at path.
func ImportScene(path string) (scene.Scene, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return scene.Scene{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", path)
	}
	if err != nil {
		return scene.Scene{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadScene(f, DetectFormat(path))
}

func fromDocument(doc document) (scene.Scene, error) {
	out := scene.Scene{
		Frames: make([]scene.Frame, 0, len(doc.Frames)),
		Shapes: make([]scene.Shape, 0, len(doc.Shapes)),
	}

	for _, f := range doc.Frames {
		m, err := transform(f.ID, f.X, f.Y, 0, f.Transform)
		if err != nil {
			return scene.Scene{}, err
		}
		out.Frames = append(out.Frames, scene.Frame{
			ID:        f.ID,
			Name:      f.Name,
			Transform: m,
			Width:     f.Width,
			Height:    f.Height,
		})
	}

	for _, s := range doc.Shapes {
		m, err := transform(s.ID, s.X, s.Y, s.Rotation, s.Transform)
		if err != nil {
			return scene.Scene{}, err
		}
		sh := scene.Shape{
			ID:        s.ID,
			Name:      s.Name,
			ParentID:  s.Parent,
			Transform: m,
			Width:     s.Width,
			Height:    s.Height,
			Stack:     s.Stack,
		}
		if s.Layout != nil {
			mode, err := layoutMode(s.ID, s.Layout.Mode)
			if err != nil {
				return scene.Scene{}, err
			}
			p := s.Layout.Padding
			sh.Layout = &scene.AutoLayout{
				Mode:    mode,
				Padding: scene.Padding{Top: p.Top, Right: p.Right, Bottom: p.Bottom, Left: p.Left},
			}
		}
		out.Shapes = append(out.Shapes, sh)
	}
	return out, nil
}

func transform(id string, x, y, rotation float64, explicit []float64) (matrix.Matrix, error) {
	switch {
	case len(explicit) == 6:
		var m matrix.Matrix
		copy(m[:], explicit)
		return m, nil
	case len(explicit) != 0:
		return matrix.Matrix{}, errors.New(errors.ErrCodeInvalidFormat,
			"%s: transform must have 6 elements, got %d", id, len(explicit))
	case rotation != 0:
		return scene.Rotation(x, y, rotation), nil
	}
	return scene.Translation(x, y), nil
}

func layoutMode(id, s string) (scene.LayoutMode, error) {
	switch scene.LayoutMode(s) {
	case scene.LayoutNone, scene.LayoutHorizontal, scene.LayoutVertical:
		return scene.LayoutMode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "%s: unknown layout mode %q", id, s)
}
