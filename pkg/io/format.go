package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/redline/pkg/errors"
)

// Format is a scene encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat guesses the encoding from a file name.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q (must be json or yaml)", s)
}

type document struct {
	Frames []frame `json:"frames" yaml:"frames"`
	Shapes []shape `json:"shapes" yaml:"shapes"`
}

type frame struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	X         float64   `json:"x" yaml:"x"`
	Y         float64   `json:"y" yaml:"y"`
	Width     float64   `json:"width" yaml:"width"`
	Height    float64   `json:"height" yaml:"height"`
	Transform []float64 `json:"transform,omitempty" yaml:"transform,omitempty,flow"`
}

type shape struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name,omitempty" yaml:"name,omitempty"`
	Parent    string      `json:"parent,omitempty" yaml:"parent,omitempty"`
	X         float64     `json:"x" yaml:"x"`
	Y         float64     `json:"y" yaml:"y"`
	Width     float64     `json:"width" yaml:"width"`
	Height    float64     `json:"height" yaml:"height"`
	Rotation  float64     `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Transform []float64   `json:"transform,omitempty" yaml:"transform,omitempty,flow"`
	Stack     int         `json:"stack,omitempty" yaml:"stack,omitempty"`
	Layout    *autoLayout `json:"layout,omitempty" yaml:"layout,omitempty"`
}

type autoLayout struct {
	Mode    string  `json:"mode" yaml:"mode"`
	Padding padding `json:"padding,omitempty" yaml:"padding,omitempty"`
}

type padding struct {
	Top    float64 `json:"top,omitempty" yaml:"top,omitempty"`
	Right  float64 `json:"right,omitempty" yaml:"right,omitempty"`
	Bottom float64 `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Left   float64 `json:"left,omitempty" yaml:"left,omitempty"`
}
