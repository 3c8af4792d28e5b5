// Package pipeline runs the annotation pipeline shared by the CLI and the
// HTTP API.
//
// Centralizing the stages here keeps `redline annotate` and
// `POST /v1/annotate` producing identical batches for identical input.
//
// # Architecture
//
// A run has two phases:
//
//  1. Annotate: index the scene, resolve bounding boxes, analyze gaps and
//     overlaps, and place one glyph per annotation
//  2. Render: draw the batch as SVG or encode it as JSON
//
// Annotation fans out per frame. Frames never share state, so the
// result does not depend on scheduling: annotations are merged back in frame
// order and request order.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Requests: []batch.Request{{Kind: batch.KindSpacing, Shapes: []string{"title", "icon"}}},
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, scn, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual phases:
//
//	b, err := pipeline.Annotate(ctx, scn, opts)
//	artifacts, err := runner.Render(ctx, b, opts)
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/cache"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/label"
	"github.com/matzehuels/redline/pkg/core/placement"
	"github.com/matzehuels/redline/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultOrientation is the side a glyph is placed on when neither the
// request nor the options name one.
const DefaultOrientation = geom.Top

// MaxConcurrency caps the number of frames annotated at once.
const MaxConcurrency = 64

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for an annotation run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Annotate options
	Requests             []batch.Request `json:"requests,omitempty"`
	Orientation          geom.Side       `json:"orientation,omitempty"`
	TextClearance        float64         `json:"text_clearance,omitempty"`
	MeasurementClearance float64         `json:"measurement_clearance,omitempty"`
	Margin               float64         `json:"margin,omitempty"`
	Label                label.Style     `json:"label,omitempty"`
	Concurrency          int             `json:"-"`
	Refresh              bool            `json:"refresh,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	ShowRegions bool     `json:"show_regions,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Batch holds the placed annotations and skipped requests.
	Batch *batch.Batch

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which phases hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FrameCount      int
	AnnotationCount int
	SkippedCount    int
	AnnotateTime    time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline phase.
type CacheInfo struct {
	AnnotateHit bool // Whether the batch came from cache
	RenderHit   bool // Whether all cacheable artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRequests checks every request.
func ValidateRequests(reqs []batch.Request) error {
	for i, r := range reqs {
		if err := r.Validate(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "request %d", i)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full
// pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAnnotate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForAnnotate validates requests and placement settings and sets
// their defaults. An empty request list is valid; [Annotate] then measures
// every framed shape.
func (o *Options) ValidateForAnnotate() error {
	if err := ValidateRequests(o.Requests); err != nil {
		return err
	}
	side, err := geom.ParseSide(string(o.Orientation))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrientation, err, "options")
	}
	o.Orientation = side
	for name, v := range map[string]float64{
		"text_clearance":        o.TextClearance,
		"measurement_clearance": o.MeasurementClearance,
		"margin":                o.Margin,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s cannot be negative (got %g)", name, v)
		}
	}
	if o.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency cannot be negative")
	}
	o.SetAnnotateDefaults()
	return nil
}

// SetAnnotateDefaults fills zero placement settings.
func (o *Options) SetAnnotateDefaults() {
	if o.Orientation == "" {
		o.Orientation = DefaultOrientation
	}
	if o.TextClearance == 0 {
		o.TextClearance = placement.DefaultTextClearance
	}
	if o.MeasurementClearance == 0 {
		o.MeasurementClearance = placement.DefaultMeasurementClearance
	}
	if o.Margin == 0 {
		o.Margin = placement.DefaultMargin
	}
	if o.Label == (label.Style{}) {
		o.Label = label.DefaultStyle
	}
	if o.Concurrency == 0 {
		o.Concurrency = min(runtime.GOMAXPROCS(0), MaxConcurrency)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = lo.Uniq(o.Formats)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Placement returns the placement options for the given annotation kind.
func (o *Options) Placement(k placement.Kind) placement.Options {
	return placement.Options{
		Kind:                 k,
		TextClearance:        o.TextClearance,
		MeasurementClearance: o.MeasurementClearance,
		Margin:               o.Margin,
	}
}

// ResultKeyOpts returns cache key options for an annotation batch.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		Requests:             lo.Map(o.Requests, func(r batch.Request, _ int) string { return r.String() }),
		Orientation:          string(o.Orientation),
		TextClearance:        o.TextClearance,
		MeasurementClearance: o.MeasurementClearance,
		Margin:               o.Margin,
		FontSize:             o.Label.FontSize,
		PaddingX:             o.Label.PaddingX,
		PaddingY:             o.Label.PaddingY,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		ShowRegions: o.ShowRegions,
		FontSize:    o.Label.EffectiveFontSize(),
	}
}
