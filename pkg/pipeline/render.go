package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/observability"
	"github.com/matzehuels/redline/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, b *batch.Batch, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	start := time.Now()
	artifacts, err := render(b, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func render(b *batch.Batch, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(b, buildSVGOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(b)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithLabelStyle(opts.Label)}
	if opts.ShowRegions {
		svgOpts = append(svgOpts, sink.WithRegions())
	}
	return svgOpts
}
