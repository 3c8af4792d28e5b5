// Package pkg holds the redline libraries.
//
// # Overview
//
// Redline measures design scenes: it resolves shape bounds, finds the gap
// between two shapes or the four regions around an overlapping pair, and
// places labels next to their targets without leaving the frame.
//
//  1. [core] - Geometry and placement (scene, bounds, gap, overlap, placement, label)
//  2. [batch] - Annotation requests and placed results
//  3. [pipeline] - Orchestration (index → annotate → render) with caching
//  4. [render/sink] - SVG and JSON output
//  5. [cache], [store] - Result caching and batch persistence
//  6. [api] - HTTP server
//
// # Architecture
//
//	Scene file (JSON/YAML)
//	         ↓
//	    [io] package (decode into scene.Scene)
//	         ↓
//	    [core/scene] package (index frames and shapes)
//	         ↓
//	    [core/bounds], [core/gap], [core/overlap] (spatial relations)
//	         ↓
//	    [core/placement] (glyph positions)
//	         ↓
//	    [batch] → [render/sink] → SVG/JSON
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/redline/pkg/core/scene"
//	    "github.com/matzehuels/redline/pkg/core/gap"
//	    rio "github.com/matzehuels/redline/pkg/io"
//	)
//
//	s, _ := rio.ImportScene("dashboard.yaml")
//	ix, _ := scene.NewIndex(s)
//	g, err := gap.Compute(ix, "sidebar", "content")
//	if err != nil {
//	    return err
//	}
//	if g != nil {
//	    fmt.Println(g.Orientation, g.Distance())
//	}
//
// For whole scenes use [pipeline.Runner], which routes annotation requests to
// frames, annotates frames concurrently, and renders the batch:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, s, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
package pkg
