package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/cache"
	"github.com/matzehuels/redline/pkg/core/bounds"
	"github.com/matzehuels/redline/pkg/core/gap"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/label"
	"github.com/matzehuels/redline/pkg/core/overlap"
	"github.com/matzehuels/redline/pkg/core/placement"
	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/errors"
	rio "github.com/matzehuels/redline/pkg/io"
	"github.com/matzehuels/redline/pkg/observability"
)

// annotationNamespace seeds the name-based annotation ids.
var annotationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/redline/annotation"))

// SceneHash returns the content hash of a scene in its canonical JSON form.
func SceneHash(s scene.Scene) (string, error) {
	var buf bytes.Buffer
	if err := rio.WriteScene(s, &buf, rio.FormatJSON); err != nil {
		return "", fmt.Errorf("encode scene: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

// DefaultRequests returns one dimension request per framed shape, in scene
// order.
func DefaultRequests(ix *scene.Index) []batch.Request {
	var reqs []batch.Request
	for _, f := range ix.Frames() {
		for _, s := range ix.ShapesIn(f.ID) {
			reqs = append(reqs, batch.Request{Kind: batch.KindDimension, Shapes: []string{s.ID}})
		}
	}
	return reqs
}

// Annotate runs the geometry stages over one scene and returns the batch.
//
// The result is a pure function of the scene and options except for the
// batch ID and CreatedAt: annotation ids are derived from the scene hash and
// the request. Requests that fail for an expected reason are recorded in
// [batch.Batch.Skipped]; only an invalid scene or invalid options fail the
// whole call.
func Annotate(ctx context.Context, s scene.Scene, opts Options) (*batch.Batch, error) {
	if err := opts.ValidateForAnnotate(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	logger := opts.Logger

	start := time.Now()
	ix, err := scene.NewIndex(s)
	hooks.OnStage(ctx, observability.StageIndex, "", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	hash, err := SceneHash(s)
	if err != nil {
		return nil, err
	}

	reqs := opts.Requests
	if len(reqs) == 0 {
		reqs = DefaultRequests(ix)
	}

	b := &batch.Batch{
		ID:        uuid.NewString(),
		SceneHash: hash,
		CreatedAt: time.Now().UTC(),
	}
	hooks.OnAnnotateStart(ctx, b.ID, len(s.Frames), len(reqs))

	// Route each request to the frame of its first shape.
	frames := ix.Frames()
	jobs := make(map[string][]job, len(frames))
	for seq, r := range reqs {
		f, err := ix.FrameOf(r.Shapes[0])
		if err != nil {
			b.Skipped = append(b.Skipped, batch.SkippedFrom(r, "", err))
			continue
		}
		jobs[f.ID] = append(jobs[f.ID], job{seq: seq, req: r})
	}

	results := make([]frameResult, len(frames))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, f := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := &annotator{ix: ix, frame: f, hash: hash, opts: &opts}
			results[i] = a.run(gctx, jobs[f.ID])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		hooks.OnAnnotateComplete(ctx, b.ID, 0, 0, time.Since(start), err)
		return nil, err
	}

	for _, r := range results {
		b.Frames = append(b.Frames, r.frame)
		b.Annotations = append(b.Annotations, r.annotations...)
		b.Skipped = append(b.Skipped, r.skipped...)
	}
	batch.SortAnnotations(b.Annotations, b.Frames)
	hooks.OnAnnotateComplete(ctx, b.ID, len(b.Annotations), len(b.Skipped), time.Since(start), nil)

	logger.Debug("annotated scene",
		"frames", len(b.Frames),
		"placed", len(b.Annotations),
		"skipped", len(b.Skipped),
		"duration", time.Since(start))
	return b, nil
}

type job struct {
	seq int
	req batch.Request
}

type frameResult struct {
	frame       batch.Frame
	annotations []batch.Annotation
	skipped     []batch.Skipped
}

// annotator handles all requests of a single frame.
type annotator struct {
	ix    *scene.Index
	frame *scene.Frame
	hash  string
	opts  *Options

	out frameResult
}

func (a *annotator) run(ctx context.Context, jobs []job) frameResult {
	hooks := observability.Pipeline()

	start := time.Now()
	a.out.frame = a.describeFrame()
	hooks.OnStage(ctx, observability.StageResolve, a.frame.ID, time.Since(start), nil)

	start = time.Now()
	for _, j := range jobs {
		a.handle(j)
	}
	hooks.OnStage(ctx, observability.StageAnalyze, a.frame.ID, time.Since(start), nil)

	a.opts.Logger.Debug("annotated frame",
		"frame", a.frame.ID,
		"placements", len(a.out.annotations),
		"skipped", len(a.out.skipped))
	return a.out
}

func (a *annotator) describeFrame() batch.Frame {
	f := batch.Frame{ID: a.frame.ID, Name: a.frame.Name, Width: a.frame.Width, Height: a.frame.Height}
	for _, s := range a.ix.ShapesIn(a.frame.ID) {
		box, err := bounds.Resolve(s, a.frame)
		if err != nil {
			continue
		}
		f.Shapes = append(f.Shapes, batch.ShapeBox{ID: s.ID, Name: s.Name, Box: box})
	}
	return f
}

func (a *annotator) handle(j job) {
	var err error
	switch j.req.Kind {
	case batch.KindDimension:
		err = a.dimension(j)
	case batch.KindName:
		err = a.name(j)
	case batch.KindSpacing:
		err = a.spacing(j)
	default:
		err = errors.New(errors.ErrCodeUnsupported, "annotation kind %q", j.req.Kind)
	}
	if err != nil {
		a.skip(j.req, err)
	}
}

func (a *annotator) skip(r batch.Request, err error) {
	a.out.skipped = append(a.out.skipped, batch.SkippedFrom(r, a.frame.ID, err))
}

func (a *annotator) side(r batch.Request, fallback geom.Side) geom.Side {
	if r.Side != "" {
		return r.Side
	}
	if fallback != "" {
		return fallback
	}
	return a.opts.Orientation
}

// emit places a glyph for text next to target and records the annotation.
func (a *annotator) emit(j job, kind batch.Kind, suffix, text string, target geom.Box, line *batch.Line, side geom.Side) batch.Annotation {
	pk := placement.Measurement
	if kind == batch.KindName {
		pk = placement.Text
	}
	glyph := label.Measure(text, a.opts.Label)
	placed := placement.Place(target, a.frame.Size(), glyph, side, a.opts.Placement(pk))

	sig := j.req.String()
	if suffix != "" {
		sig += "#" + suffix
	}
	return batch.Annotation{
		ID:      uuid.NewSHA1(annotationNamespace, []byte(a.hash+"/"+sig)).String(),
		Kind:    kind,
		FrameID: a.frame.ID,
		Shapes:  j.req.Shapes,
		Label:   text,
		Target:  target,
		Line:    line,
		Placed:  placed,
	}
}

func (a *annotator) add(j job, ann batch.Annotation) {
	a.out.annotations = append(a.out.annotations, ann.WithSeq(j.seq))
}

func (a *annotator) dimension(j job) error {
	id := j.req.Shapes[0]
	box, _, err := bounds.ResolveID(a.ix, id)
	if err != nil {
		return err
	}
	ann := a.emit(j, batch.KindDimension, "", label.Dimension(box.Width, box.Height), box, nil, a.side(j.req, ""))
	ann.Line = edgeLine(box, ann.Placed.Side)
	a.add(j, ann)
	return nil
}

func (a *annotator) name(j job) error {
	id := j.req.Shapes[0]
	s, err := a.ix.Shape(id)
	if err != nil {
		return err
	}
	box, err := bounds.Resolve(s, a.frame)
	if err != nil {
		return err
	}
	text := label.Truncate(label.Name(s.Name, s.ID), a.frame.Width-2*a.opts.Margin, a.opts.Label)
	a.add(j, a.emit(j, batch.KindName, "", text, box, nil, a.side(j.req, "")))
	return nil
}

func (a *annotator) spacing(j job) error {
	sa, sb, err := gap.Subjects(a.ix, j.req.Shapes...)
	if err != nil {
		return err
	}
	if res := gap.Analyze(sa, sb); res != nil {
		x1, y1, x2, y2 := res.Line()
		ann := a.emit(j, batch.KindSpacing, "", label.Spacing(res.Distance()), res.Strip(),
			&batch.Line{X1: x1, Y1: y1, X2: x2, Y2: y2}, a.side(j.req, ""))
		ann.Gap = res
		a.add(j, ann)
		return nil
	}

	regions, err := overlap.Compute(a.ix, j.req.Shapes...)
	if err != nil {
		return err
	}
	for _, reg := range regions.All() {
		if err := reg.Err(); err != nil {
			a.skip(j.req, err)
			continue
		}
		x1, y1, x2, y2 := reg.Line()
		ann := a.emit(j, batch.KindOverlap, string(reg.Side), label.Spacing(reg.Distance()), reg.Box,
			&batch.Line{X1: x1, Y1: y1, X2: x2, Y2: y2}, a.side(j.req, reg.Side))
		ann.Region = lo.ToPtr(reg)
		a.add(j, ann)
	}
	return nil
}

// edgeLine returns the edge of box facing side, which a dimension label
// measures.
func edgeLine(box geom.Box, side geom.Side) *batch.Line {
	switch side {
	case geom.Bottom:
		return &batch.Line{X1: box.X, Y1: box.YOuter(), X2: box.XOuter(), Y2: box.YOuter()}
	case geom.Left:
		return &batch.Line{X1: box.X, Y1: box.Y, X2: box.X, Y2: box.YOuter()}
	case geom.Right:
		return &batch.Line{X1: box.XOuter(), Y1: box.Y, X2: box.XOuter(), Y2: box.YOuter()}
	}
	return &batch.Line{X1: box.X, Y1: box.Y, X2: box.XOuter(), Y2: box.Y}
}
