package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/cache"
	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it does not
// store batches. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides cache.ResultTTL and cache.ArtifactTTL when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs annotate → render with caching.
func (r *Runner) Execute(ctx context.Context, s scene.Scene, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Annotate
	annotateStart := time.Now()
	b, hit, err := r.AnnotateWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	result.Batch = b
	result.Stats.AnnotateTime = time.Since(annotateStart)
	result.Stats.FrameCount = len(b.Frames)
	result.Stats.AnnotationCount = len(b.Annotations)
	result.Stats.SkippedCount = len(b.Skipped)
	result.CacheInfo.AnnotateHit = hit

	r.Logger.Info("annotated scene",
		"frames", result.Stats.FrameCount,
		"placements", result.Stats.AnnotationCount,
		"skipped", result.Stats.SkippedCount,
		"duration", result.Stats.AnnotateTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, b, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// AnnotateWithCacheInfo annotates a scene with caching and returns cache hit
// info. A cached batch is returned under a fresh ID and timestamp, so every
// run yields a distinct batch.
func (r *Runner) AnnotateWithCacheInfo(ctx context.Context, s scene.Scene, opts Options) (*batch.Batch, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAnnotate(); err != nil {
		return nil, false, err
	}
	cacheHooks := observability.Cache()

	hash, err := SceneHash(s)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.ResultKey(hash, opts.ResultKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if b, err := batch.Unmarshal(data); err == nil {
				cacheHooks.OnCacheHit(ctx, "result")
				b.ID = uuid.NewString()
				b.CreatedAt = time.Now().UTC()
				return b, true, nil
			}
		}
		cacheHooks.OnCacheMiss(ctx, "result")
	}

	b, err := Annotate(ctx, s, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := batch.Marshal(b); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.ResultTTL)); err == nil {
			cacheHooks.OnCacheSet(ctx, "result", len(data))
		} else {
			r.Logger.Warn("cache write failed", "key", "result", "error", err)
		}
	}

	return b, false, nil
}

// Annotate is a convenience wrapper that calls AnnotateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Annotate(ctx context.Context, s scene.Scene, opts Options) (*batch.Batch, error) {
	b, _, err := r.AnnotateWithCacheInfo(ctx, s, opts)
	return b, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. JSON output embeds the batch ID and is always encoded fresh.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, b *batch.Batch, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	cacheHooks := observability.Cache()

	resultHash, err := contentHash(b)
	if err != nil {
		return nil, false, fmt.Errorf("hash batch for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	wanted, cached := 0, 0
	for _, format := range opts.Formats {
		if !cacheable(format) {
			missing = append(missing, format)
			continue
		}
		wanted++
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			cached++
			continue
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	allCached := wanted > 0 && cached == wanted

	if len(missing) > 0 {
		renderOpts := opts
		renderOpts.Formats = missing
		rendered, err := Render(ctx, b, renderOpts)
		if err != nil {
			return nil, false, err
		}
		for format, data := range rendered {
			artifacts[format] = data
			if !cacheable(format) {
				continue
			}
			key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, r.ttl(cache.ArtifactTTL)); err == nil {
				cacheHooks.OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}

	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, b *batch.Batch, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, b, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func cacheable(format string) bool {
	return format != FormatJSON
}

// contentHash hashes a batch without its per-run ID and timestamp.
func contentHash(b *batch.Batch) (string, error) {
	c := *b
	c.ID = ""
	c.CreatedAt = time.Time{}
	data, err := batch.Marshal(&c)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
