// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; applications decide
// what to do with them. Nothing here depends on a particular metrics or
// tracing backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnAnnotateStart(ctx, batchID, frames, requests)
//	// ... annotate ...
//	observability.Pipeline().OnAnnotateComplete(ctx, batchID, placed, skipped, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Pipeline stage names passed to [PipelineHooks.OnStage].
const (
	StageIndex   = "index"
	StageResolve = "resolve"
	StageAnalyze = "analyze"
	StagePlace   = "place"
	StageRender  = "render"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the annotation pipeline.
type PipelineHooks interface {
	OnAnnotateStart(ctx context.Context, batchID string, frames, requests int)
	OnAnnotateComplete(ctx context.Context, batchID string, placed, skipped int, duration time.Duration, err error)

	// OnStage reports one stage for one frame. frameID is empty for
	// batch-wide stages.
	OnStage(ctx context.Context, stage, frameID string, duration time.Duration, err error)

	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// API Hooks
// =============================================================================

// APIHooks receives events from the HTTP API server.
type APIHooks interface {
	// OnRequest records a request that finished. route is the matched
	// pattern, not the raw path.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnAnnotateStart(context.Context, string, int, int) {}
func (NoopPipelineHooks) OnAnnotateComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnStage(context.Context, string, string, time.Duration, error)    {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopAPIHooks is a no-op implementation of APIHooks.
type NoopAPIHooks struct{}

func (NoopAPIHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	apiHooks      APIHooks      = NoopAPIHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetAPIHooks registers custom API hooks.
func SetAPIHooks(h APIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		apiHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// API returns the registered API hooks.
func API() APIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return apiHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	apiHooks = NoopAPIHooks{}
}
