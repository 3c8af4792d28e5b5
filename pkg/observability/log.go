package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failed stages
// are logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnAnnotateStart(_ context.Context, batchID string, frames, requests int) {
	h.logger.Debug("annotate start", "batch", batchID, "frames", frames, "requests", requests)
}

func (h *LogHooks) OnAnnotateComplete(_ context.Context, batchID string, placed, skipped int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("annotate failed", "batch", batchID, "err", err)
		return
	}
	h.logger.Debug("annotate done", "batch", batchID, "placed", placed, "skipped", skipped, "duration", d)
}

func (h *LogHooks) OnStage(_ context.Context, stage, frameID string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("stage failed", "stage", stage, "frame", frameID, "err", err)
		return
	}
	h.logger.Debug("stage", "stage", stage, "frame", frameID, "duration", d)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render", "formats", formats, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("request", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ APIHooks      = (*LogHooks)(nil)
)
