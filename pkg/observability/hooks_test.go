package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnAnnotateStart(ctx, "b1", 2, 10)
	p.OnStage(ctx, StageAnalyze, "home", time.Millisecond, nil)
	p.OnAnnotateComplete(ctx, "b1", 9, 1, time.Second, nil)
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "artifact", 1024)

	a := NoopAPIHooks{}
	a.OnRequest(ctx, "POST", "/v1/gap", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := API().(NoopAPIHooks); !ok {
		t.Error("API() should return NoopAPIHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customAPI := &testAPIHooks{}
	SetAPIHooks(customAPI)
	if API() != customAPI {
		t.Error("SetAPIHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnStage(ctx, StagePlace, "home", time.Millisecond, nil)
	h.OnStage(ctx, StageResolve, "home", 0, errors.New("boom"))
	h.OnCacheHit(ctx, "result")

	out := buf.String()
	for _, want := range []string{"stage=place", "stage failed", "boom", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testAPIHooks struct{ NoopAPIHooks }
