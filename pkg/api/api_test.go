package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/cache"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/errors"
	"github.com/matzehuels/redline/pkg/pipeline"
	"github.com/matzehuels/redline/pkg/store"
)

const testScene = `{
  "frames": [{"id": "f", "name": "Home", "x": 0, "y": 0, "width": 400, "height": 300}],
  "shapes": [
    {"id": "a", "parent": "f", "x": 0, "y": 0, "width": 100, "height": 50},
    {"id": "b", "parent": "f", "x": 150, "y": 10, "width": 100, "height": 50},
    {"id": "outer", "parent": "f", "x": 200, "y": 150, "width": 100, "height": 100},
    {"id": "inner", "parent": "f", "x": 225, "y": 175, "width": 50, "height": 50, "stack": 1},
    {"id": "twin", "parent": "f", "x": 10, "y": 10, "width": 20, "height": 20},
    {"id": "loose", "x": 0, "y": 0, "width": 10, "height": 10}
  ]
}`

func newTestServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	return New(runner, append([]Option{WithLogger(logger)}, opts...)...).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sceneBody(extra string) string {
	return `{"scene": ` + testScene + `, ` + extra + `}`
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) errors.Code {
	t.Helper()
	var body errorBody
	decodeBody(t, rec, &body)
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestBounds(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/bounds", sceneBody(`"shape": "b"`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp boundsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "f", resp.Frame)
	assert.Equal(t, geom.Box{X: 150, Y: 10, Width: 100, Height: 50}, resp.Box)
}

func TestErrorStatus(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"not in frame", "/v1/bounds", sceneBody(`"shape": "loose"`), http.StatusUnprocessableEntity, errors.ErrCodeNotInFrame},
		{"unknown shape", "/v1/bounds", sceneBody(`"shape": "nope"`), http.StatusNotFound, errors.ErrCodeShapeNotFound},
		{"missing shape", "/v1/bounds", sceneBody(`"shape": ""`), http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing scene", "/v1/bounds", `{"shape": "a"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", "/v1/bounds", sceneBody(`"shape": "a", "color": "red"`), http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed", "/v1/gap", `{"scene":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"one shape", "/v1/gap", sceneBody(`"shapes": ["a"]`), http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"gap exists", "/v1/overlap", sceneBody(`"shapes": ["a", "b"]`), http.StatusConflict, errors.ErrCodeGapExists},
		{"ambiguous", "/v1/overlap", sceneBody(`"shapes": ["a", "twin"]`), http.StatusConflict, errors.ErrCodeAmbiguousStackOrder},
		{"bad orientation", "/v1/place", `{"target": {"x": 0, "y": 0, "width": 10, "height": 10}, "frame": {"width": 100, "height": 100}, "glyph": {"width": 5, "height": 5}, "orientation": "north"}`, http.StatusBadRequest, errors.ErrCodeInvalidOrientation},
		{"no glyph", "/v1/place", `{"target": {"x": 0, "y": 0, "width": 10, "height": 10}, "frame": {"width": 100, "height": 100}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"no store", "/v1/batches/", "", http.StatusNotImplemented, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.body == "" {
				method = http.MethodGet
			}
			rec := do(t, h, method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestGap(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/v1/gap", sceneBody(`"shapes": ["a", "b"]`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp gapResponse
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.Gap)
	assert.Equal(t, geom.Vertical, resp.Gap.Orientation)
	assert.Equal(t, 50.0, resp.Distance)

	rec = do(t, h, http.MethodPost, "/v1/gap", sceneBody(`"shapes": ["outer", "inner"]`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"gap":null`)
}

func TestOverlap(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/overlap", sceneBody(`"shapes": ["inner", "outer"]`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Top     map[string]any   `json:"top"`
		ShapeA  string           `json:"shapeA"`
		ShapeB  string           `json:"shapeB"`
		Visible []map[string]any `json:"visible"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "outer", resp.ShapeA)
	assert.Equal(t, "inner", resp.ShapeB)
	assert.Len(t, resp.Visible, 4)
	assert.Equal(t, 25.0, resp.Top["height"])
}

func TestPlace(t *testing.T) {
	h := newTestServer(t)

	body := `{
		"target": {"x": 10, "y": 10, "width": 20, "height": 20},
		"frame": {"width": 100, "height": 100},
		"glyph": {"width": 30, "height": 10},
		"kind": "measurement"
	}`
	rec := do(t, h, http.MethodPost, "/v1/place", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var placed struct {
		Y           float64   `json:"y"`
		Orientation geom.Side `json:"orientation"`
		Requested   geom.Side `json:"requested"`
		Flipped     bool      `json:"flipped"`
	}
	decodeBody(t, rec, &placed)
	assert.Equal(t, geom.Bottom, placed.Orientation)
	assert.Equal(t, geom.Top, placed.Requested)
	assert.True(t, placed.Flipped)
	assert.Equal(t, 36.0, placed.Y)
}

func TestAnnotateAndBatches(t *testing.T) {
	h := newTestServer(t, WithStore(store.NewMemoryStore()))

	rec := do(t, h, http.MethodPost, "/v1/annotate", sceneBody(`"options": {
		"requests": [
			{"kind": "spacing", "shapes": ["a", "b"]},
			{"kind": "dimension", "shapes": ["loose"]},
			{"kind": "name", "shapes": ["a"]}
		],
		"formats": ["svg", "json"]
	}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp annotateResponse
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.Batch)
	assert.True(t, resp.Stored)
	assert.Len(t, resp.Batch.Annotations, 2)
	require.Len(t, resp.Batch.Skipped, 1)
	assert.Equal(t, errors.ErrCodeNotInFrame, resp.Batch.Skipped[0].Code)
	assert.Contains(t, resp.Artifacts["svg"], "<svg")
	assert.NotContains(t, resp.Artifacts, "json")

	id := resp.Batch.ID
	rec = do(t, h, http.MethodGet, "/v1/batches/", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		Batches []store.Summary `json:"batches"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Batches, 1)
	assert.Equal(t, id, list.Batches[0].ID)

	rec = do(t, h, http.MethodGet, "/v1/batches/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got batch.Batch
	decodeBody(t, rec, &got)
	assert.Equal(t, id, got.ID)
	assert.Len(t, got.Annotations, 2)

	rec = do(t, h, http.MethodDelete, "/v1/batches/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/batches/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.ErrCodeBatchNotFound, errorCode(t, rec))
}

func TestAnnotateInvalidOptions(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/annotate", sceneBody(`"options": {"formats": ["png"]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, errors.ErrCodeInvalidFormat, errorCode(t, rec))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.ErrCodeInternal))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(errors.ErrCodeStorage))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(errors.ErrCodeTimeout))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(errors.ErrCodeFrameMismatch))
}
