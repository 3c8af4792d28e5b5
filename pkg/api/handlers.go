package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/buildinfo"
	"github.com/matzehuels/redline/pkg/core/bounds"
	"github.com/matzehuels/redline/pkg/core/gap"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/core/label"
	"github.com/matzehuels/redline/pkg/core/overlap"
	"github.com/matzehuels/redline/pkg/core/placement"
	"github.com/matzehuels/redline/pkg/core/scene"
	"github.com/matzehuels/redline/pkg/errors"
	rio "github.com/matzehuels/redline/pkg/io"
	"github.com/matzehuels/redline/pkg/pipeline"
	"github.com/matzehuels/redline/pkg/store"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type sceneRequest struct {
	Scene  json.RawMessage `json:"scene"`
	Shape  string          `json:"shape,omitempty"`
	Shapes []string        `json:"shapes,omitempty"`
}

type boundsResponse struct {
	Shape string   `json:"shape"`
	Frame string   `json:"frame"`
	Box   geom.Box `json:"box"`
}

type gapResponse struct {
	Gap      *gap.Result `json:"gap"`
	Distance float64     `json:"distance,omitempty"`
}

type overlapResponse struct {
	*overlap.Regions
	Visible []overlap.Region `json:"visible"`
}

type placeRequest struct {
	Target      geom.Box       `json:"target"`
	Frame       geom.Size      `json:"frame"`
	Glyph       *geom.Size     `json:"glyph,omitempty"`
	Label       string         `json:"label,omitempty"`
	Style       *label.Style   `json:"style,omitempty"`
	Orientation geom.Side      `json:"orientation,omitempty"`
	Kind        placement.Kind `json:"kind,omitempty"`
	Clearance   *float64       `json:"clearance,omitempty"`
	Margin      *float64       `json:"margin,omitempty"`
}

type annotateRequest struct {
	Scene   json.RawMessage  `json:"scene"`
	Options pipeline.Options `json:"options"`
}

type annotateResponse struct {
	Batch     *batch.Batch      `json:"batch"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Stored    bool              `json:"stored"`
	Cached    bool              `json:"cached"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	ix, err := s.decodeScene(w, r, &req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if req.Shape == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "shape is required"))
		return
	}
	box, frame, err := bounds.ResolveID(ix, req.Shape)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, boundsResponse{Shape: req.Shape, Frame: frame.ID, Box: box})
}

func (s *Server) handleGap(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	ix, err := s.decodeScene(w, r, &req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	res, err := gap.Compute(ix, req.Shapes...)
	if err != nil {
		s.respondError(w, err)
		return
	}
	resp := gapResponse{Gap: res}
	if res != nil {
		resp.Distance = res.Distance()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOverlap(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	ix, err := s.decodeScene(w, r, &req)
	if err != nil {
		s.respondError(w, err)
		return
	}
	regions, err := overlap.Compute(ix, req.Shapes...)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, overlapResponse{Regions: regions, Visible: regions.Visible()})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	opts, glyph, err := req.resolve(s.defaults)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, placement.Place(req.Target, req.Frame, glyph, req.Orientation, opts))
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	scn, err := readScene(req.Scene)
	if err != nil {
		s.respondError(w, err)
		return
	}

	opts := s.mergeDefaults(req.Options)
	result, err := s.runner.Execute(r.Context(), scn, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := annotateResponse{
		Batch:     result.Batch,
		Artifacts: make(map[string]string, len(result.Artifacts)),
		Cached:    result.CacheInfo.AnnotateHit,
	}
	for format, data := range result.Artifacts {
		if format == pipeline.FormatJSON {
			continue // the batch is already in the body
		}
		resp.Artifacts[format] = string(data)
	}

	if s.store != nil {
		if err := s.store.Save(r.Context(), result.Batch); err != nil {
			s.logger.Warn("store batch failed", "batch", result.Batch.ID, "error", err)
		} else {
			resp.Stored = true
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"batches": list})
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	b, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.respondError(w, errors.New(errors.ErrCodeUnsupported, "batch storage is disabled"))
		return false
	}
	return true
}

func (s *Server) decodeScene(w http.ResponseWriter, r *http.Request, req *sceneRequest) (*scene.Index, error) {
	if err := decode(w, r, req); err != nil {
		return nil, err
	}
	scn, err := readScene(req.Scene)
	if err != nil {
		return nil, err
	}
	return scene.NewIndex(scn)
}

func readScene(raw json.RawMessage) (scene.Scene, error) {
	if len(raw) == 0 {
		return scene.Scene{}, errors.New(errors.ErrCodeInvalidInput, "scene is required")
	}
	return rio.ReadScene(bytes.NewReader(raw), rio.FormatJSON)
}

// mergeDefaults fills request options left empty from the server defaults.
func (s *Server) mergeDefaults(o pipeline.Options) pipeline.Options {
	d := s.defaults
	if o.Orientation == "" {
		o.Orientation = d.Orientation
	}
	if o.TextClearance == 0 {
		o.TextClearance = d.TextClearance
	}
	if o.MeasurementClearance == 0 {
		o.MeasurementClearance = d.MeasurementClearance
	}
	if o.Margin == 0 {
		o.Margin = d.Margin
	}
	if o.Label == (label.Style{}) {
		o.Label = d.Label
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{pipeline.FormatJSON}
	}
	o.Concurrency = d.Concurrency
	return o
}

// resolve turns a place request into placement options and a glyph size.
func (p placeRequest) resolve(defaults pipeline.Options) (placement.Options, geom.Size, error) {
	if p.Frame.Width <= 0 || p.Frame.Height <= 0 {
		return placement.Options{}, geom.Size{}, errors.New(errors.ErrCodeInvalidInput, "frame must have positive width and height")
	}
	if _, err := geom.ParseSide(string(p.Orientation)); err != nil {
		return placement.Options{}, geom.Size{}, errors.Wrap(errors.ErrCodeInvalidOrientation, err, "place")
	}

	opts := placement.DefaultOptions()
	if defaults.TextClearance > 0 {
		opts.TextClearance = defaults.TextClearance
	}
	if defaults.MeasurementClearance > 0 {
		opts.MeasurementClearance = defaults.MeasurementClearance
	}
	if defaults.Margin > 0 {
		opts.Margin = defaults.Margin
	}

	switch p.Kind {
	case "", placement.Text:
		opts.Kind = placement.Text
	case placement.Measurement:
		opts.Kind = placement.Measurement
	default:
		return opts, geom.Size{}, errors.New(errors.ErrCodeInvalidInput, "invalid kind %q (must be text or measurement)", p.Kind)
	}
	if p.Clearance != nil {
		opts.TextClearance, opts.MeasurementClearance = *p.Clearance, *p.Clearance
	}
	if p.Margin != nil {
		opts.Margin = *p.Margin
	}

	switch {
	case p.Glyph != nil:
		return opts, *p.Glyph, nil
	case p.Label != "":
		style := label.DefaultStyle
		if p.Style != nil {
			style = *p.Style
		}
		return opts, label.Measure(p.Label, style), nil
	}
	return opts, geom.Size{}, errors.New(errors.ErrCodeInvalidInput, "glyph or label is required")
}
