package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/redline/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidScene, errors.ErrCodeInvalidShape,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidOrientation:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeShapeNotFound, errors.ErrCodeBatchNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeGapExists, errors.ErrCodeAmbiguousStackOrder:
		return http.StatusConflict
	case errors.ErrCodeNotInFrame, errors.ErrCodeFrameMismatch, errors.ErrCodeDegenerateRegion, errors.ErrCodeNoGapFound:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	s.respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
