package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/graphsync"
	"github.com/matzehuels/mermedit/pkg/overlay"
	"github.com/matzehuels/mermedit/pkg/render"
	"github.com/matzehuels/mermedit/pkg/session"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string       `json:"error"`
	Code  merrors.Code `json:"code"`
	Line  int          `json:"line,omitempty"`
	Rev   uint64       `json:"revision,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes err with the status derived from its code. Errors of
// other packages are classified first.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	err = classify(err)
	status := merrors.HTTPStatus(err)
	if errors.Is(err, session.ErrTooMany) {
		status = http.StatusServiceUnavailable
	}

	body := errorResponse{Error: merrors.UserMessage(err), Code: merrors.GetCode(err)}
	var syn *render.SyntaxError
	if errors.As(err, &syn) {
		body.Error = syn.Error()
		body.Line = syn.Line
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	respondJSON(w, status, body)
}

// classify attaches an error code to errors coming from the domain
// packages. Errors that already carry a code are returned unchanged.
func classify(err error) error {
	if merrors.GetCode(err) != "" {
		return err
	}
	var syn *render.SyntaxError
	switch {
	case errors.As(err, &syn):
		return merrors.Wrap(merrors.ErrCodeSyntax, err, "%s", syn.Error())
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return merrors.Wrap(merrors.ErrCodeSessionNotFound, err, "session not found")
	case errors.Is(err, session.ErrNoPreview):
		return merrors.Wrap(merrors.ErrCodeUnsupported, err, "preview rendering is not configured")
	case errors.Is(err, graphsync.ErrUnknownNode), errors.Is(err, overlay.ErrUnknownNode):
		return merrors.Wrap(merrors.ErrCodeInvalidInput, err, "%s", err.Error())
	case errors.Is(err, session.ErrTooMany):
		return merrors.Wrap(merrors.ErrCodeInternal, err, "too many sessions")
	default:
		return merrors.Wrap(merrors.ErrCodeInternal, err, "internal error")
	}
}

// decode reads a JSON body into v and validates its struct tags. An empty
// body leaves v unchanged.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return merrors.Wrap(merrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return merrors.ValidateStruct(merrors.ErrCodeInvalidInput, v)
}
