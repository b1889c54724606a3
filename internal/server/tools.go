package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/pipeline"
	"github.com/matzehuels/mermedit/pkg/render"
)

// RenderRequest renders a document without a session. Zero fields take
// the server's render configuration.
type RenderRequest struct {
	Text     string `json:"text" validate:"required"`
	Format   string `json:"format,omitempty" validate:"omitempty,oneof=svg png"`
	Theme    string `json:"theme,omitempty" validate:"omitempty,oneof=default dark forest neutral"`
	RankDir  string `json:"rank_dir,omitempty" validate:"omitempty,oneof=TB TD BT LR RL"`
	FontSize int    `json:"font_size,omitempty" validate:"gte=0,lte=72"`
}

// DocumentRequest carries one document.
type DocumentRequest struct {
	Text string `json:"text" validate:"required"`
}

// ParseResponse is the parsed graph and, for documents the renderer would
// reject, the first syntax error.
type ParseResponse struct {
	Graph notation.Graph `json:"graph"`
	Error *errorResponse `json:"error,omitempty"`
}

// GenerateRequest is a graph to serialize as notation.
type GenerateRequest struct {
	Nodes []notation.Node `json:"nodes" validate:"dive"`
	Edges []notation.Edge `json:"edges" validate:"dive"`
}

// GenerateResponse holds generated notation.
type GenerateResponse struct {
	Text string `json:"text"`
}

// LayoutRequest lays out a document. An empty Direction follows the
// document header.
type LayoutRequest struct {
	Text      string `json:"text" validate:"required"`
	Direction string `json:"direction,omitempty" validate:"omitempty,oneof=TB TD BT LR RL"`
}

// LayoutResponse is the graph with its computed placement.
type LayoutResponse struct {
	Graph  notation.Graph `json:"graph"`
	Layout layout.Result  `json:"layout"`
	Cached bool           `json:"cached"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if q := r.URL.Query().Get("format"); q != "" {
		req.Format = q
	}
	format, err := render.ParseFormat(req.Format)
	if err != nil {
		s.respondError(w, r, merrors.Wrap(merrors.ErrCodeInvalidFormat, err, "%s", err.Error()))
		return
	}
	if err := merrors.ValidateDocument(req.Text); err != nil {
		s.respondError(w, r, err)
		return
	}

	cfg := s.cfg.Render
	if req.Theme != "" {
		cfg.Theme = req.Theme
	}
	if req.RankDir != "" {
		cfg.RankDir = req.RankDir
	}
	if req.FontSize > 0 {
		cfg.FontSize = req.FontSize
	}

	artifacts, err := s.runner.Render(r.Context(), pipeline.Options{
		Text:    req.Text,
		Formats: []string{string(format)},
		Render:  cfg,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[string(format)])
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := merrors.ValidateDocument(req.Text); err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := ParseResponse{Graph: pipeline.Parse(r.Context(), req.Text)}
	if err := notation.Check(req.Text); err != nil {
		resp.Error = &errorResponse{Error: err.Error(), Code: merrors.ErrCodeSyntax}
		var le *notation.LineError
		if errors.As(err, &le) {
			resp.Error.Error = le.Message
			resp.Error.Line = le.Line
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	for _, n := range req.Nodes {
		if err := merrors.ValidateNodeID(n.ID); err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := merrors.ValidateLabel(n.Label); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	for _, e := range req.Edges {
		if err := merrors.ValidateLabel(e.Label); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, GenerateResponse{Text: notation.Generate(req.Nodes, req.Edges)})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := merrors.ValidateDocument(req.Text); err != nil {
		s.respondError(w, r, err)
		return
	}

	opts := pipeline.Options{Text: req.Text, Layout: s.cfg.Layout}
	if req.Direction != "" {
		opts.Layout.Direction = layout.ParseDirection(req.Direction)
	}
	g := pipeline.Parse(r.Context(), req.Text)
	res, hit, err := s.runner.GenerateLayoutWithCacheInfo(r.Context(), g, opts)
	if err != nil {
		s.respondError(w, r, merrors.Wrap(merrors.ErrCodeLayoutFailed, err, "layout"))
		return
	}
	respondJSON(w, http.StatusOK, LayoutResponse{Graph: g, Layout: res, Cached: hit})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, notation.Templates())
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tmpl, ok := notation.LookupTemplate(name)
	if !ok {
		s.respondError(w, r, merrors.New(merrors.ErrCodeTemplateNotFound, "unknown template %q", name))
		return
	}
	respondJSON(w, http.StatusOK, tmpl)
}
