package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/graphsync"
	"github.com/matzehuels/mermedit/pkg/notation"
	"github.com/matzehuels/mermedit/pkg/overlay"
	"github.com/matzehuels/mermedit/pkg/session"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// CreateSessionRequest starts a session from text, a template, or the
// default document when both are empty.
type CreateSessionRequest struct {
	Text     string `json:"text,omitempty"`
	Template string `json:"template,omitempty" validate:"excluded_with=Text"`
}

// SessionResponse describes a session and its current state.
type SessionResponse struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	ExpiresAt time.Time            `json:"expires_at"`
	DragMode  bool                 `json:"drag_mode"`
	Offsets   []overlay.NodeOffset `json:"offsets"`
	graphsync.Snapshot
}

// TextRequest replaces the document text.
type TextRequest struct {
	Text string `json:"text"`
}

// TextResponse reports whether a text change produced a new revision.
type TextResponse struct {
	Changed bool `json:"changed"`
	graphsync.Snapshot
}

// NodeChangesRequest carries canvas node edits.
type NodeChangesRequest struct {
	Changes []graphsync.NodeChange `json:"changes" validate:"required,dive"`
}

// EdgeChangesRequest carries canvas edge edits.
type EdgeChangesRequest struct {
	Changes []graphsync.EdgeChange `json:"changes" validate:"required,dive"`
}

// ConnectRequest adds an edge between two canvas nodes.
type ConnectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// PointerRequest carries pointer events on the preview.
type PointerRequest struct {
	Events []overlay.PointerEvent `json:"events" validate:"required,min=1,dive"`
}

// PointerResponse is the overlay state after pointer events.
type PointerResponse struct {
	Dragging bool                 `json:"dragging"`
	Offsets  []overlay.NodeOffset `json:"offsets"`
}

// DragModeRequest toggles drag mode on the preview.
type DragModeRequest struct {
	Enabled bool `json:"enabled"`
}

// OffsetsRequest replaces the offset map.
type OffsetsRequest struct {
	Offsets []overlay.NodeOffset `json:"offsets" validate:"dive"`
}

// OffsetsResponse lists the committed node offsets.
type OffsetsResponse struct {
	Offsets []overlay.NodeOffset `json:"offsets"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	text := req.Text
	switch {
	case req.Template != "":
		tmpl, ok := notation.LookupTemplate(req.Template)
		if !ok {
			s.respondError(w, r, merrors.New(merrors.ErrCodeTemplateNotFound, "unknown template %q", req.Template))
			return
		}
		text = tmpl.Text
	case text == "":
		text = notation.DefaultDocument
	}
	if err := merrors.ValidateDocument(text); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, err := s.store.Create(r.Context(), text)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.logger.Info("session created", "session", sess.ID)
	respondJSON(w, http.StatusCreated, s.describe(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.describe(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := merrors.ValidateDocument(req.Text); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var resp TextResponse
	_ = sess.Do(func(sess *session.Session) error {
		resp.Snapshot, resp.Changed = sess.Sync.SetText(r.Context(), req.Text)
		return nil
	})
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNodeChanges(w http.ResponseWriter, r *http.Request) {
	var req NodeChangesRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var snap graphsync.Snapshot
	_ = sess.Do(func(sess *session.Session) error {
		snap = sess.Sync.ApplyNodeChanges(req.Changes)
		return nil
	})
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEdgeChanges(w http.ResponseWriter, r *http.Request) {
	var req EdgeChangesRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var snap graphsync.Snapshot
	_ = sess.Do(func(sess *session.Session) error {
		snap = sess.Sync.ApplyEdgeChanges(req.Changes)
		return nil
	})
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var snap graphsync.Snapshot
	err := sess.Do(func(sess *session.Session) error {
		var err error
		snap, err = sess.Sync.Connect(req.Source, req.Target)
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// handlePreview renders the current revision and returns the decorated
// SVG. A document the renderer rejects yields 422 with the message to show
// in place of the preview.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.RenderPreview(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if res.Error != "" {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: res.Error,
			Code:  merrors.ErrCodeSyntax,
			Rev:   res.Revision,
		})
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Mermedit-Revision", strconv.FormatUint(res.Revision, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(res.Markup))
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var resp PointerResponse
	err := sess.Do(func(sess *session.Session) error {
		err := sess.Overlay.Handle(req.Events...)
		resp = PointerResponse{Dragging: sess.Overlay.Dragging(), Offsets: sess.Overlay.Offsets()}
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDragMode(w http.ResponseWriter, r *http.Request) {
	var req DragModeRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var enabled bool
	_ = sess.Do(func(sess *session.Session) error {
		sess.Overlay.SetDragMode(req.Enabled)
		enabled = sess.Overlay.DragMode()
		return nil
	})
	respondJSON(w, http.StatusOK, DragModeRequest{Enabled: enabled})
}

func (s *Server) handleGetOffsets(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var resp OffsetsResponse
	_ = sess.Do(func(sess *session.Session) error {
		resp.Offsets = sess.Overlay.Offsets()
		return nil
	})
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetOffsets(w http.ResponseWriter, r *http.Request) {
	var req OffsetsRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var resp OffsetsResponse
	_ = sess.Do(func(sess *session.Session) error {
		sess.Overlay.SetOffsets(req.Offsets)
		resp.Offsets = sess.Overlay.Offsets()
		return nil
	})
	respondJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// session looks up the session named in the URL, writing the error
// response when it does not exist.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) describe(sess *session.Session) SessionResponse {
	resp := SessionResponse{ID: sess.ID, CreatedAt: sess.CreatedAt}
	_ = sess.Do(func(sess *session.Session) error {
		resp.Snapshot = sess.Sync.Snapshot()
		resp.DragMode = sess.Overlay.DragMode()
		resp.Offsets = sess.Overlay.Offsets()
		return nil
	})
	resp.ExpiresAt = sess.ExpiresAt()
	return resp
}
