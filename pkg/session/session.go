// Package session manages in-memory editing sessions.
//
// A [Session] bundles everything one editor needs: the text/canvas
// controller, the preview and the overlay drag controller. Sessions live
// in a [Store] and expire after a period of inactivity; nothing is
// persisted.
//
// # Usage
//
//	store := session.NewMemoryStore(session.Options{Renderer: r})
//	sess, err := store.Create(ctx, notation.DefaultDocument)
//
//	err = sess.Do(func(s *session.Session) error {
//	    s.Sync.SetText(ctx, text)
//	    return nil
//	})
//
// Controllers are not safe for concurrent use, so every access goes
// through [Session.Do], which holds the session lock.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mermedit/pkg/graphsync"
	"github.com/matzehuels/mermedit/pkg/overlay"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")

	// ErrTooMany is returned when the store is full.
	ErrTooMany = errors.New("too many sessions")

	// ErrNoPreview is returned by RenderPreview when the store has no
	// renderer.
	ErrNoPreview = errors.New("preview rendering not configured")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Session is one editing session.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Sync    *graphsync.Controller `json:"-"`
	Overlay *overlay.Controller   `json:"-"`
	Preview *graphsync.Preview    `json:"-"`

	mu         sync.Mutex
	expiresAt  time.Time
	ttl        time.Duration
	overlayRev uint64
	overlayOK  bool
}

// GenerateID returns a new random session ID.
func GenerateID() string { return uuid.NewString() }

// Do runs fn with the session locked and extends its lifetime.
func (s *Session) Do(fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(s.ttl)
	return fn(s)
}

// IsExpired reports whether the session outlived its TTL.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.expiresAt)
}

// ExpiresAt returns the current expiry time.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// PreviewResult is the decorated preview of one revision.
type PreviewResult struct {
	Revision uint64 `json:"revision"`
	Markup   string `json:"markup,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RenderPreview renders the current text and loads the result into the
// overlay. The renderer must produce SVG. The render itself runs without holding the session lock; if
// the text changed meanwhile, the older result is still shown until the
// newer one is requested.
func (s *Session) RenderPreview(ctx context.Context) (PreviewResult, error) {
	if s.Preview == nil {
		return PreviewResult{}, ErrNoPreview
	}
	var (
		rev  uint64
		text string
	)
	_ = s.Do(func(s *Session) error {
		rev, text = s.Sync.Revision(), s.Sync.Text()
		return nil
	})

	state, _ := s.Preview.Request(ctx, rev, text)
	if err := ctx.Err(); err != nil {
		return PreviewResult{}, err
	}

	var res PreviewResult
	err := s.Do(func(s *Session) error {
		res = PreviewResult{Revision: state.Revision, Error: state.Error}
		if state.Error != "" {
			return nil
		}
		if !s.overlayOK || s.overlayRev != state.Revision {
			if err := s.Overlay.Load(string(state.Image)); err != nil {
				return err
			}
			s.overlayRev, s.overlayOK = state.Revision, true
		}
		markup, err := s.Overlay.Markup()
		res.Markup = markup
		return err
	})
	return res, err
}

// Store holds sessions.
type Store interface {
	// Create starts a session whose document is text.
	Create(ctx context.Context, text string) (*Session, error)

	// Get returns a live session. It fails with ErrNotFound or ErrExpired.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an unknown session is not an
	// error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
