package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mermedit/pkg/graphsync"
	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/overlay"
	"github.com/matzehuels/mermedit/pkg/render"
)

// Options configure a MemoryStore.
type Options struct {
	TTL         time.Duration
	MaxSessions int

	// Renderer produces previews. It is shared by all sessions.
	Renderer render.Renderer

	// Engine lays out canvases. Nil uses layout defaults.
	Engine *layout.Engine

	// PreservePinned is passed to every controller; nil means true.
	PreservePinned *bool

	Logger *log.Logger
}

// DefaultMaxSessions bounds the number of live sessions.
const DefaultMaxSessions = 1000

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts Options) *MemoryStore {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &MemoryStore{opts: opts, sessions: make(map[string]*Session)}
}

func (s *MemoryStore) newSession() *Session {
	now := time.Now()
	sess := &Session{
		ID:        GenerateID(),
		CreatedAt: now,
		expiresAt: now.Add(s.opts.TTL),
		ttl:       s.opts.TTL,
	}
	logger := s.opts.Logger.With("session", sess.ID)

	syncOpts := []graphsync.Option{graphsync.WithLogger(logger)}
	if s.opts.Engine != nil {
		syncOpts = append(syncOpts, graphsync.WithEngine(s.opts.Engine))
	}
	if s.opts.PreservePinned != nil {
		syncOpts = append(syncOpts, graphsync.WithPreservePinned(*s.opts.PreservePinned))
	}
	sess.Sync = graphsync.New(syncOpts...)
	sess.Overlay = overlay.New(overlay.WithLogger(logger))
	if s.opts.Renderer != nil {
		sess.Preview = graphsync.NewPreview(s.opts.Renderer)
	}
	return sess
}

// Create starts a session and applies text as its first revision.
func (s *MemoryStore) Create(ctx context.Context, text string) (*Session, error) {
	sess := s.newSession()
	sess.Sync.SetText(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.opts.MaxSessions {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooMany, s.opts.MaxSessions)
	}
	s.sessions[sess.ID] = sess
	s.opts.Logger.Debug("session created", "session", sess.ID, "live", len(s.sessions))
	return sess, nil
}

// Get returns a live session. Expired sessions are removed.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, ErrExpired
	}
	return sess, nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup removes expired sessions.
func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.opts.Logger.Debug("expired sessions removed", "count", removed, "live", len(s.sessions))
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := s.Cleanup(ctx); err != nil {
				return err
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
