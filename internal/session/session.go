// Package session tracks the anonymous owner identity of a browser session
// and the goal aggregate cached alongside it.
package session

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seuros/nestegg/internal/logging"
	"github.com/seuros/nestegg/internal/metrics"
)

const localsKey = "nestegg.session"

// ErrInvalid marks a session cookie that cannot be trusted (bad signature,
// expired, malformed). Callers treat it as no session at all.
var ErrInvalid = errors.New("invalid session")

// Data is what gets persisted per session.
type Data struct {
	OwnerID   string            `json:"owner_id"`
	Aggregate metrics.Aggregate `json:"overall_metrics"`
}

// Store loads and saves session data for a request.
type Store interface {
	// Load returns nil data when the request carries no session.
	Load(c fiber.Ctx) (*Data, error)
	Save(c fiber.Ctx, data *Data) error
}

// Session is the per-request view of the session, threaded through handlers
// via FromCtx.
type Session struct {
	data  Data
	dirty bool
}

// OwnerID returns the anonymous owner identity, or "" when none was assigned.
func (s *Session) OwnerID() string { return s.data.OwnerID }

// HasOwner reports whether an identity has been assigned.
func (s *Session) HasOwner() bool { return s.data.OwnerID != "" }

// Aggregate returns the cached summary of the owner's goals.
func (s *Session) Aggregate() metrics.Aggregate { return s.data.Aggregate }

// SetAggregate replaces the cached summary and marks the session for saving.
func (s *Session) SetAggregate(agg metrics.Aggregate) {
	s.data.Aggregate = agg
	s.dirty = true
}

// Manager wires a Store into the request pipeline.
type Manager struct {
	store Store
	newID func() string
	log   *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithIDGenerator overrides how owner identities are minted.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithLogger sets the logger used for session diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager returns a Manager persisting through store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logging.L()
	}
	return m
}

// Middleware loads the session before the handler runs and saves it afterwards
// when the handler changed it.
func (m *Manager) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		data, err := m.store.Load(c)
		switch {
		case errors.Is(err, ErrInvalid):
			m.log.Debug("discarding invalid session", zap.Error(err))
			data = nil
		case err != nil:
			return err
		}

		sess := &Session{}
		if data != nil {
			sess.data = *data
		}
		c.Locals(localsKey, sess)

		handlerErr := c.Next()

		if sess.dirty {
			if err := m.store.Save(c, &sess.data); err != nil {
				m.log.Error("failed to save session", zap.String("owner_id", sess.data.OwnerID), zap.Error(err))
				if handlerErr == nil {
					return err
				}
			}
		}
		return handlerErr
	}
}

// Ensure assigns an owner identity and an empty aggregate when the session has
// none yet. It reports whether a new identity was created.
func (m *Manager) Ensure(sess *Session) bool {
	if sess.HasOwner() {
		return false
	}
	sess.data = Data{
		OwnerID:   m.newID(),
		Aggregate: metrics.EmptyAggregate(),
	}
	sess.dirty = true
	return true
}

// FromCtx returns the request's session. Without the middleware it returns an
// empty, ownerless session that is never saved.
func FromCtx(c fiber.Ctx) *Session {
	if sess, ok := c.Locals(localsKey).(*Session); ok {
		return sess
	}
	return &Session{}
}
