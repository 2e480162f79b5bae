// Package handlers maps form submissions onto the goal store and renders the
// resulting views.
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/nestegg/internal/logging"
	"github.com/seuros/nestegg/internal/middleware"
	"github.com/seuros/nestegg/internal/models"
	"github.com/seuros/nestegg/internal/session"
)

const storeTimeout = 10 * time.Second

// Pinger reports whether the backing database is reachable.
type Pinger func(ctx context.Context) error

// Handlers holds the dependencies shared by every route.
type Handlers struct {
	goals    models.GoalStore
	sessions *session.Manager
	ping     Pinger
	version  string
	log      *zap.Logger
}

// Option configures Handlers.
type Option func(*Handlers)

// WithPinger sets the database probe used by /up.
func WithPinger(p Pinger) Option {
	return func(h *Handlers) { h.ping = p }
}

// WithVersion sets the version reported by /api/version.
func WithVersion(v string) Option {
	return func(h *Handlers) { h.version = v }
}

// WithLogger overrides the handler logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handlers) { h.log = l }
}

// New builds the handler set.
func New(goals models.GoalStore, sessions *session.Manager, opts ...Option) *Handlers {
	h := &Handlers{
		goals:    goals,
		sessions: sessions,
		version:  "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logging.L()
	}
	return h
}

// Register mounts every route on r. The session middleware must already be
// installed on r.
func (h *Handlers) Register(r fiber.Router) {
	r.Get("/", h.HandleIndex)
	r.Post("/calculate", h.HandleCalculate)

	owned := middleware.RequireOwner("/")
	r.Post("/add_goal", owned, h.HandleAddGoal)
	r.Get("/dashboard", owned, h.HandleDashboard)
	r.Post("/delete_goal", owned, h.HandleDeleteGoal)

	r.Get("/health", h.HandleHealth)
	r.Get("/up", h.HandleUp)
	r.Get("/api/version", h.HandleVersion)
	r.Get("/api/summary", h.HandleSummary)
}

func storeContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), storeTimeout)
}
