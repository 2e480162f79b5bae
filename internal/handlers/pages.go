package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/nestegg/internal/metrics"
	"github.com/seuros/nestegg/internal/models"
	"github.com/seuros/nestegg/internal/observability"
	"github.com/seuros/nestegg/internal/session"
)

// HandleIndex → GET /
func (h *Handlers) HandleIndex(c fiber.Ctx) error {
	sess := session.FromCtx(c)
	if h.sessions.Ensure(sess) {
		observability.SessionsStarted.Inc()
		h.log.Debug("session started", zap.String("owner_id", sess.OwnerID()))
	}

	return c.Render("index", fiber.Map{
		"Title":   "Savings calculator",
		"Overall": sess.Aggregate(),
	})
}

// HandleCalculate → POST /calculate
//
// Computes a one-off result; nothing is persisted.
func (h *Handlers) HandleCalculate(c fiber.Ctx) error {
	in, err := parseInputs(c)
	if err != nil {
		return err
	}
	observability.CalculationsPreviewed.Inc()

	return c.Render("result", fiber.Map{
		"Title":  "Your result",
		"Inputs": in,
		"Result": metrics.Calculate(in).Rounded(),
	})
}

// HandleDashboard → GET /dashboard
func (h *Handlers) HandleDashboard(c fiber.Ctx) error {
	sess := session.FromCtx(c)

	ctx, cancel := storeContext(c)
	defer cancel()

	goals, err := h.goals.ListByOwner(ctx, sess.OwnerID())
	if err != nil {
		h.log.Error("failed to list goals", zap.String("owner_id", sess.OwnerID()), zap.Error(err))
		return err
	}

	// The listing is authoritative; heal a cached aggregate that drifted from it.
	overall := summarizeGoals(goals)
	if overall != sess.Aggregate() {
		sess.SetAggregate(overall)
	}

	return c.Render("dashboard", fiber.Map{
		"Title":   "Dashboard",
		"Goals":   goals,
		"Overall": overall,
	})
}

func summarizeGoals(goals []models.Goal) metrics.Aggregate {
	var acc metrics.Accumulator
	for _, g := range goals {
		acc.Add(g.Inputs())
	}
	return acc.Aggregate()
}

func redirectDashboard(c fiber.Ctx) error {
	return c.Redirect().Status(fiber.StatusSeeOther).To("/dashboard")
}
