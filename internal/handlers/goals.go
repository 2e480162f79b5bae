package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/nestegg/internal/httpx"
	"github.com/seuros/nestegg/internal/observability"
	"github.com/seuros/nestegg/internal/session"
)

// HandleAddGoal → POST /add_goal
func (h *Handlers) HandleAddGoal(c fiber.Ctx) error {
	sess := session.FromCtx(c)

	name, err := httpx.FormString(c, "goal_name")
	if err != nil {
		return err
	}
	in, err := parseInputs(c)
	if err != nil {
		return err
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	goal, err := h.goals.Insert(ctx, sess.OwnerID(), name, in)
	if err != nil {
		h.log.Error("failed to insert goal", zap.String("owner_id", sess.OwnerID()), zap.Error(err))
		return err
	}
	observability.GoalsCreated.Inc()
	h.log.Info("goal created",
		zap.String("owner_id", sess.OwnerID()),
		zap.String("goal_id", goal.ID),
	)

	if err := h.refreshAggregate(c, sess); err != nil {
		return err
	}
	return redirectDashboard(c)
}

// HandleDeleteGoal → POST /delete_goal
//
// Deleting a goal that does not exist or belongs to someone else is a no-op.
func (h *Handlers) HandleDeleteGoal(c fiber.Ctx) error {
	sess := session.FromCtx(c)

	goalID, err := httpx.FormString(c, "goal_id")
	if err != nil {
		return err
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	deleted, err := h.goals.Delete(ctx, goalID, sess.OwnerID())
	if err != nil {
		h.log.Error("failed to delete goal",
			zap.String("owner_id", sess.OwnerID()),
			zap.String("goal_id", goalID),
			zap.Error(err),
		)
		return err
	}
	observability.GoalsDeleted.WithLabelValues(observability.DeleteResult(deleted)).Inc()

	if err := h.refreshAggregate(c, sess); err != nil {
		return err
	}
	return redirectDashboard(c)
}

// refreshAggregate recomputes the owner's aggregate from the store and caches
// it in the session.
func (h *Handlers) refreshAggregate(c fiber.Ctx, sess *session.Session) error {
	ctx, cancel := storeContext(c)
	defer cancel()

	overall, err := h.goals.Summarize(ctx, sess.OwnerID())
	if err != nil {
		h.log.Error("failed to summarize goals", zap.String("owner_id", sess.OwnerID()), zap.Error(err))
		return err
	}
	sess.SetAggregate(overall)
	return nil
}
