package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/nestegg/internal/metrics"
	"github.com/seuros/nestegg/internal/session"
)

// HandleHealth → GET /health
func (h *Handlers) HandleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "nestegg",
	})
}

// HandleUp → GET /up
//
// Returns 200 when the server runs and the database answers a ping.
func (h *Handlers) HandleUp(c fiber.Ctx) error {
	if h.ping != nil {
		ctx, cancel := storeContext(c)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.log.Warn("database ping failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).SendString("database unavailable")
		}
	}
	return c.SendStatus(fiber.StatusOK)
}

// HandleVersion → GET /api/version
func (h *Handlers) HandleVersion(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": h.version,
	})
}

// HandleSummary → GET /api/summary
//
// Reads straight from the store rather than the session cache.
func (h *Handlers) HandleSummary(c fiber.Ctx) error {
	sess := session.FromCtx(c)
	if !sess.HasOwner() {
		return c.JSON(fiber.Map{
			"owner_id": nil,
			"overall":  metrics.EmptyAggregate(),
		})
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	overall, err := h.goals.Summarize(ctx, sess.OwnerID())
	if err != nil {
		h.log.Error("failed to summarize goals", zap.String("owner_id", sess.OwnerID()), zap.Error(err))
		return err
	}
	return c.JSON(fiber.Map{
		"owner_id": sess.OwnerID(),
		"overall":  overall,
	})
}
