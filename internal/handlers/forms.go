package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/nestegg/internal/httpx"
	"github.com/seuros/nestegg/internal/metrics"
)

// parseInputs reads the four numeric goal fields, failing on the first bad one.
func parseInputs(c fiber.Ctx) (metrics.Inputs, error) {
	var in metrics.Inputs
	fields := []struct {
		key string
		dst *float64
	}{
		{"goal", &in.Target},
		{"monthly_savings", &in.MonthlyContribution},
		{"current_savings", &in.Current},
		{"monthly_income", &in.MonthlyIncome},
	}
	for _, f := range fields {
		v, err := httpx.FormFloat(c, f.key)
		if err != nil {
			return metrics.Inputs{}, err
		}
		*f.dst = v
	}
	return in, nil
}
