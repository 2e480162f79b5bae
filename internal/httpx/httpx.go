// Package httpx holds small request/response helpers shared by handlers.
package httpx

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"
)

var (
	// ErrMissingField is returned when a required form field is absent.
	ErrMissingField = errors.New("missing form field")
	// ErrMalformedNumber is returned when a numeric form field does not parse.
	ErrMalformedNumber = errors.New("malformed number")
)

// FormString returns a required form value. Present-but-empty counts as
// present, matching how browsers submit blank inputs.
func FormString(c fiber.Ctx, key string) (string, error) {
	if v, ok := argValue(c.RequestCtx().PostArgs(), key); ok {
		return v, nil
	}
	if fh, err := c.MultipartForm(); err == nil && fh != nil {
		if vals, ok := fh.Value[key]; ok && len(vals) > 0 {
			return vals[0], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingField, key)
}

func argValue(args *fasthttp.Args, key string) (string, bool) {
	if args == nil || !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}

// FormFloat parses a required numeric form value. NaN and infinities are
// rejected as malformed.
func FormFloat(c fiber.Ctx, key string) (float64, error) {
	raw, err := FormString(c, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedNumber, key, raw)
	}
	return v, nil
}

// WantsJSON reports whether the client prefers a JSON response.
func WantsJSON(c fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) ||
		strings.HasPrefix(c.Path(), "/api/")
}

// Error writes a standard error envelope.
func Error(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
