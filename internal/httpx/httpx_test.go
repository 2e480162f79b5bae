package httpx

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestArgValue(t *testing.T) {
	var args fasthttp.Args
	args.Parse("goal=100&blank=")

	v, ok := argValue(&args, "goal")
	assert.True(t, ok)
	assert.Equal(t, "100", v)

	v, ok = argValue(&args, "blank")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = argValue(&args, "absent")
	assert.False(t, ok)

	_, ok = argValue(nil, "goal")
	assert.False(t, ok)
}

func formApp() *fiber.App {
	app := fiber.New()
	app.Post("/", func(c fiber.Ctx) error {
		v, err := FormFloat(c, "goal")
		switch {
		case errors.Is(err, ErrMissingField):
			return c.Status(http.StatusBadRequest).SendString("missing")
		case errors.Is(err, ErrMalformedNumber):
			return c.Status(http.StatusInternalServerError).SendString("malformed")
		case err != nil:
			return err
		}
		return c.JSON(fiber.Map{"goal": v})
	})
	return app
}

func postForm(t *testing.T, app *fiber.App, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestFormFloat(t *testing.T) {
	app := formApp()

	status, body := postForm(t, app, url.Values{"goal": {" 1000.5 "}})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"goal":1000.5}`, body)

	status, body = postForm(t, app, url.Values{"other": {"1"}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "missing", body)

	status, body = postForm(t, app, url.Values{"goal": {"abc"}})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "malformed", body)

	status, _ = postForm(t, app, url.Values{"goal": {""}})
	assert.Equal(t, http.StatusInternalServerError, status)

	for _, raw := range []string{"nan", "NaN", "inf", "-Inf", "+infinity", "1e309"} {
		status, body = postForm(t, app, url.Values{"goal": {raw}})
		assert.Equal(t, http.StatusInternalServerError, status, raw)
		assert.Equal(t, "malformed", body, raw)
	}
}

func TestWantsJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/*", func(c fiber.Ctx) error {
		if WantsJSON(c) {
			return c.SendString("json")
		}
		return c.SendString("html")
	})

	cases := []struct {
		path, accept, want string
	}{
		{"/dashboard", "text/html", "html"},
		{"/dashboard", "application/json", "json"},
		{"/api/summary", "", "json"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.accept != "" {
			req.Header.Set("Accept", tc.accept)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		assert.Equal(t, tc.want, string(body), tc.path)
	}
}
