// Package views embeds the server-rendered HTML templates.
package views

import (
	"embed"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templates embed.FS

// Funcs are the helpers available inside every template.
var Funcs = map[string]any{
	"money":  Money,
	"pct":    Percent,
	"months": Months,
}

// Engine returns a template engine backed by the embedded templates.
func Engine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	for name, fn := range Funcs {
		engine.AddFunc(name, fn)
	}
	return engine
}

// Money formats an amount with two decimals and thousands separators.
func Money(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Percent formats an already-scaled percentage.
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// Months renders a months-to-goal value; an unreachable goal reads "never".
func Months(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "never"
	case math.IsNaN(v):
		return "n/a"
	case v <= 0:
		return "reached"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
