package metrics

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	infinityToken    = "Infinity"
	negInfinityToken = "-Infinity"
	nanToken         = "NaN"
)

// Float is a float64 that encodes infinities and NaN as JSON strings, so a
// summed overflow still survives a session round trip.
type Float float64

// NonFiniteToken returns the JSON string used for v when v is not finite.
func NonFiniteToken(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return nanToken, true
	case math.IsInf(v, 1):
		return infinityToken, true
	case math.IsInf(v, -1):
		return negInfinityToken, true
	}
	return "", false
}

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	if tok, ok := NonFiniteToken(float64(f)); ok {
		return json.Marshal(tok)
	}
	return json.Marshal(float64(f))
}

// UnmarshalJSON accepts a number or one of the non-finite tokens.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case infinityToken:
			*f = Float(math.Inf(1))
		case negInfinityToken:
			*f = Float(math.Inf(-1))
		case nanToken:
			*f = Float(math.NaN())
		default:
			return fmt.Errorf("invalid number %q", s)
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	*f = Float(v)
	return nil
}
