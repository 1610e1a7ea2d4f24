package dispatch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"portafoglio/internal/core"
)

// Params holds the action-specific fields of a request. Transports hand
// over loosely typed values (JSON numbers arrive as float64); the typed
// accessors below normalize them and fail with ErrInvalidRequest on
// missing or malformed input.
type Params map[string]any

// Has reports whether the key is present and non-nil.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns a required non-empty string parameter.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing parameter %q", core.ErrInvalidRequest, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter %q must be a string", core.ErrInvalidRequest, key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: parameter %q must not be empty", core.ErrInvalidRequest, key)
	}
	return s, nil
}

// OptString returns a string parameter or the fallback when absent.
func (p Params) OptString(key, fallback string) string {
	if s, ok := p[key].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return fallback
}

// Int returns a required integer parameter, accepting JSON numbers and
// numeric strings.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: missing parameter %q", core.ErrInvalidRequest, key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: parameter %q must be an integer", core.ErrInvalidRequest, key)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: parameter %q must be an integer", core.ErrInvalidRequest, key)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: parameter %q must be an integer", core.ErrInvalidRequest, key)
}

// OptInt returns an integer parameter or the fallback when absent.
func (p Params) OptInt(key string, fallback int) (int, error) {
	if !p.Has(key) {
		return fallback, nil
	}
	return p.Int(key)
}

// OptBool returns a boolean parameter or the fallback when absent.
func (p Params) OptBool(key string, fallback bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err == nil {
			return parsed, nil
		}
	}
	return false, fmt.Errorf("%w: parameter %q must be a boolean", core.ErrInvalidRequest, key)
}

// Amount returns a required positive monetary amount, accepting JSON
// numbers and decimal strings.
func (p Params) Amount(key string) (core.Money, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return core.Money{}, fmt.Errorf("%w: missing parameter %q", core.ErrInvalidRequest, key)
	}
	switch n := v.(type) {
	case float64:
		return core.MoneyFromFloat(n)
	case int:
		return core.MoneyFromFloat(float64(n))
	case int64:
		return core.MoneyFromFloat(float64(n))
	case string:
		return core.ParseAmount(n)
	}
	return core.Money{}, fmt.Errorf("%w: parameter %q must be a number", core.ErrInvalidRequest, key)
}

// OptAmount returns (amount, true) when the key is present.
func (p Params) OptAmount(key string) (core.Money, bool, error) {
	if !p.Has(key) {
		return core.Money{}, false, nil
	}
	m, err := p.Amount(key)
	return m, err == nil, err
}

// Date returns a required date parameter.
func (p Params) Date(key string) (time.Time, error) {
	s, err := p.String(key)
	if err != nil {
		return time.Time{}, err
	}
	return core.ParseDate(s)
}

// OptDate returns (date, true) when the key is present.
func (p Params) OptDate(key string) (time.Time, bool, error) {
	if !p.Has(key) {
		return time.Time{}, false, nil
	}
	d, err := p.Date(key)
	return d, err == nil, err
}

// StringSlice returns a required list of strings, accepting []string,
// []any of strings, or a single string.
func (p Params) StringSlice(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: missing parameter %q", core.ErrInvalidRequest, key)
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: parameter %q must be a list of strings", core.ErrInvalidRequest, key)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{list}, nil
	}
	return nil, fmt.Errorf("%w: parameter %q must be a list of strings", core.ErrInvalidRequest, key)
}

// Sub returns a required nested parameter object.
func (p Params) Sub(key string) (Params, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: missing parameter %q", core.ErrInvalidRequest, key)
	}
	switch sub := v.(type) {
	case Params:
		return sub, nil
	case map[string]any:
		return Params(sub), nil
	}
	return nil, fmt.Errorf("%w: parameter %q must be an object", core.ErrInvalidRequest, key)
}
