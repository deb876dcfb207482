package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const MinYear = 1900

// Input is an untrusted listing payload as decoded from JSON.
type Input map[string]any

var requiredFields = []string{"brand", "model", "year", "price"}

// Validate checks input against the listing rules and returns every violation.
// An empty result means the input may be persisted.
func Validate(input Input) []string {
	return ValidateAt(input, time.Now())
}

// ValidateAt is Validate with an explicit clock for the year upper bound.
func ValidateAt(input Input, now time.Time) []string {
	var errs []string

	for _, field := range requiredFields {
		if v, ok := input[field]; !ok || !truthy(v) {
			errs = append(errs, field+" is required")
		}
	}

	if v, ok := input["price"]; ok && truthy(v) {
		if _, isNum := numeric(v); !isNum {
			errs = append(errs, "Price must be a number")
		}
	}

	if v, ok := input["year"]; ok && truthy(v) {
		maxYear := now.Year() + 1
		year, ok := parseYear(v)
		switch {
		case !ok:
			errs = append(errs, "Year must be a valid number")
		case year < MinYear || year > maxYear:
			errs = append(errs, fmt.Sprintf("Year must be between %d and %d", MinYear, maxYear))
		}
	}

	return errs
}

// truthy mirrors loose JSON truthiness: null, "", 0, false and empty collections are falsy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if f, ok := numeric(v); ok {
		return f != 0
	}
	return true
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func parseYear(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case json.Number:
		if n, err := strconv.Atoi(t.String()); err == nil {
			return n, true
		}
	}
	f, ok := numeric(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
