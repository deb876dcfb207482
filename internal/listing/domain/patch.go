package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindYear
	kindNumber
	kindList
)

// mutableFields are the client-writable listing fields, keyed by their document name.
var mutableFields = map[string]fieldKind{
	"brand":             kindText,
	"model":             kindText,
	"year":              kindYear,
	"price":             kindNumber,
	"mileage":           kindNumber,
	"fuel_type":         kindText,
	"transmission":      kindText,
	"engine_capacity":   kindText,
	"power":             kindText,
	"body_type":         kindText,
	"color":             kindText,
	"vin":               kindText,
	"registration_date": kindText,
	"description":       kindText,
	"features":          kindList,
	"images":            kindList,
	"contact_phone":     kindText,
	"contact_email":     kindText,
}

// Patch is a set of typed field values keyed by document field name.
// Values are string, int, float64 or []string.
type Patch map[string]any

// NewPatch converts a partial update into typed values. Unknown keys and fields the
// client may not write (id, timestamps, publication state) are dropped. Required and
// range rules are not applied here; only values that cannot be stored in the field's
// type are reported, in the same "<Field> must be ..." form Validate uses.
func NewPatch(input Input) (Patch, []string) {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	patch := make(Patch, len(input))
	var errs []string
	for _, key := range keys {
		kind, ok := mutableFields[key]
		if !ok {
			continue
		}
		v, msg := coerce(kind, input[key])
		if msg != "" {
			errs = append(errs, fieldLabel(key)+" "+msg)
			continue
		}
		patch[key] = v
	}
	return patch, errs
}

func fieldLabel(key string) string {
	return strings.ToUpper(key[:1]) + key[1:]
}

func coerce(kind fieldKind, v any) (any, string) {
	switch kind {
	case kindText:
		if v == nil {
			return "", ""
		}
		if s, ok := textOf(v); ok {
			return s, ""
		}
		return nil, "must be a string"
	case kindYear:
		if v == nil {
			return 0, ""
		}
		if y, ok := parseYear(v); ok {
			return y, ""
		}
		return nil, "must be a valid number"
	case kindNumber:
		if v == nil {
			return float64(0), ""
		}
		if f, ok := numeric(v); ok {
			return f, ""
		}
		return nil, "must be a number"
	case kindList:
		if v == nil {
			return []string{}, ""
		}
		if list, ok := stringList(v); ok {
			return list, ""
		}
		return nil, "must be a list of strings"
	}
	return nil, "is not supported"
}

func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	}
	if f, ok := numeric(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Apply copies patch values onto the listing.
func (l *Listing) Apply(p Patch) {
	for key, v := range p {
		switch key {
		case "brand":
			l.Brand = v.(string)
		case "model":
			l.Model = v.(string)
		case "year":
			l.Year = v.(int)
		case "price":
			l.Price = v.(float64)
		case "mileage":
			l.Mileage = v.(float64)
		case "fuel_type":
			l.FuelType = v.(string)
		case "transmission":
			l.Transmission = v.(string)
		case "engine_capacity":
			l.EngineCapacity = v.(string)
		case "power":
			l.Power = v.(string)
		case "body_type":
			l.BodyType = v.(string)
		case "color":
			l.Color = v.(string)
		case "vin":
			l.VIN = v.(string)
		case "registration_date":
			l.RegistrationDate = v.(string)
		case "description":
			l.Description = v.(string)
		case "features":
			l.Features = v.([]string)
		case "images":
			l.Images = v.([]string)
		case "contact_phone":
			l.ContactPhone = v.(string)
		case "contact_email":
			l.ContactEmail = v.(string)
		}
	}
}

// FromInput builds a new listing from input, applying defaults for every optional
// field. Publication state and timestamps are never taken from input. The returned
// violations list every supplied value the field's type cannot hold; the listing must
// not be stored when there are any.
func FromInput(input Input, now time.Time) (*Listing, []string) {
	l := &Listing{
		Features:  []string{},
		Images:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	patch, errs := NewPatch(input)
	l.Apply(patch)
	return l, errs
}

// MergeViolations appends type violations to rule violations, skipping any field the
// rules already reported.
func MergeViolations(rules, types []string) []string {
	reported := make(map[string]bool, len(rules))
	for _, e := range rules {
		reported[violationField(e)] = true
	}
	merged := append([]string{}, rules...)
	for _, e := range types {
		if !reported[violationField(e)] {
			merged = append(merged, e)
		}
	}
	return merged
}

func violationField(msg string) string {
	field, _, _ := strings.Cut(msg, " ")
	return strings.ToLower(field)
}
