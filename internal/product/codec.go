package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotObject = errors.New("document is not a json object")

// Parse decodes one product document. Only a document that is not a JSON
// object is an error; missing, null or mistyped fields fall back to their
// defaults.
func Parse(b []byte) (Product, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return Product{}, &ParseError{Err: err}
	}
	if doc == nil {
		return Product{}, &ParseError{Err: errNotObject}
	}

	p := Product{
		ID:           optString(doc["id"], ""),
		Title:        optString(doc["title"], ""),
		Price:        optFloat(doc["price"], 0),
		Description:  optString(doc["description"], ""),
		Category:     optString(doc["category"], ""),
		Image:        optString(doc["image"], ""),
		Availability: Availability(optString(doc["availability"], string(InStock))),
	}

	if raw, ok := doc["rating"]; ok {
		var rating map[string]json.RawMessage
		if err := json.Unmarshal(raw, &rating); err == nil && rating != nil {
			p.Rating = optFloat(rating["rate"], 0)
			p.RatingCount = optInt(rating["count"], 0)
		}
	}

	return p, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// optString accepts strings, and renders numbers and booleans as their
// literal text.
func optString(raw json.RawMessage, def string) string {
	if isNull(raw) {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return def
}

// optFloat accepts numbers and numeric strings.
func optFloat(raw json.RawMessage, def float64) float64 {
	if isNull(raw) {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return def
}

// optInt truncates fractional values.
func optInt(raw json.RawMessage, def int) int {
	f := optFloat(raw, math.NaN())
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}
