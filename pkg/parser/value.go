// Package parser turns raw export content into tables of cell text and cell text into attribute values
package parser

import (
	"math"
	"strconv"
	"strings"
)

const missingMarker = "-"

// ParseAttributeValue converts a single cell into a numeric attribute value.
// It never fails: missing markers and anything unparseable yield 0, and an
// inclusive range such as "14-16" yields its midpoint.
func ParseAttributeValue(value string) float64 {
	if value == missingMarker || value == "" {
		return 0
	}

	// A leading '-' is a sign, not a range separator
	if strings.Contains(value, "-") && !strings.HasPrefix(value, "-") {
		parts := strings.Split(value, "-")
		if len(parts) == 2 {
			low, lowOK := parseNumber(parts[0])
			high, highOK := parseNumber(parts[1])
			if lowOK && highOK {
				return (low + high) / 2
			}
		}
	}

	if v, ok := parseNumber(value); ok {
		return v
	}
	return 0
}

// parseNumber accepts finite decimal numbers only
func parseNumber(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
