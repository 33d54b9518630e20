package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	priceSymbols  = strings.NewReplacer("€", "", "£", "", "$", "", ",", "")
	priceDashes   = regexp.MustCompile(`[-–—]`)
	amountPattern = regexp.MustCompile(`^([0-9]*\.?[0-9]+)([kmb])?`)
	freePattern   = regexp.MustCompile(`(?i)free`)
)

// ParsePrice converts a transfer value or wage cell such as "€10M - €14.5M", "£850K" or
// "Free" into an amount in currency units. Ranges resolve to their upper bound. The second
// result is false for blanks, placeholders and values with no amount ("Not for Sale").
func ParsePrice(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == missingMarker || value == "–" {
		return 0, false
	}
	if freePattern.MatchString(value) {
		return 0, true
	}

	normalized := strings.Join(strings.Fields(priceSymbols.Replace(value)), "")
	parts := priceDashes.Split(normalized, -1)

	best, found := math.Inf(-1), false
	for _, part := range parts {
		if amount, ok := parseAmount(part); ok {
			best = math.Max(best, amount)
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best, true
}

// parseAmount reads one amount with an optional k/m/b multiplier, ignoring any trailing
// text such as "p/w"
func parseAmount(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || r == '.' || r == '/' {
			b.WriteRune(r)
		}
	}

	m := amountPattern.FindStringSubmatch(b.String())
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	switch m[2] {
	case "k":
		n *= 1e3
	case "m":
		n *= 1e6
	case "b":
		n *= 1e9
	}
	return n, true
}
