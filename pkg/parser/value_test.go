package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttributeValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain integer", input: "14", want: 14},
		{name: "decimal", input: "12.5", want: 12.5},
		{name: "missing marker", input: "-", want: 0},
		{name: "empty cell", input: "", want: 0},
		{name: "range midpoint", input: "14-16", want: 15},
		{name: "range with fractional midpoint", input: "13-16", want: 14.5},
		{name: "negative number", input: "-5", want: -5},
		{name: "negative range is not split", input: "-5-3", want: 0},
		{name: "too many separators", input: "1-2-3", want: 0},
		{name: "open ended range", input: "5-", want: 0},
		{name: "range with text", input: "a-16", want: 0},
		{name: "text", input: "abc", want: 0},
		{name: "exponent", input: "1e1", want: 10},
		{name: "nan rejected", input: "NaN", want: 0},
		{name: "infinity rejected", input: "Inf", want: 0},
		{name: "overflow rejected", input: "1e400", want: 0},
		{name: "hex rejected", input: "0x10", want: 0},
		{name: "underscore rejected", input: "1_0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAttributeValue(tt.input))
		})
	}
}
