package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Rule
	}{
		{name: "at least", expr: "Fin>=15", want: Rule{Type: Numeric, Field: "Fin", Operator: OpGTE, Value: 15}},
		{name: "at most", expr: "Age <= 21", want: Rule{Type: Numeric, Field: "Age", Operator: OpLTE, Value: 21}},
		{name: "greater", expr: "Pac>12.5", want: Rule{Type: Numeric, Field: "Pac", Operator: OpGT, Value: 12.5}},
		{name: "less", expr: "Wor<8", want: Rule{Type: Numeric, Field: "Wor", Operator: OpLT, Value: 8}},
		{name: "money threshold", expr: "Value<=€5.5M", want: Rule{Type: Numeric, Field: "Value", Operator: OpLTE, Value: 5.5e6}},
		{name: "numeric equality", expr: "Age=18", want: Rule{Type: Numeric, Field: "Age", Operator: OpEQ, Value: 18}},
		{name: "money equality", expr: "Wage=45K", want: Rule{Type: Numeric, Field: "Wage", Operator: OpEQ, Value: 45000}},
		{name: "range", expr: "Age=18..21", want: Rule{Type: Numeric, Field: "Age", Operator: OpBetween, Value: 18, Value2: ptr(21)}},
		{name: "text equality", expr: "Club=1860 Munich", want: Rule{Type: Text, Field: "Club", Operator: OpEquals, Text: "1860 Munich"}},
		{name: "field with spaces", expr: "Transfer Value>1M", want: Rule{Type: Numeric, Field: "Transfer Value", Operator: OpGT, Value: 1e6}},
		{name: "contains", expr: "Name~son", want: Rule{Type: Text, Field: "Name", Operator: OpContains, Text: "son"}},
		{name: "starts with", expr: "Name^Al", want: Rule{Type: Text, Field: "Name", Operator: OpStartsWith, Text: "Al"}},
		{name: "ends with", expr: "Name$son", want: Rule{Type: Text, Field: "Name", Operator: OpEndsWith, Text: "son"}},
		{name: "in", expr: "Position@ST (C)", want: Rule{Type: Text, Field: "Position", Operator: OpIn, Text: "ST (C)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.expr, And)
			require.NoError(t, err)
			require.NotNil(t, g)
			require.Len(t, g.Rules, 1)
			assert.Equal(t, tt.want, *g.Rules[0].Rule)
		})
	}
}

func TestParseGroups(t *testing.T) {
	g, err := Parse("Fin>=15; Club=Arsenal ;", Or)
	require.NoError(t, err)
	assert.Equal(t, Or, g.Op)
	assert.Len(t, g.Rules, 2)

	g, err = Parse("Fin>=15", "")
	require.NoError(t, err)
	assert.Equal(t, And, g.Op)

	g, err = Parse("  ", And)
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{name: "no operator", expr: "Fin"},
		{name: "no field", expr: ">=15"},
		{name: "text threshold", expr: "Fin>=lots"},
		{name: "open range", expr: "Age=18.."},
		{name: "second clause broken", expr: "Fin>=15;Pac<fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr, And)
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestParseOp(t *testing.T) {
	assert.Equal(t, Or, ParseOp(true))
	assert.Equal(t, And, ParseOp(false))
}
