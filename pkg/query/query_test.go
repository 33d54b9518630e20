package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/fm-scout/pkg/models"
)

func samplePlayers() []models.Player {
	return []models.Player{
		{
			Name:                 "Alice Johnson",
			Club:                 "Arsenal",
			Position:             "AM (C), ST (C)",
			Attributes:           models.RawAttributeMap{"Fin": 17, "Pac": 15, "Acc": 13, "Age": 19},
			CalculatedAttributes: models.CalculatedAttributes{Speed: 14},
			Prices:               map[string]float64{"Value": 14.5e6},
			RoleScores:           map[string]float64{"AFA": 72.5},
			BestRole:             &models.RoleScore{Code: "AFA", Name: "Advanced Forward (Attack)", Score: 72.5},
		},
		{
			Name:                 "Bob Smith",
			Club:                 "Chelsea",
			Position:             "D (C)",
			Attributes:           models.RawAttributeMap{"Fin": 6, "Pac": 9, "Acc": 11, "Age": 27},
			CalculatedAttributes: models.CalculatedAttributes{Speed: 10},
			Prices:               map[string]float64{"Value": 850e3},
			RoleScores:           map[string]float64{"AFA": 31},
			BestRole:             &models.RoleScore{Code: "CDD", Name: "Central Defender (Defend)", Score: 64},
		},
		{
			// "Not for Sale" leaves no parsed price
			Name:       "Carl Jackson",
			Club:       "Arsenal",
			Position:   "GK",
			Attributes: models.RawAttributeMap{"Fin": 2, "Age": 33},
		},
	}
}

func names(players []models.Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.Name)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func TestRuleMatch(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want []string
	}{
		{
			name: "numeric at least",
			rule: Rule{Type: Numeric, Field: "Fin", Operator: OpGTE, Value: 6},
			want: []string{"Alice Johnson", "Bob Smith"},
		},
		{
			name: "numeric below",
			rule: Rule{Type: Numeric, Field: "Age", Operator: OpLT, Value: 27},
			want: []string{"Alice Johnson"},
		},
		{
			name: "numeric equal",
			rule: Rule{Type: Numeric, Field: "Age", Operator: OpEQ, Value: 27},
			want: []string{"Bob Smith"},
		},
		{
			name: "between accepts reversed bounds",
			rule: Rule{Type: Numeric, Field: "Age", Operator: OpBetween, Value: 30, Value2: ptr(19)},
			want: []string{"Alice Johnson", "Bob Smith"},
		},
		{
			name: "missing attribute counts as zero",
			rule: Rule{Type: Numeric, Field: "Pac", Operator: OpLTE, Value: 0},
			want: []string{"Carl Jackson"},
		},
		{
			name: "price without an amount never matches",
			rule: Rule{Type: Numeric, Field: "Value", Operator: OpLTE, Value: 20e6},
			want: []string{"Alice Johnson", "Bob Smith"},
		},
		{
			name: "derived speed",
			rule: Rule{Type: Numeric, Field: "Speed", Operator: OpGT, Value: 12},
			want: []string{"Alice Johnson"},
		},
		{
			name: "role score",
			rule: Rule{Type: Numeric, Field: "AFA", Operator: OpGTE, Value: 50},
			want: []string{"Alice Johnson"},
		},
		{
			name: "best score needs a best role",
			rule: Rule{Type: Numeric, Field: BestScoreField, Operator: OpGTE, Value: 0},
			want: []string{"Alice Johnson", "Bob Smith"},
		},
		{
			name: "text equals ignores case",
			rule: Rule{Type: Text, Field: "Club", Operator: OpEquals, Text: "arsenal"},
			want: []string{"Alice Johnson", "Carl Jackson"},
		},
		{
			name: "case sensitive equals",
			rule: Rule{Type: Text, Field: "Club", Operator: OpEquals, Text: "arsenal", CaseSensitive: true},
			want: []string{},
		},
		{
			name: "contains",
			rule: Rule{Type: Text, Field: "Name", Operator: OpContains, Text: "son"},
			want: []string{"Alice Johnson", "Carl Jackson"},
		},
		{
			name: "starts with",
			rule: Rule{Type: Text, Field: "Name", Operator: OpStartsWith, Text: "b"},
			want: []string{"Bob Smith"},
		},
		{
			name: "ends with",
			rule: Rule{Type: Text, Field: "Name", Operator: OpEndsWith, Text: "SMITH"},
			want: []string{"Bob Smith"},
		},
		{
			name: "in splits the field on commas",
			rule: Rule{Type: Text, Field: "Position", Operator: OpIn, Text: "st (c)"},
			want: []string{"Alice Johnson"},
		},
		{
			name: "list value matches any item",
			rule: Rule{Type: Text, Field: "Club", Operator: OpEquals, List: []string{"Chelsea", "Spurs"}},
			want: []string{"Bob Smith"},
		},
		{
			name: "best role code",
			rule: Rule{Type: Text, Field: BestRoleField, Operator: OpEquals, Text: "cdd"},
			want: []string{"Bob Smith"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPlayers(samplePlayers(), &Group{Op: And, Rules: []Node{{Rule: &tt.rule}}})
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestGroupMatch(t *testing.T) {
	arsenal := Node{Rule: &Rule{Type: Text, Field: "Club", Operator: OpEquals, Text: "Arsenal"}}
	young := Node{Rule: &Rule{Type: Numeric, Field: "Age", Operator: OpLT, Value: 21}}
	fast := Node{Rule: &Rule{Type: Numeric, Field: "Speed", Operator: OpGTE, Value: 10}}

	tests := []struct {
		name  string
		group *Group
		want  []string
	}{
		{name: "nil group matches all", group: nil, want: []string{"Alice Johnson", "Bob Smith", "Carl Jackson"}},
		{name: "empty group matches all", group: &Group{Op: Or}, want: []string{"Alice Johnson", "Bob Smith", "Carl Jackson"}},
		{name: "and", group: &Group{Op: And, Rules: []Node{arsenal, young}}, want: []string{"Alice Johnson"}},
		{name: "or", group: &Group{Op: Or, Rules: []Node{young, fast}}, want: []string{"Alice Johnson", "Bob Smith"}},
		{
			name: "nested",
			group: &Group{Op: Or, Rules: []Node{
				{Group: &Group{Op: And, Rules: []Node{arsenal, fast}}},
				{Rule: &Rule{Type: Text, Field: "Position", Operator: OpEquals, Text: "GK"}},
			}},
			want: []string{"Alice Johnson", "Carl Jackson"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterPlayers(samplePlayers(), tt.group)))
		})
	}
}

func TestGroupJSON(t *testing.T) {
	body := `{
		"op": "OR",
		"rules": [
			{"type": "numeric", "field": "Value", "operator": "<=", "value": "5M"},
			{"op": "AND", "rules": [
				{"type": "string", "field": "Club", "operator": "equals", "value": ["Arsenal", "Spurs"]},
				{"type": "numeric", "field": "Age", "operator": "between", "value": 18, "value2": 21}
			]}
		]
	}`

	var g Group
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	require.NoError(t, g.Validate())

	require.Len(t, g.Rules, 2)
	require.NotNil(t, g.Rules[0].Rule)
	assert.Equal(t, 5e6, g.Rules[0].Rule.Value)

	nested := g.Rules[1].Group
	require.NotNil(t, nested)
	assert.Equal(t, And, nested.Op)
	assert.Equal(t, []string{"Arsenal", "Spurs"}, nested.Rules[0].Rule.List)
	require.NotNil(t, nested.Rules[1].Rule.Value2)
	assert.Equal(t, 21.0, *nested.Rules[1].Rule.Value2)

	assert.Equal(t, []string{"Alice Johnson", "Bob Smith"}, names(FilterPlayers(samplePlayers(), &g)))

	out, err := json.Marshal(g)
	require.NoError(t, err)
	var again Group
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, g, again)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		group Group
	}{
		{name: "unknown group op", group: Group{Op: "XOR"}},
		{name: "unknown numeric operator", group: Group{Op: And, Rules: []Node{{Rule: &Rule{Type: Numeric, Field: "Fin", Operator: "!="}}}}},
		{name: "unknown string operator", group: Group{Op: And, Rules: []Node{{Rule: &Rule{Type: Text, Field: "Club", Operator: "like"}}}}},
		{name: "unknown type", group: Group{Op: And, Rules: []Node{{Rule: &Rule{Type: "date", Field: "Age", Operator: "="}}}}},
		{name: "missing field", group: Group{Op: And, Rules: []Node{{Rule: &Rule{Type: Numeric, Operator: ">="}}}}},
		{name: "empty member", group: Group{Op: And, Rules: []Node{{}}}},
		{name: "nested failure", group: Group{Op: Or, Rules: []Node{{Group: &Group{Op: "NOT"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.group.Validate(), ErrInvalidRule)
		})
	}
}

func TestRuleJSONRejectsNonNumericThreshold(t *testing.T) {
	var r Rule
	err := json.Unmarshal([]byte(`{"type":"numeric","field":"Value","operator":"<=","value":"lots"}`), &r)
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestFilterRecords(t *testing.T) {
	records := []models.ScoredRecord{
		{
			Fields: models.PlayerRecord{
				"Name":  models.TextValue("Alice"),
				"Pac":   models.TextValue("14-16"),
				"Acc":   models.NumberValue(13),
				"Value": models.TextValue("€10M - €14.5M"),
			},
			RoleScores: map[string]float64{"AFA": 70},
			BestRole:   &models.RoleScore{Code: "AFA", Score: 70},
		},
		{
			Fields: models.PlayerRecord{
				"Name":  models.TextValue("Bob"),
				"Pac":   models.NumberValue(8),
				"Value": models.TextValue("Not for Sale"),
			},
			RoleScores: map[string]float64{"AFA": 20},
		},
	}

	recordNames := func(list []models.ScoredRecord) []string {
		out := []string{}
		for _, r := range list {
			out = append(out, r.Fields["Name"].Text())
		}
		return out
	}

	tests := []struct {
		expr string
		want []string
	}{
		{expr: "Pac>=15", want: []string{"Alice"}},
		{expr: "Speed>=14", want: []string{"Alice"}},
		{expr: "Value>=10M", want: []string{"Alice"}},
		{expr: "Value<=100M", want: []string{"Alice"}},
		{expr: "AFA<50", want: []string{"Bob"}},
		{expr: "BestRole=AFA", want: []string{"Alice"}},
		{expr: "Name^b", want: []string{"Bob"}},
		{expr: "Acc=13", want: []string{"Alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			g, err := Parse(tt.expr, And)
			require.NoError(t, err)
			assert.Equal(t, tt.want, recordNames(FilterRecords(records, g)))
		})
	}
}
