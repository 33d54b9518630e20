// Package query filters scored players with numeric and text rules combined into AND/OR groups
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/myusername/fm-scout/pkg/parser"
)

// Op joins the members of a group
type Op string

const (
	And Op = "AND"
	Or  Op = "OR"
)

// RuleType selects how a rule reads its field
type RuleType string

const (
	Numeric RuleType = "numeric"
	Text    RuleType = "string"
)

// Operators
const (
	OpGTE     = ">="
	OpLTE     = "<="
	OpGT      = ">"
	OpLT      = "<"
	OpEQ      = "="
	OpBetween = "between"

	OpEquals     = "equals"
	OpContains   = "contains"
	OpStartsWith = "startsWith"
	OpEndsWith   = "endsWith"
	OpIn         = "in"
)

var (
	numericOps = map[string]bool{OpGTE: true, OpLTE: true, OpGT: true, OpLT: true, OpEQ: true, OpBetween: true}
	textOps    = map[string]bool{OpEquals: true, OpContains: true, OpStartsWith: true, OpEndsWith: true, OpIn: true}

	// ErrInvalidRule is wrapped by every rule or group validation failure
	ErrInvalidRule = errors.New("invalid query rule")
)

// Rule is a single condition on one field.
//
// Numeric rules compare Value (and Value2 for between). Text rules compare Text, or test
// membership in List when one is given; they ignore case unless CaseSensitive is set.
type Rule struct {
	Type          RuleType
	Field         string
	Operator      string
	Value         float64
	Value2        *float64
	Text          string
	List          []string
	CaseSensitive bool
}

// Group combines rules and nested groups. An empty Op means AND; an empty or nil group
// matches everything.
type Group struct {
	Op    Op     `json:"op"`
	Rules []Node `json:"rules"`
}

// Node is one member of a group: exactly one of Rule and Group is set
type Node struct {
	Rule  *Rule
	Group *Group
}

// Match reports whether s satisfies the group
func (g *Group) Match(s Subject) bool {
	if g == nil || len(g.Rules) == 0 {
		return true
	}
	for _, n := range g.Rules {
		ok := n.match(s)
		if g.Op == Or && ok {
			return true
		}
		if g.Op != Or && !ok {
			return false
		}
	}
	return g.Op != Or
}

func (n Node) match(s Subject) bool {
	if n.Group != nil {
		return n.Group.Match(s)
	}
	if n.Rule != nil {
		return n.Rule.Match(s)
	}
	return true
}

// Match reports whether s satisfies the rule. A numeric field that cannot be read as a
// number, such as a price of "Not for Sale", never matches.
func (r *Rule) Match(s Subject) bool {
	if r.Type == Numeric {
		v, ok := s.Number(r.Field)
		if !ok {
			return false
		}
		return r.matchNumber(v)
	}
	return r.matchText(s.Text(r.Field))
}

func (r *Rule) matchNumber(v float64) bool {
	switch r.Operator {
	case OpGTE:
		return v >= r.Value
	case OpLTE:
		return v <= r.Value
	case OpGT:
		return v > r.Value
	case OpLT:
		return v < r.Value
	case OpEQ:
		return v == r.Value
	case OpBetween:
		hi := r.Value
		if r.Value2 != nil {
			hi = *r.Value2
		}
		return v >= math.Min(r.Value, hi) && v <= math.Max(r.Value, hi)
	default:
		return true
	}
}

func (r *Rule) matchText(val string) bool {
	fold := func(s string) string {
		if r.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}
	hay := fold(val)

	if r.List != nil {
		for _, item := range r.List {
			if fold(item) == hay {
				return true
			}
		}
		return false
	}

	needle := fold(r.Text)
	switch r.Operator {
	case OpEquals:
		return hay == needle
	case OpContains:
		return strings.Contains(hay, needle)
	case OpStartsWith:
		return strings.HasPrefix(hay, needle)
	case OpEndsWith:
		return strings.HasSuffix(hay, needle)
	case OpIn:
		// the field holds a comma-separated list, e.g. "D (C), DM"
		for _, part := range strings.Split(hay, ",") {
			if strings.TrimSpace(part) == needle {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Validate checks operators and required fields throughout the group
func (g *Group) Validate() error {
	if g == nil {
		return nil
	}
	if g.Op != "" && g.Op != And && g.Op != Or {
		return fmt.Errorf("%w: group op %q must be AND or OR", ErrInvalidRule, g.Op)
	}
	for _, n := range g.Rules {
		switch {
		case n.Group != nil:
			if err := n.Group.Validate(); err != nil {
				return err
			}
		case n.Rule != nil:
			if err := n.Rule.Validate(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: empty group member", ErrInvalidRule)
		}
	}
	return nil
}

// Validate checks the rule's type, field and operator
func (r *Rule) Validate() error {
	if r.Field == "" {
		return fmt.Errorf("%w: missing field", ErrInvalidRule)
	}
	switch r.Type {
	case Numeric:
		if !numericOps[r.Operator] {
			return fmt.Errorf("%w: unknown numeric operator %q", ErrInvalidRule, r.Operator)
		}
	case Text:
		if r.List == nil && !textOps[r.Operator] {
			return fmt.Errorf("%w: unknown string operator %q", ErrInvalidRule, r.Operator)
		}
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidRule, r.Type)
	}
	return nil
}

type ruleJSON struct {
	Type          RuleType        `json:"type"`
	Field         string          `json:"field"`
	Operator      string          `json:"operator"`
	Value         json.RawMessage `json:"value"`
	Value2        *float64        `json:"value2,omitempty"`
	CaseSensitive bool            `json:"caseSensitive,omitempty"`
}

// UnmarshalJSON reads {"type", "field", "operator", "value", "value2", "caseSensitive"}.
// A numeric value may also be given as price text like "5M"; a string value may be a list.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rule := Rule{
		Type:          raw.Type,
		Field:         raw.Field,
		Operator:      raw.Operator,
		Value2:        raw.Value2,
		CaseSensitive: raw.CaseSensitive,
	}

	switch raw.Type {
	case Numeric:
		v, err := decodeNumber(raw.Value)
		if err != nil {
			return fmt.Errorf("%w: field %s: %v", ErrInvalidRule, raw.Field, err)
		}
		rule.Value = v
	case Text:
		if len(raw.Value) > 0 && raw.Value[0] == '[' {
			if err := json.Unmarshal(raw.Value, &rule.List); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidRule, raw.Field, err)
			}
			if rule.List == nil {
				rule.List = []string{}
			}
		} else if len(raw.Value) > 0 {
			if err := json.Unmarshal(raw.Value, &rule.Text); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidRule, raw.Field, err)
			}
		}
	}

	*r = rule
	return nil
}

// MarshalJSON writes the shape UnmarshalJSON reads
func (r Rule) MarshalJSON() ([]byte, error) {
	out := ruleJSON{
		Type:          r.Type,
		Field:         r.Field,
		Operator:      r.Operator,
		Value2:        r.Value2,
		CaseSensitive: r.CaseSensitive,
	}
	var (
		value []byte
		err   error
	)
	switch {
	case r.Type == Numeric:
		value, err = json.Marshal(r.Value)
	case r.List != nil:
		value, err = json.Marshal(r.List)
	default:
		value, err = json.Marshal(r.Text)
	}
	if err != nil {
		return nil, err
	}
	out.Value = value
	return json.Marshal(out)
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.New("value must be a number")
	}
	return parseThreshold(s)
}

// parseThreshold reads a plain number or a money amount such as "5M"
func parseThreshold(s string) (float64, error) {
	if v, ok := parser.ParsePrice(s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("%q is not a number", s)
}

// UnmarshalJSON reads either a nested group ({"op", "rules"}) or a rule
func (n *Node) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, hasOp := keys["op"]
	_, hasRules := keys["rules"]
	if hasOp && hasRules {
		var g Group
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		*n = Node{Group: &g}
		return nil
	}

	var r Rule
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*n = Node{Rule: &r}
	return nil
}

// MarshalJSON writes whichever member is set
func (n Node) MarshalJSON() ([]byte, error) {
	if n.Group != nil {
		return json.Marshal(n.Group)
	}
	return json.Marshal(n.Rule)
}
