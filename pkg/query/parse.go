package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// amountText is a number or a money amount with an optional currency sign and k/m/b suffix
var amountText = regexp.MustCompile(`^[€£$]?\d+(\.\d+)?[kKmMbB]?$`)

const operatorChars = "<>=~^$@"

// Parse reads the compact form used by the -where flag and the where query parameter:
// clauses separated by ";", each "Field<op>Value".
//
//	Fin>=15          numeric comparison (>=, <=, >, <, =)
//	Value<=5M        money amounts are accepted on the right-hand side
//	Age=18..21       inclusive range
//	Club=Arsenal     text equality when the value is not a number
//	Name~son         contains
//	Name^A           starts with
//	Name$son         ends with
//	Position@ST      the comma-separated field contains the item
//
// The clauses are joined with op. An empty expression yields a nil group.
func Parse(expr string, op Op) (*Group, error) {
	if op == "" {
		op = And
	}
	var nodes []Node
	for _, clause := range strings.Split(expr, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		rule, err := parseClause(clause)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, Node{Rule: rule})
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	g := &Group{Op: op, Rules: nodes}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func parseClause(clause string) (*Rule, error) {
	i := strings.IndexAny(clause, operatorChars)
	if i <= 0 {
		return nil, fmt.Errorf("%w: %q has no field and operator", ErrInvalidRule, clause)
	}
	field := strings.TrimSpace(clause[:i])
	operator := clause[i : i+1]
	rest := clause[i+1:]
	if (operator == ">" || operator == "<") && strings.HasPrefix(rest, "=") {
		operator += "="
		rest = rest[1:]
	}
	value := strings.TrimSpace(rest)

	switch operator {
	case OpGTE, OpLTE, OpGT, OpLT:
		v, err := parseThreshold(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, field, err)
		}
		return &Rule{Type: Numeric, Field: field, Operator: operator, Value: v}, nil
	case OpEQ:
		if loText, hiText, ok := strings.Cut(value, ".."); ok {
			lo, err := parseThreshold(strings.TrimSpace(loText))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, field, err)
			}
			hi, err := parseThreshold(strings.TrimSpace(hiText))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, field, err)
			}
			return &Rule{Type: Numeric, Field: field, Operator: OpBetween, Value: lo, Value2: &hi}, nil
		}
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return &Rule{Type: Numeric, Field: field, Operator: OpEQ, Value: v}, nil
		}
		if amountText.MatchString(value) {
			if v, err := parseThreshold(value); err == nil {
				return &Rule{Type: Numeric, Field: field, Operator: OpEQ, Value: v}, nil
			}
		}
		return &Rule{Type: Text, Field: field, Operator: OpEquals, Text: value}, nil
	case "~":
		return &Rule{Type: Text, Field: field, Operator: OpContains, Text: value}, nil
	case "^":
		return &Rule{Type: Text, Field: field, Operator: OpStartsWith, Text: value}, nil
	case "$":
		return &Rule{Type: Text, Field: field, Operator: OpEndsWith, Text: value}, nil
	default: // "@"
		return &Rule{Type: Text, Field: field, Operator: OpIn, Text: value}, nil
	}
}

// ParseOp picks OR when any clause may match and AND otherwise
func ParseOp(matchAny bool) Op {
	if matchAny {
		return Or
	}
	return And
}
