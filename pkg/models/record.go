package models

import (
	"bytes"
	"encoding/json"
)

// ValueKind discriminates the contents of an AttributeValue
type ValueKind int

const (
	KindOpaque ValueKind = iota
	KindNumeric
	KindTextual
)

// AttributeValue is one field of an externally supplied player record.
// Numbers and strings feed the scorer; anything else is carried through untouched.
type AttributeValue struct {
	kind ValueKind
	num  float64
	text string
	raw  json.RawMessage
}

// NumberValue wraps a numeric field
func NumberValue(v float64) AttributeValue {
	return AttributeValue{kind: KindNumeric, num: v}
}

// TextValue wraps a textual field
func TextValue(s string) AttributeValue {
	return AttributeValue{kind: KindTextual, text: s}
}

// Kind reports which variant the value holds
func (v AttributeValue) Kind() ValueKind { return v.kind }

// Number returns the numeric payload; only meaningful for KindNumeric
func (v AttributeValue) Number() float64 { return v.num }

// Text returns the textual payload; only meaningful for KindTextual
func (v AttributeValue) Text() string { return v.text }

// Raw returns the undecoded JSON of an opaque value
func (v AttributeValue) Raw() json.RawMessage { return v.raw }

// UnmarshalJSON classifies a JSON value: strings are textual, numbers are numeric and
// everything else is kept raw
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*v = AttributeValue{kind: KindOpaque, raw: json.RawMessage("null")}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return err
		}
		*v = NumberValue(f)
	default:
		*v = AttributeValue{kind: KindOpaque, raw: append(json.RawMessage(nil), trimmed...)}
	}
	return nil
}

// MarshalJSON writes the value back in the form it was read
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindTextual:
		return json.Marshal(v.text)
	default:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	}
}

// PlayerRecord is an already-serialized player: arbitrary field name to value
type PlayerRecord map[string]AttributeValue

// ScoredRecord is a PlayerRecord augmented with role scores for a chosen subset of roles
type ScoredRecord struct {
	Fields     PlayerRecord
	RoleScores map[string]float64
	BestRole   *RoleScore
}

// MarshalJSON flattens the record fields and adds "roleScores" (and "bestRole" when set)
func (r ScoredRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	scores := r.RoleScores
	if scores == nil {
		scores = map[string]float64{}
	}
	out["roleScores"] = scores
	if r.BestRole != nil {
		out["bestRole"] = r.BestRole
	}
	return json.Marshal(out)
}

// RecordFromPlayer flattens a Player into the record shape used for re-scoring. Parsed
// prices replace the attribute reading of their column.
func RecordFromPlayer(p Player) PlayerRecord {
	rec := make(PlayerRecord, len(p.Attributes)+4)
	for k, v := range p.Attributes {
		rec[k] = NumberValue(v)
	}
	for k, v := range p.Prices {
		rec[k] = NumberValue(v)
	}
	rec[ColumnName] = TextValue(p.Name)
	rec[ColumnNationality] = TextValue(p.Nationality)
	rec[ColumnClub] = TextValue(p.Club)
	rec[ColumnPosition] = TextValue(p.Position)
	return rec
}
