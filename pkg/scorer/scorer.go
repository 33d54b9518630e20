package scorer

import (
	"encoding/json"
	"math"

	"github.com/myusername/fm-scout/pkg/models"
	"github.com/myusername/fm-scout/pkg/parser"
	"github.com/myusername/fm-scout/pkg/roles"
)

// attributeCeiling is the top of the game's attribute scale
const attributeCeiling = 20.0

// ScoreRole returns how well attrs fit role on a 0-100 scale.
//
// Each weighted attribute is divided by 20 and capped at 1 before weighting. There is no
// floor: a negative attribute contributes a negative amount and can pull the score below 0.
// A role with no positive weights scores 0.
func ScoreRole(attrs models.RawAttributeMap, role models.Role) float64 {
	var total, weightSum float64
	for i, slot := range models.AttributeSlots {
		weight := role.Weights[i]
		if weight <= 0 {
			continue
		}
		normalized := math.Min(attrs.Get(slot)/attributeCeiling, 1)
		total += normalized * float64(weight)
		weightSum += float64(weight)
	}

	if weightSum == 0 {
		return 0
	}
	return total / weightSum * 100
}

// ScoreRoles scores attrs against each role, keyed by role code
func ScoreRoles(attrs models.RawAttributeMap, list []models.Role) map[string]float64 {
	scores := make(map[string]float64, len(list))
	for _, role := range list {
		scores[role.Code] = ScoreRole(attrs, role)
	}
	return scores
}

// ScoreAll scores attrs against every role in the catalogue
func ScoreAll(attrs models.RawAttributeMap, cat *roles.Catalogue) map[string]float64 {
	scores := make(map[string]float64, cat.Len())
	cat.Each(func(role models.Role) {
		scores[role.Code] = ScoreRole(attrs, role)
	})
	return scores
}

// BestRole picks the highest score among the catalogue roles present in scores.
// Ties keep the role that comes first in the catalogue.
func BestRole(scores map[string]float64, cat *roles.Catalogue) (models.RoleScore, bool) {
	var best models.RoleScore
	found := false
	cat.Each(func(role models.Role) {
		score, ok := scores[role.Code]
		if !ok {
			return
		}
		if !found || score > best.Score {
			best = models.RoleScore{Code: role.Code, Name: role.Name, Score: score}
			found = true
		}
	})
	return best, found
}

// RecordAttributes converts an externally supplied record into a raw attribute map.
// Numeric fields are taken as-is and textual fields go through ParseAttributeValue; opaque
// fields are ignored, except a nested "attributes" object whose entries override top-level keys.
func RecordAttributes(rec models.PlayerRecord) models.RawAttributeMap {
	attrs := make(models.RawAttributeMap, len(rec))
	for key, value := range rec {
		if v, ok := valueOf(value); ok {
			attrs[key] = v
		}
	}

	if nested, ok := rec[nestedAttributesKey]; ok && nested.Kind() == models.KindOpaque {
		var inner models.PlayerRecord
		if err := json.Unmarshal(nested.Raw(), &inner); err == nil {
			delete(attrs, nestedAttributesKey)
			for key, value := range inner {
				if v, ok := valueOf(value); ok {
					attrs[key] = v
				}
			}
		}
	}

	return attrs
}

const nestedAttributesKey = "attributes"

func valueOf(v models.AttributeValue) (float64, bool) {
	switch v.Kind() {
	case models.KindNumeric:
		return v.Number(), true
	case models.KindTextual:
		return parser.ParseAttributeValue(v.Text()), true
	default:
		return 0, false
	}
}

// ScoreSelected re-scores already-serialized players against the requested role codes.
// Unknown codes are omitted from the result rather than reported.
func ScoreSelected(records []models.PlayerRecord, codes []string, cat *roles.Catalogue) []models.ScoredRecord {
	selected := cat.Select(codes)
	subset := roles.New(selected)

	out := make([]models.ScoredRecord, 0, len(records))
	for _, rec := range records {
		scores := ScoreRoles(RecordAttributes(rec), selected)
		scored := models.ScoredRecord{Fields: rec, RoleScores: scores}
		if best, ok := BestRole(scores, subset); ok {
			scored.BestRole = &best
		}
		out = append(out, scored)
	}
	return out
}
