package query

import (
	"strconv"
	"strings"

	"github.com/myusername/fm-scout/pkg/models"
	"github.com/myusername/fm-scout/pkg/parser"
	"github.com/myusername/fm-scout/pkg/scorer"
)

// BestScoreField reads the score of the player's best role
const BestScoreField = "BestScore"

// BestRoleField reads the code of the player's best role
const BestRoleField = "BestRole"

// Subject is anything rules can be evaluated against
type Subject interface {
	// Number returns the numeric reading of field. ok is false when the field holds a
	// value that is not a number, such as a price of "Not for Sale".
	Number(field string) (value float64, ok bool)
	// Text returns the text reading of field, or "" when absent
	Text(field string) string
}

// derivedField maps "Speed", "work_rate", "Set Pieces" and similar spellings to a composite
func derivedField(field string, calc models.CalculatedAttributes) (float64, bool) {
	key := strings.NewReplacer(" ", "", "_", "").Replace(strings.ToLower(field))
	switch key {
	case "speed":
		return calc.Speed, true
	case "workrate":
		return calc.WorkRate, true
	case "setpieces":
		return calc.SetPieces, true
	}
	return 0, false
}

type playerSubject struct {
	p *models.Player
}

// PlayerSubject evaluates rules against an imported player
func PlayerSubject(p *models.Player) Subject {
	return playerSubject{p: p}
}

func (s playerSubject) Number(field string) (float64, bool) {
	p := s.p
	if v, ok := derivedField(field, p.CalculatedAttributes); ok {
		return v, true
	}
	if models.IsPriceColumn(field) {
		v, ok := p.Prices[field]
		return v, ok
	}
	if v, ok := p.Attributes[field]; ok {
		return v, true
	}
	if v, ok := p.RoleScores[field]; ok {
		return v, true
	}
	if field == BestScoreField {
		if p.BestRole == nil {
			return 0, false
		}
		return p.BestRole.Score, true
	}
	return 0, true
}

func (s playerSubject) Text(field string) string {
	p := s.p
	switch field {
	case models.ColumnName:
		return p.Name
	case models.ColumnNationality:
		return p.Nationality
	case models.ColumnClub:
		return p.Club
	case models.ColumnPosition:
		return p.Position
	case BestRoleField:
		if p.BestRole != nil {
			return p.BestRole.Code
		}
		return ""
	}
	if v, ok := p.Attributes[field]; ok {
		return formatNumber(v)
	}
	return ""
}

type recordSubject struct {
	rec   *models.ScoredRecord
	attrs models.RawAttributeMap
}

// RecordSubject evaluates rules against a re-scored record
func RecordSubject(rec *models.ScoredRecord) Subject {
	return &recordSubject{rec: rec}
}

func (s *recordSubject) attributes() models.RawAttributeMap {
	if s.attrs == nil {
		s.attrs = scorer.RecordAttributes(s.rec.Fields)
	}
	return s.attrs
}

func (s *recordSubject) Number(field string) (float64, bool) {
	if _, ok := derivedField(field, models.CalculatedAttributes{}); ok {
		v, _ := derivedField(field, scorer.CalculateDerived(s.attributes()))
		return v, true
	}
	if models.IsPriceColumn(field) {
		value, ok := s.rec.Fields[field]
		if !ok {
			return 0, false
		}
		switch value.Kind() {
		case models.KindNumeric:
			return value.Number(), true
		case models.KindTextual:
			return parser.ParsePrice(value.Text())
		default:
			return 0, false
		}
	}
	if v, ok := s.attributes()[field]; ok {
		return v, true
	}
	if v, ok := s.rec.RoleScores[field]; ok {
		return v, true
	}
	if field == BestScoreField {
		if s.rec.BestRole == nil {
			return 0, false
		}
		return s.rec.BestRole.Score, true
	}
	if value, ok := s.rec.Fields[field]; ok && value.Kind() == models.KindOpaque {
		return 0, false
	}
	return 0, true
}

func (s *recordSubject) Text(field string) string {
	if field == BestRoleField && s.rec.BestRole != nil {
		return s.rec.BestRole.Code
	}
	value, ok := s.rec.Fields[field]
	if !ok {
		return ""
	}
	switch value.Kind() {
	case models.KindTextual:
		return value.Text()
	case models.KindNumeric:
		return formatNumber(value.Number())
	default:
		return ""
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FilterPlayers returns the players matching g, in their original order
func FilterPlayers(players []models.Player, g *Group) []models.Player {
	if g == nil || len(g.Rules) == 0 {
		return players
	}
	out := make([]models.Player, 0, len(players))
	for i := range players {
		if g.Match(PlayerSubject(&players[i])) {
			out = append(out, players[i])
		}
	}
	return out
}

// FilterRecords returns the records matching g, in their original order
func FilterRecords(records []models.ScoredRecord, g *Group) []models.ScoredRecord {
	if g == nil || len(g.Rules) == 0 {
		return records
	}
	out := make([]models.ScoredRecord, 0, len(records))
	for i := range records {
		if g.Match(RecordSubject(&records[i])) {
			out = append(out, records[i])
		}
	}
	return out
}
