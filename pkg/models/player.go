// Package models contains data structures for scouting football-management player exports
package models

// Identity column headers. Matched by exact, case-sensitive comparison.
const (
	ColumnName        = "Name"
	ColumnNationality = "Nationality"
	ColumnClub        = "Club"
	ColumnPosition    = "Position"
)

// Contract columns hold money text such as "€10M - €14.5M" rather than attribute scores
var PriceColumns = []string{"Value", "Transfer Value", "Wage"}

// IsPriceColumn reports whether header names a contract money column
func IsPriceColumn(header string) bool {
	for _, c := range PriceColumns {
		if c == header {
			return true
		}
	}
	return false
}

// MissingMarker is the placeholder the game writes into cells it has no value for
const MissingMarker = "-"

// RawAttributeMap maps an attribute short code (the column header) to its parsed value
type RawAttributeMap map[string]float64

// Get returns the value stored for key, or 0 when the key is absent
func (m RawAttributeMap) Get(key string) float64 {
	return m[key]
}

// CalculatedAttributes holds composite attributes derived from the raw map
type CalculatedAttributes struct {
	Speed     float64 `json:"speed"`
	WorkRate  float64 `json:"work_rate"`
	SetPieces float64 `json:"set_pieces"`
}

// RoleScore is a single role-fit result
type RoleScore struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Player is one scored row of an export
type Player struct {
	Name                 string               `json:"name"`
	Nationality          string               `json:"nationality"`
	Club                 string               `json:"club"`
	Position             string               `json:"position"`
	Attributes           RawAttributeMap      `json:"attributes"`
	CalculatedAttributes CalculatedAttributes `json:"calculated_attributes"`
	Prices               map[string]float64   `json:"prices,omitempty"`
	RoleScores           map[string]float64   `json:"role_scores"`
	BestRole             *RoleScore           `json:"best_role,omitempty"`
}

// ImportResult is the outcome of importing a single file
type ImportResult struct {
	Success     bool     `json:"success"`
	PlayerCount int      `json:"player_count"`
	Players     []Player `json:"players"`
	Error       *string  `json:"error"`
}

// NewImportResult builds a successful result for players
func NewImportResult(players []Player) ImportResult {
	return ImportResult{
		Success:     true,
		PlayerCount: len(players),
		Players:     players,
	}
}

// FailedImportResult builds a failed result carrying err's message
func FailedImportResult(err error) ImportResult {
	msg := err.Error()
	return ImportResult{
		Success: false,
		Players: []Player{},
		Error:   &msg,
	}
}
