package importer

import (
	"github.com/myusername/fm-scout/pkg/models"
	"github.com/myusername/fm-scout/pkg/parser"
	"github.com/myusername/fm-scout/pkg/roles"
	"github.com/myusername/fm-scout/pkg/scorer"
)

// BuildPlayers turns adapter rows into scored players, in row order. Rows without a usable
// name are skipped; the number skipped is returned alongside the players.
func BuildPlayers(table *parser.Table, cat *roles.Catalogue) ([]models.Player, int) {
	players := make([]models.Player, 0, len(table.Rows))
	skipped := 0

	for _, row := range table.Rows {
		player, ok := buildPlayer(table.Header, row, cat)
		if !ok {
			skipped++
			continue
		}
		players = append(players, player)
	}

	return players, skipped
}

func buildPlayer(header, row []string, cat *roles.Catalogue) (models.Player, bool) {
	var player models.Player
	attributes := make(models.RawAttributeMap, len(header))

	for i, column := range header {
		if i >= len(row) {
			break
		}
		value := row[i]

		switch column {
		case models.ColumnName:
			player.Name = value
		case models.ColumnNationality:
			player.Nationality = value
		case models.ColumnClub:
			player.Club = value
		case models.ColumnPosition:
			player.Position = value
		default:
			attributes[column] = parser.ParseAttributeValue(value)
			if models.IsPriceColumn(column) {
				if amount, ok := parser.ParsePrice(value); ok {
					if player.Prices == nil {
						player.Prices = make(map[string]float64, len(models.PriceColumns))
					}
					player.Prices[column] = amount
				}
			}
		}
	}

	if player.Name == "" || player.Name == models.MissingMarker {
		return models.Player{}, false
	}

	player.Attributes = attributes
	player.CalculatedAttributes = scorer.CalculateDerived(attributes)
	player.RoleScores = scorer.ScoreAll(attributes, cat)
	if best, ok := scorer.BestRole(player.RoleScores, cat); ok {
		player.BestRole = &best
	}

	return player, true
}
