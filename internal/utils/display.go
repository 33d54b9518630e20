// Package utils provides terminal display helpers for the fm-scout CLI
package utils

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/myusername/fm-scout/pkg/models"
)

// RankByRole returns players sorted by their score for roleCode, highest first.
// Equal scores keep import order.
func RankByRole(players []models.Player, roleCode string) []models.Player {
	ranked := make([]models.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RoleScores[roleCode] > ranked[j].RoleScores[roleCode]
	})
	return ranked
}

// DisplayRoleRanking prints the top limit players for a role. limit <= 0 prints everyone.
func DisplayRoleRanking(w io.Writer, players []models.Player, role models.Role, limit int) {
	ranked := RankByRole(players, role.Code)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	fmt.Fprintf(w, "\n=========== %s (%s) ===========\n", strings.ToUpper(role.Name), role.Code)
	fmt.Fprintf(w, "%-4s | %-26s | %-18s | %-22s | %-14s | %-6s | %-6s | %-6s | %-6s\n",
		"#", "Player", "Club", "Position", "Nationality", "Score", "Speed", "Work", "SetP")
	fmt.Fprintf(w, "%-4s | %-26s | %-18s | %-22s | %-14s | %-6s | %-6s | %-6s | %-6s\n",
		strings.Repeat("-", 4), strings.Repeat("-", 26), strings.Repeat("-", 18),
		strings.Repeat("-", 22), strings.Repeat("-", 14), strings.Repeat("-", 6),
		strings.Repeat("-", 6), strings.Repeat("-", 6), strings.Repeat("-", 6))

	for i, p := range ranked {
		fmt.Fprintf(w, "%-4d | %-26s | %-18s | %-22s | %-14s | %6.1f | %6.1f | %6.1f | %6.1f\n",
			i+1, truncate(p.Name, 26), truncate(p.Club, 18), truncate(p.Position, 22), truncate(p.Nationality, 14),
			p.RoleScores[role.Code], p.CalculatedAttributes.Speed, p.CalculatedAttributes.WorkRate,
			p.CalculatedAttributes.SetPieces)
	}

	fmt.Fprintln(w, strings.Repeat("=", 78))
}

// DisplayRoles prints the catalogue as code and name columns
func DisplayRoles(w io.Writer, list []models.Role) {
	fmt.Fprintf(w, "%-6s | %s\n", "Code", "Role")
	fmt.Fprintf(w, "%-6s | %s\n", strings.Repeat("-", 6), strings.Repeat("-", 40))
	for _, role := range list {
		fmt.Fprintf(w, "%-6s | %s\n", role.Code, role.Name)
	}
}

// DisplayBestRoles prints each player's best role, in import order
func DisplayBestRoles(w io.Writer, players []models.Player) {
	fmt.Fprintf(w, "%-26s | %-22s | %-36s | %-6s\n", "Player", "Position", "Best Role", "Score")
	fmt.Fprintf(w, "%-26s | %-22s | %-36s | %-6s\n",
		strings.Repeat("-", 26), strings.Repeat("-", 22), strings.Repeat("-", 36), strings.Repeat("-", 6))
	for _, p := range players {
		name, score := "", 0.0
		if p.BestRole != nil {
			name, score = p.BestRole.Name, p.BestRole.Score
		}
		fmt.Fprintf(w, "%-26s | %-22s | %-36s | %6.1f\n", truncate(p.Name, 26), truncate(p.Position, 22), truncate(name, 36), score)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
