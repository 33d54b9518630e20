// Package export writes scored players to CSV, JSON and XLSX files
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/myusername/fm-scout/pkg/models"
	"github.com/myusername/fm-scout/pkg/roles"
	"github.com/myusername/fm-scout/pkg/scorer"
)

const sheetName = "Players"

// Format is an export file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the export format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// Header returns the column titles for an export over selected roles
func Header(selected []models.Role) []string {
	header := []string{models.ColumnName, models.ColumnNationality, models.ColumnClub, models.ColumnPosition}
	for _, role := range selected {
		header = append(header, role.Name)
	}
	return append(header, "Best Role", "Best Score")
}

// row holds one player's export cells; scores stay numeric so XLSX cells are numbers
type row struct {
	identity  [4]string
	scores    []float64
	bestRole  string
	bestScore *float64
}

// buildRow fills one row. The best role is picked among the exported roles only, so it
// always names one of the score columns.
func buildRow(p models.Player, selected []models.Role, subset *roles.Catalogue) row {
	r := row{
		identity: [4]string{p.Name, p.Nationality, p.Club, p.Position},
		scores:   make([]float64, len(selected)),
	}
	for i, role := range selected {
		r.scores[i] = p.RoleScores[role.Code]
	}
	if best, ok := scorer.BestRole(p.RoleScores, subset); ok {
		r.bestRole = best.Name
		r.bestScore = &best.Score
	}
	return r
}

// WriteCSV writes players with one score column per selected role, one decimal place
func WriteCSV(w io.Writer, players []models.Player, selected []models.Role) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(selected)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	subset := roles.New(selected)
	for _, p := range players {
		r := buildRow(p, selected, subset)
		record := append([]string{}, r.identity[:]...)
		for _, s := range r.scores {
			record = append(record, strconv.FormatFloat(s, 'f', 1, 64))
		}
		best := ""
		if r.bestScore != nil {
			best = strconv.FormatFloat(*r.bestScore, 'f', 1, 64)
		}
		record = append(record, r.bestRole, best)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write player data: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the full player records, indented
func WriteJSON(w io.Writer, players []models.Player) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(players); err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}
	return nil
}

// BuildWorkbook lays players out on a single sheet with a bold header row. The caller
// closes the returned file.
func BuildWorkbook(players []models.Player, selected []models.Role) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillWorkbook(f, players, selected); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fillWorkbook(f *excelize.File, players []models.Player, selected []models.Role) error {
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, h := range Header(selected) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, headerStyle); err != nil {
		return err
	}

	subset := roles.New(selected)
	for i, p := range players {
		r := buildRow(p, selected, subset)
		values := make([]interface{}, 0, 6+len(r.scores))
		for _, s := range r.identity {
			values = append(values, s)
		}
		for _, s := range r.scores {
			values = append(values, s)
		}
		values = append(values, r.bestRole)
		if r.bestScore != nil {
			values = append(values, *r.bestScore)
		} else {
			values = append(values, "")
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return nil
}

// WriteFile exports players to path, choosing the format from its extension
func WriteFile(path string, players []models.Player, selected []models.Role) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if format == FormatXLSX {
		wb, err := BuildWorkbook(players, selected)
		if err != nil {
			return err
		}
		defer wb.Close()
		if err := wb.SaveAs(path); err != nil {
			return fmt.Errorf("failed to save workbook: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if format == FormatJSON {
		err = WriteJSON(f, players)
	} else {
		err = WriteCSV(f, players, selected)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
