package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"kodkariyer/ats-engine/internal/models"
)

const (
	summarySheet = "Summary"
	rankingSheet = "Ranking"
)

var rankingHeaders = []string{
	"Rank",
	"Application ID",
	"Final Score",
	"Rule Score",
	"Semantic Score",
	"Matching Skills",
	"Missing Required Skills",
	"Positive Factors",
	"Negative Factors",
	"Calculated At",
}

// ExportRanking writes a job's completed scores, best first, to an xlsx
// workbook and returns the path it saved to.
func ExportRanking(scores []models.ATSScore, jobID uuid.UUID, version string, outputPath string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(rankingSheet); err != nil {
		return "", fmt.Errorf("failed to create ranking sheet: %w", err)
	}

	if err := writeSummary(f, scores, jobID, version); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeRanking(f, scores); err != nil {
		return "", fmt.Errorf("failed to create ranking sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return outputPath, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeSummary(f *excelize.File, scores []models.ATSScore, jobID uuid.UUID, version string) error {
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][2]any{
		{"Job ID", jobID.String()},
		{"Algorithm Version", version},
		{"Generated", time.Now().Format("2006-01-02 15:04:05")},
		{"Scored Applications", len(scores)},
	}

	if len(scores) > 0 {
		total := 0
		strong := 0
		for _, s := range scores {
			total += s.FinalScore
			if s.FinalScore >= 80 {
				strong++
			}
		}
		rows = append(rows,
			[2]any{"Average Final Score", fmt.Sprintf("%.1f", float64(total)/float64(len(scores)))},
			[2]any{"Very Strong Matches (>= 80)", strong},
		)
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 40); err != nil {
		return err
	}

	for i, r := range rows {
		row := i + 1
		label := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue(summarySheet, label, r[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, label, label, labelStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r[1]); err != nil {
			return err
		}
	}

	return nil
}

func writeRanking(f *excelize.File, scores []models.ATSScore) error {
	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	for i, h := range rankingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(rankingSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(rankingHeaders), 1)
	if err := f.SetCellStyle(rankingSheet, "A1", last, style); err != nil {
		return err
	}
	if err := f.SetColWidth(rankingSheet, "B", "B", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(rankingSheet, "F", "I", 40); err != nil {
		return err
	}

	for i, s := range scores {
		b := s.Breakdown.Data()
		calculated := ""
		if s.CalculatedAt != nil {
			calculated = s.CalculatedAt.Format("2006-01-02 15:04:05")
		}

		values := []any{
			i + 1,
			s.ApplicationID.String(),
			s.FinalScore,
			s.RuleScore,
			s.SemanticScore,
			strings.Join(b.Skills.Matching, ", "),
			strings.Join(b.Skills.MissingRequired, ", "),
			strings.Join(b.PositiveFactors, "; "),
			strings.Join(b.NegativeFactors, "; "),
			calculated,
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(rankingSheet, cell, &values); err != nil {
			return err
		}
	}

	return nil
}
