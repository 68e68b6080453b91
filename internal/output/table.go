package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/services"
)

// Ranking is a job's completed scores, best first.
type Ranking struct {
	JobID   string
	Version string
	Scores  []models.ATSScore
}

// Recalculation is the outcome of a job-wide rescore.
type Recalculation struct {
	JobID  string
	Result *services.RecalculateResult
}

func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case *models.ATSScore:
		return scoreDetail(w, v)
	case *Ranking:
		return rankingTable(w, v)
	case *Recalculation:
		return recalculationTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func scoreDetail(w io.Writer, s *models.ATSScore) error {
	fmt.Fprintf(w, "Application: %s\n", s.ApplicationID)
	fmt.Fprintf(w, "Version:     %s\n", s.AlgorithmVersion)
	fmt.Fprintf(w, "Status:      %s\n", s.Status)

	if s.Status != models.StatusCompleted {
		if s.ErrorMessage != nil {
			fmt.Fprintf(w, "Error:       %s\n", *s.ErrorMessage)
		}
		return nil
	}

	fmt.Fprintf(w, "Final:       %d (%s)\n", s.FinalScore, services.MatchReason(s.FinalScore))
	fmt.Fprintln(w)

	b := s.Breakdown.Data()
	table := tablewriter.NewWriter(w)
	table.Header("Component", "Score", "Weight", "Weighted")
	rows := []struct {
		name string
		c    models.ComponentScore
	}{
		{"skill", b.Components.Skill},
		{"experience", b.Components.Experience},
		{"education", b.Components.Education},
		{"optional bonus", b.Components.OptionalBonus},
	}
	for _, r := range rows {
		if err := table.Append(r.name, r.c.Score, fmt.Sprintf("%.2f", r.c.Weight), fmt.Sprintf("%.1f", r.c.Weighted)); err != nil {
			return err
		}
	}
	if err := table.Append("rule", s.RuleScore, fmt.Sprintf("%.2f", b.RuleWeight), ""); err != nil {
		return err
	}
	if err := table.Append("semantic", s.SemanticScore, fmt.Sprintf("%.2f", b.SemanticWeight), string(b.Semantic.Source)); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(b.Skills.Matching) > 0 {
		fmt.Fprintf(w, "\nMatching:    %s\n", strings.Join(b.Skills.Matching, ", "))
	}
	if len(b.Skills.MissingRequired) > 0 {
		fmt.Fprintf(w, "Missing:     %s\n", strings.Join(b.Skills.MissingRequired, ", "))
	}
	for _, f := range b.PositiveFactors {
		fmt.Fprintf(w, "  + %s\n", f)
	}
	for _, f := range b.NegativeFactors {
		fmt.Fprintf(w, "  - %s\n", f)
	}

	return nil
}

func rankingTable(w io.Writer, r *Ranking) error {
	if len(r.Scores) == 0 {
		fmt.Fprintf(w, "No completed scores for job %s (version %s).\n", r.JobID, r.Version)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Application", "Final", "Rule", "Semantic", "Reason")
	for i, s := range r.Scores {
		if err := table.Append(i+1, s.ApplicationID.String(), s.FinalScore, s.RuleScore, s.SemanticScore, services.MatchReason(s.FinalScore)); err != nil {
			return err
		}
	}
	return table.Render()
}

func recalculationTable(w io.Writer, r *Recalculation) error {
	fmt.Fprintf(w, "Job %s: %d processed, %d failed\n", r.JobID, len(r.Result.Processed), len(r.Result.Errors))

	if len(r.Result.Errors) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Application", "Error")
	for _, e := range r.Result.Errors {
		if err := table.Append(e.ID.String(), e.Error); err != nil {
			return err
		}
	}
	return table.Render()
}
