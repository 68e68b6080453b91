package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kodkariyer/ats-engine/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <job-id>",
	Short: "Export a job's ranking to an Excel workbook",
	Long: `Export the completed scores of a job's applications, best first,
to an .xlsx workbook with a summary sheet and a ranking sheet.

Examples:
  atsctl export 9a1e...
  atsctl export 9a1e... --out reports/backend.xlsx --version 2.0.0`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportOut     string
	exportVersion string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: ranking_<job-id>.xlsx)")
	exportCmd.Flags().StringVar(&exportVersion, "version", "", "Algorithm version (default: active version)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	jobID, err := parseID("job", args[0])
	if err != nil {
		return err
	}

	c, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	version := c.ATS.ResolveVersion(ctx, exportVersion)
	scores, err := c.ATS.JobRanking(ctx, jobID, version)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = fmt.Sprintf("ranking_%s.xlsx", jobID)
	}

	path, err := export.ExportRanking(scores, jobID, version, out)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d scores to %s\n", len(scores), path)
	return nil
}
