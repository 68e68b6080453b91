package cli

import (
	"github.com/spf13/cobra"

	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/output"
	"kodkariyer/ats-engine/internal/services"
)

var scoreCmd = &cobra.Command{
	Use:   "score <application-id>",
	Short: "Compute the ATS score of an application",
	Long: `Compute the ATS score of an application. A completed score for
the same algorithm version is returned as is unless --force is set.

Examples:
  atsctl score 3f0c...
  atsctl score 3f0c... --force --version 2.0.0
  atsctl score 3f0c... -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var showCmd = &cobra.Command{
	Use:   "show <application-id>",
	Short: "Show the stored score of an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	scoreForce   bool
	scoreVersion string
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(showCmd)

	scoreCmd.Flags().BoolVarP(&scoreForce, "force", "f", false, "Recompute even if a completed score exists")
	scoreCmd.Flags().StringVar(&scoreVersion, "version", "", "Algorithm version (default: active version)")
	showCmd.Flags().StringVar(&scoreVersion, "version", "", "Algorithm version (default: active version)")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID("application", args[0])
	if err != nil {
		return err
	}

	c, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	score, err := c.ATS.ComputeScore(ctx, id, services.ComputeOptions{
		ForceRecalculate: scoreForce,
		AlgorithmVersion: scoreVersion,
	})
	if err != nil {
		return err
	}

	return printScore(score)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID("application", args[0])
	if err != nil {
		return err
	}

	c, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	score, err := c.ATS.GetScore(ctx, id, scoreVersion)
	if err != nil {
		return err
	}

	return printScore(score)
}

func printScore(score *models.ATSScore) error {
	if outputFmt == output.FormatJSON {
		return output.JSON(models.NewScoreResponse(score))
	}
	return output.Output(outputFmt, score)
}
