package cli

import (
	"github.com/spf13/cobra"

	"kodkariyer/ats-engine/internal/models"
	"kodkariyer/ats-engine/internal/output"
)

var rankingCmd = &cobra.Command{
	Use:   "ranking <job-id>",
	Short: "List a job's scored applications, best first",
	Args:  cobra.ExactArgs(1),
	RunE:  runRanking,
}

var rankingVersion string

func init() {
	rootCmd.AddCommand(rankingCmd)

	rankingCmd.Flags().StringVar(&rankingVersion, "version", "", "Algorithm version (default: active version)")
}

func runRanking(cmd *cobra.Command, args []string) error {
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

	version := c.ATS.ResolveVersion(ctx, rankingVersion)
	scores, err := c.ATS.JobRanking(ctx, jobID, version)
	if err != nil {
		return err
	}

	if outputFmt == output.FormatJSON {
		resp := make([]models.ScoreResponse, 0, len(scores))
		for i := range scores {
			resp = append(resp, models.NewScoreResponse(&scores[i]))
		}
		return output.JSON(resp)
	}

	return output.Output(outputFmt, &output.Ranking{JobID: jobID.String(), Version: version, Scores: scores})
}
