package cli

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"kodkariyer/ats-engine/internal/output"
	"kodkariyer/ats-engine/internal/services"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var errAborted = errors.New("recalculation aborted")

var recalculateCmd = &cobra.Command{
	Use:   "recalculate <job-id>",
	Short: "Rescore every application of a job",
	Long: `Rescore every application of a job in sequential batches.
Existing scores of the same algorithm version are overwritten.

Examples:
  atsctl recalculate 9a1e...
  atsctl recalculate 9a1e... --batch-size 20 --version 2.0.0 -y`,
	Args: cobra.ExactArgs(1),
	RunE: runRecalculate,
}

var (
	recalcBatchSize int
	recalcVersion   string
	recalcYes       bool
)

func init() {
	rootCmd.AddCommand(recalculateCmd)

	recalculateCmd.Flags().IntVar(&recalcBatchSize, "batch-size", 0, "Applications per batch (default: SCORING_BATCH_SIZE)")
	recalculateCmd.Flags().StringVar(&recalcVersion, "version", "", "Algorithm version (default: active version)")
	recalculateCmd.Flags().BoolVarP(&recalcYes, "yes", "y", false, "Do not ask for confirmation")
}

func runRecalculate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	jobID, err := parseID("job", args[0])
	if err != nil {
		return err
	}
	if recalcBatchSize < 0 {
		return fmt.Errorf("batch size must not be negative")
	}

	c, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	version := c.ATS.ResolveVersion(ctx, recalcVersion)

	if !recalcYes {
		if err := confirm(fmt.Sprintf("Recalculate all scores of job %s (version %s)?", jobID, version)); err != nil {
			return err
		}
	}

	batchSize := recalcBatchSize
	if batchSize == 0 {
		batchSize = c.Config.Scoring.BatchSize
	}

	result, err := c.Batch.RecalculateForJob(ctx, jobID, services.RecalculateOptions{
		AlgorithmVersion: version,
		BatchSize:        batchSize,
	})
	if err != nil {
		return err
	}

	return output.Output(outputFmt, &output.Recalculation{JobID: jobID.String(), Result: result})
}

func confirm(label string) error {
	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return err
	}
	if selected != PromptYes {
		return errAborted
	}
	return nil
}
