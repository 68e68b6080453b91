package cli

import (
	"github.com/spf13/cobra"

	"kodkariyer/ats-engine/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the pgvector extension and the engine's tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		return config.Migrate(c.DB, c.Log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
