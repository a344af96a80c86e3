package cmd

import (
	"github.com/Daskott/contactspro/server"
	"github.com/Daskott/contactspro/server/models"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createRepairCmd())
}

func createRepairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Remove contact references to deleted groups",
		Long: `Remove contact references to groups that no longer exist, e.g. after a group
delete was interrupted. The server also runs this on start up & on a schedule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configValues, err := serverConfig()
			if err != nil {
				return err
			}

			if _, err := server.OpenStore(configValues, isDevEnv); err != nil {
				return err
			}
			defer models.Close()

			removed, err := models.RepairGroupReferences(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Removed %v stale group reference(s)\n", removed)
			return nil
		},
	}
}
