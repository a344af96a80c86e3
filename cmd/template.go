package cmd

import (
	"fmt"
	"os"

	"github.com/Daskott/contactspro/server/csvimport"
	"github.com/spf13/cobra"
)

var outArg string

func init() {
	rootCmd.AddCommand(createTemplateCmd())
}

func createTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print the CSV template accepted by bulk uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outArg == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), csvimport.Template())
				return err
			}

			if err := os.WriteFile(outArg, []byte(csvimport.Template()), 0644); err != nil {
				return err
			}

			cmd.Printf("CSV template written to %s\n", outArg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outArg, "out", "o", "", "file to write the template to, instead of stdout")

	return cmd
}
