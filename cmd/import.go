package cmd

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/Daskott/contactspro/colors"
	"github.com/Daskott/contactspro/server"
	"github.com/Daskott/contactspro/server/csvimport"
	"github.com/Daskott/contactspro/server/ingest"
	"github.com/Daskott/contactspro/server/models"
	"github.com/spf13/cobra"
)

var dryRunArg bool

func init() {
	rootCmd.AddCommand(createImportCmd())
}

func createImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk load contacts from a CSV file",
		Long: `Bulk load up to 500 contacts from a CSV file into the contactspro store.

Rows that fail validation, or reuse a mobile number, are reported and skipped.
Use --dry-run to check a file without saving anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&dryRunArg, "dry-run", false, "validate the file without saving any contacts")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string) error {
	rows, err := readContactsFile(filePath)
	if err != nil {
		return err
	}

	var (
		store       ingest.ContactStore = &dryRunStore{mobiles: map[string]bool{}}
		concurrency                     = 1
	)

	if !dryRunArg {
		configValues, err := serverConfig()
		if err != nil {
			return err
		}

		config, err := server.OpenStore(configValues, isDevEnv)
		if err != nil {
			return err
		}
		defer models.Close()

		store = models.DBContactStore{}
		concurrency = config.ContactsPro.Ingest.Concurrency
	}

	report, err := ingest.NewIngestor(store, concurrency).Ingest(cmd.Context(), rows)
	if err != nil {
		return formattedError("%v", err)
	}

	printReport(cmd, report)
	return nil
}

func readContactsFile(filePath string) ([]ingest.CandidateRow, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	result, err := csvimport.DecodeFile(filepath.Base(filePath), info.Size(), file)
	if err != nil {
		return nil, formattedError("%v", err)
	}

	return result.Uploadable(), nil
}

func printReport(cmd *cobra.Command, report *ingest.Report) {
	for _, row := range report.ErrorList {
		cmd.Printf("%s Row %v (%s): %s\n", warningLabel, row.Row, row.Name, row.Error)
	}

	if dryRunArg {
		cmd.Printf("%v of %v contacts are valid\n", colors.Green(report.Uploaded), report.Total)
		return
	}

	cmd.Printf("Imported %v of %v contacts\n", colors.Green(report.Uploaded), report.Total)
}

// dryRunStore only remembers mobiles, so duplicates within a file are still reported
type dryRunStore struct {
	mu      sync.Mutex
	mobiles map[string]bool
}

func (s *dryRunStore) CreateContact(ctx context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mobiles[contact.Mobile1] {
		return models.ErrDuplicateMobile
	}
	s.mobiles[contact.Mobile1] = true

	return nil
}
