package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tagdex/tagdex/errors"
)

var importLegacy bool

// ExportCmd represents the export command
var ExportCmd = &cobra.Command{
	Use:   "export USER FILE",
	Short: "Write a user's records to a portable archive",
	Long: `export — Archive a user's entities, tags and usage counters

The archive is a gzip-compressed snapshot that import restores without
disturbing records added since.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

// ImportCmd represents the import command
var ImportCmd = &cobra.Command{
	Use:   "import USER FILE",
	Short: "Load an archive into a user's records",
	Long: `import — Restore an archive for a user

Records already present are left untouched, so importing the same archive
twice is safe. With --legacy the file is read in the third-party
exporter's plain-JSON format instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	ImportCmd.Flags().BoolVar(&importLegacy, "legacy", false, "Read the third-party exporter's plain-JSON format")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	archive, err := s.Export(context.Background(), args[0])
	if err != nil {
		return errors.Wrap(err, "export failed")
	}

	if err := os.WriteFile(args[1], archive, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", args[1])
	}

	fmt.Printf("Wrote %d bytes to %s\n", len(archive), args[1])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	payload, err := os.ReadFile(args[1])
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", args[1])
	}

	s, database, err := openStore()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	if importLegacy {
		err = s.ImportLegacy(ctx, args[0], payload)
	} else {
		err = s.Import(ctx, args[0], payload)
	}
	if err != nil {
		return errors.Wrap(err, "import failed")
	}

	fmt.Printf("Imported %s for %s\n", args[1], args[0])
	return nil
}
