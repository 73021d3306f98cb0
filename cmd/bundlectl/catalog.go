package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jchantrell/modelbundle/internal/database"
	"github.com/jchantrell/modelbundle/internal/utils"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog <bundle>...",
	Short: "Record bundles and their files in the SQLite catalog",
	Long: `Catalog loads each bundle and records its files, sizes and content
fingerprints in the catalog database. A bundle recorded again under the same
tag replaces its previous record.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		db, err := database.NewDatabase(database.DefaultDatabaseOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening catalog: %w", err)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("creating catalog schema: %w", err)
		}

		recorder := database.NewRecorder(db, database.DefaultRecorderOptions())

		for _, arg := range args {
			r, err := openBundle(cmd, arg)
			if err != nil {
				return err
			}

			progress := utils.NewProgress(len(r.ListFiles()), progressEnabled())
			id, err := recorder.Record(ctx, r, database.BundleRecord{
				Tag:    r.Tag(),
				Source: r.Descriptor().String(),
				Size:   bundleSize(r),
			}, progress.Increment)
			progress.Finish()
			r.Close()
			if err != nil {
				return fmt.Errorf("recording %s: %w", arg, err)
			}

			slog.Info("Bundle recorded", "tag", r.Tag(), "id", id, "entries", progress.Count(), "database", db.Path())
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Try running: bundlectl query --bundles")
		return nil
	},
}

// bundleSize sums the extracted entry sizes
func bundleSize(r database.Source) int64 {
	var size int64
	for _, name := range r.ListFiles() {
		if data, err := r.GetFile(name); err == nil {
			size += int64(len(data))
		}
	}
	return size
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
