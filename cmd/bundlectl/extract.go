package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jchantrell/modelbundle/internal/export"
	"github.com/jchantrell/modelbundle/internal/utils"
	"github.com/spf13/cobra"
)

var (
	extractOutput  string
	extractFlatten bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <bundle> [name]...",
	Short: "Unpack files from a bundle into a directory",
	Long: `Extract writes the named files, or every file when none are named, from a
bundle into the output directory. Nested paths are recreated unless --flatten
is given, in which case slashes in names become @.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		r, err := openBundle(cmd, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		outputDir := cfg.Output
		if cmd.Flags().Changed("output") {
			outputDir = extractOutput
		}

		names := args[1:]
		total := len(names)
		if total == 0 {
			total = len(r.ListFiles())
		}

		slog.Info("Extracting bundle", "tag", r.Tag(), "source", r.Descriptor().String(), "files", total, "output", outputDir)

		exporter := export.NewExporter(r, outputDir)
		exporter.SetFlatten(extractFlatten)

		var bytesWritten int64
		progress := utils.NewProgress(total, progressEnabled())
		written, err := exporter.ExportFiles(names, func(current, total int, name string) {
			if data, err := r.GetFile(name); err == nil {
				bytesWritten += int64(len(data))
			}
			progress.Increment(name)
		})
		progress.Finish()
		if err != nil {
			return fmt.Errorf("extracting %s: %w", args[0], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Files extracted: %s\n", utils.Number(int64(len(written))))
		fmt.Fprintf(cmd.OutOrStdout(), "Bytes written: %s\n", utils.Bytes(bytesWritten))
		fmt.Fprintf(cmd.OutOrStdout(), "Duration: %s\n", utils.Duration(time.Since(start)))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output directory (default from config)")
	extractCmd.Flags().BoolVar(&extractFlatten, "flatten", false, "write all files into the output directory without subdirectories")
}
