package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jchantrell/modelbundle/internal/bundle"
	"github.com/jchantrell/modelbundle/internal/config"
	"github.com/jchantrell/modelbundle/internal/external"
	"github.com/jchantrell/modelbundle/internal/resource"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	cfgFile string

	resourceDirs []string
	logLevel     string
	logFormat    string
	noProgress   bool
)

var rootCmd = &cobra.Command{
	Use:   "bundlectl",
	Short: "Inspect and unpack model asset bundles",
	Long: `bundlectl loads model asset bundles (zip archives, optionally wrapped in
an Oodle block container) and gives access to the files inside them.

Bundles given by relative path are searched in the configured resource
directories, then $MODELBUNDLE_RESOURCE_DIR, the working directory and
~/.modelbundle/assets. Use "-" to read a bundle from stdin.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("resource-dir") {
			cfg.ResourceDirs = resourceDirs
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		var level slog.Level
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})
		} else {
			handler = tint.NewHandler(os.Stderr, &tint.Options{
				Level: level,
			})
		}
		slog.SetDefault(slog.New(handler))

		slog.Debug("Configuration",
			"resource_dirs", cfg.ResourceDirs,
			"database", cfg.Database,
			"output", cfg.Output,
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat)

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is modelbundle.yaml in home or pwd)")
	rootCmd.PersistentFlags().StringSliceVar(&resourceDirs, "resource-dir", []string{}, "directories searched for relative bundle paths")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bar")
}

// locator searches the configured directories before the defaults
func locator() resource.Locator {
	dirs := append([]string{}, cfg.ResourceDirs...)
	dirs = append(dirs, resource.DefaultSearchPath().Dirs()...)
	return resource.NewSearchPath(dirs...)
}

// bundleTag derives a tag from a bundle argument: its file name without extension
func bundleTag(arg string) string {
	if arg == "-" {
		return "stdin"
	}
	base := filepath.Base(arg)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// openBundle loads the bundle named by a command argument
func openBundle(cmd *cobra.Command, arg string) (*bundle.Resources, error) {
	var descriptor external.Descriptor = external.FilePath{Path: arg}
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading bundle from stdin: %w", err)
		}
		descriptor = external.FileContent{Data: data}
	}

	r, err := bundle.Create(bundleTag(arg), descriptor, bundle.WithLocator(locator()))
	if err != nil {
		return nil, fmt.Errorf("opening bundle %s: %w", arg, err)
	}
	return r, nil
}

func progressEnabled() bool {
	return !(noProgress || cfg.LogFormat == "json" || cfg.LogLevel == "debug")
}
