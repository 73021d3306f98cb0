package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/jchantrell/modelbundle/internal/database"
	"github.com/jchantrell/modelbundle/internal/utils"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Query the bundle catalog",
	Long: `Query lists catalogued bundles, the entries of one bundle, or runs an SQL
query against the catalog database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()

		listBundles, err := cmd.Flags().GetBool("bundles")
		if err != nil {
			return fmt.Errorf("failed to get bundles flag: %w", err)
		}
		entriesTag, err := cmd.Flags().GetString("entries")
		if err != nil {
			return fmt.Errorf("failed to get entries flag: %w", err)
		}

		slog.Debug("Query parameters",
			"database", cfg.Database,
			"bundles", listBundles,
			"entries", entriesTag)

		db, err := database.NewDatabase(database.DefaultDatabaseOptions(cfg.Database))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		catalogued, err := db.HasTable(ctx, "bundles")
		if err != nil {
			return err
		}
		if !catalogued {
			return fmt.Errorf("catalog %s is empty, record bundles with: bundlectl catalog <bundle>", cfg.Database)
		}

		// Handle --bundles flag
		if listBundles {
			bundles, err := db.Bundles(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tENTRIES\tSIZE\tRECORDED\tSOURCE")
			for _, b := range bundles {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", b.Tag, b.EntryCount, utils.Bytes(b.Size), b.RecordedAt, b.Source)
			}
			return tw.Flush()
		}

		// Handle --entries flag
		if entriesTag != "" {
			entries, err := db.Entries(ctx, entriesTag)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no catalogued bundle with tag %s", entriesTag)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tFINGERPRINT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, utils.Bytes(e.Size), e.Fingerprint)
			}
			return tw.Flush()
		}

		// Handle SQL query execution
		if len(args) > 0 {
			query := args[0]
			slog.Debug("Executing SQL query", "query", query)

			rows, err := db.Query(ctx, query)
			if err != nil {
				return fmt.Errorf("executing query: %w", err)
			}
			defer rows.Close()

			columns, err := rows.Columns()
			if err != nil {
				return fmt.Errorf("getting column names: %w", err)
			}

			fmt.Fprintln(out, strings.Join(columns, "\t"))
			separators := make([]string, len(columns))
			for i, col := range columns {
				separators[i] = strings.Repeat("-", len(col))
			}
			fmt.Fprintln(out, strings.Join(separators, "\t"))

			for rows.Next() {
				values := make([]interface{}, len(columns))
				valuePtrs := make([]interface{}, len(columns))
				for i := range values {
					valuePtrs[i] = &values[i]
				}

				if err := rows.Scan(valuePtrs...); err != nil {
					return fmt.Errorf("scanning row: %w", err)
				}

				cells := make([]string, len(values))
				for i, val := range values {
					switch v := val.(type) {
					case nil:
						cells[i] = "NULL"
					case []byte:
						cells[i] = string(v)
					default:
						cells[i] = fmt.Sprint(v)
					}
				}
				fmt.Fprintln(out, strings.Join(cells, "\t"))
			}

			if err := rows.Err(); err != nil {
				return fmt.Errorf("iterating rows: %w", err)
			}

			return nil
		}

		return fmt.Errorf("no query provided, use --bundles to list bundles or --entries <tag> to list a bundle's files")
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().Bool("bundles", false, "List catalogued bundles")
	queryCmd.Flags().String("entries", "", "List the files of the catalogued bundle with this tag")
}
