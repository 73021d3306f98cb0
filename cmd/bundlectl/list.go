package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/jchantrell/modelbundle/internal/utils"
	"github.com/spf13/cobra"
)

var listLong bool

var listCmd = &cobra.Command{
	Use:   "list <bundle>...",
	Short: "List the files inside bundles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		for i, arg := range args {
			r, err := openBundle(cmd, arg)
			if err != nil {
				return err
			}

			if len(args) > 1 {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s:\n", r.Descriptor())
			}

			if !listLong {
				for _, name := range r.ListFiles() {
					fmt.Fprintln(out, name)
				}
			} else {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tSIZE\tFINGERPRINT")
				for _, name := range r.ListFiles() {
					data, err := r.GetFile(name)
					if err != nil {
						r.Close()
						return err
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", name, utils.Bytes(int64(len(data))), utils.FormatFingerprint(utils.Fingerprint(data)))
				}
				tw.Flush()
			}

			if err := r.Close(); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show entry sizes and fingerprints")
}
