package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getOutput string

var getCmd = &cobra.Command{
	Use:   "get <bundle> <name>",
	Short: "Write one file from a bundle to stdout or a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openBundle(cmd, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		data, err := r.GetFile(args[1])
		if err != nil {
			return err
		}

		if getOutput == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		if err := os.WriteFile(getOutput, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", getOutput, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "write to this file instead of stdout")
}
