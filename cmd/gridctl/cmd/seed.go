package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all records with the demonstration dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := opts.client().Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
