package cmd

import (
	"github.com/spf13/cobra"

	"revgrid/internal/grid"
)

func newBrowseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive grid",
		Long: `Open the interactive grid. Type help at the prompt for commands.
Fetch errors are logged to stderr and the grid keeps its last data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := grid.NewController(opts.client(), opts.logger())
			return grid.Browse(cmd.Context(), c, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
