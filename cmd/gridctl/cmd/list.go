package cmd

import (
	"github.com/spf13/cobra"

	"revgrid/internal/core"
	"revgrid/internal/grid"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		view     string
		location string
		sortKey  string
		desc     bool
		page     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the grid",
		Example: `  gridctl list
  gridctl list --view branch --location Colorado
  gridctl list --sort potentialRevenue --desc --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := opts.client().GetData(cmd.Context(), core.ParseView(view), location)
			if err != nil {
				return err
			}

			m := grid.NewModel()
			m.SetView(core.ParseView(view))
			m.SetRecords(recs)
			if sortKey != "" {
				if err := m.RequestSort(grid.SortKey(sortKey)); err != nil {
					return err
				}
				if desc {
					m.RequestSort(grid.SortKey(sortKey))
				}
			}
			if err := m.GoToPage(page); err != nil {
				return err
			}
			return grid.Render(cmd.OutOrStdout(), m)
		},
	}

	cmd.Flags().StringVar(&view, "view", "location", "location or branch")
	cmd.Flags().StringVar(&location, "location", "", "only branches under this location")
	cmd.Flags().StringVar(&sortKey, "sort", "", "column to sort by, e.g. potentialRevenue")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}
