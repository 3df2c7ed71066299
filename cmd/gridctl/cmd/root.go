package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"revgrid/internal/cli"
	"revgrid/internal/client"
	"revgrid/internal/config"
	rlog "revgrid/internal/log"
)

type options struct {
	apiURL   string
	logLevel string
}

// NewRootCmd builds the gridctl command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	cli.LoadEnvFile()
	cfg := config.Load()
	opts := &options{apiURL: cfg.APIURL, logLevel: cfg.LogLevel}

	rootCmd := &cobra.Command{
		Use:   "gridctl",
		Short: "gridctl browses revenue data by location and branch",
		Long: `gridctl talks to the revgrid API. It can list, delete and reseed records,
or open an interactive grid with sorting, paging, totals and drill-down.
  `,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", opts.apiURL, "base URL of the revgrid API (env API_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "debug, info, warn or error (env LOG_LEVEL)")

	rootCmd.AddCommand(
		newListCmd(opts),
		newDeleteCmd(opts),
		newSeedCmd(opts),
		newBrowseCmd(opts),
	)
	return rootCmd
}

// Execute runs gridctl against os.Args.
func Execute() error {
	return NewRootCmd(os.Stdout).ExecuteContext(context.Background())
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL)
}

// logger writes to stderr so it never mixes with the grid on stdout.
func (o *options) logger() *rlog.Logger {
	lvl, _ := rlog.ParseLevel(o.logLevel)
	return rlog.New(rlog.Config{Level: lvl, Output: os.Stderr, Component: rlog.ComponentClient})
}
