package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/rezai-admin/internal/metrics"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
	"github.com/felixgeelhaar/rezai-admin/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive admin console",
	Long: `Start the interactive admin console.

The console shows the login screen until a session exists, then the
dashboard, users, recipes, questions and answers views. Logs are written to
~/.rezai-admin/logs/rezai-admin.log while it runs.

With --metrics-addr, Prometheus metrics for API calls, the cache and icon
uploads are served on /metrics at that address.

Examples:
  rezai-admin console
  rezai-admin console --metrics-addr 127.0.0.1:9464`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

var consoleMetricsAddr string

func init() {
	consoleCmd.Flags().StringVar(&consoleMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	toasts := &notify.Recorder{}
	a, err := newApp(cmd, withConsole(toasts))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if consoleMetricsAddr != "" {
		srv, err := metrics.Listen(consoleMetricsAddr, a.Registry)
		if err != nil {
			return err
		}
		a.Logger.Info("serving metrics", "addr", srv.Addr())
		g.Go(func() error { return srv.Serve(ctx) })
	}

	g.Go(func() error {
		defer cancel()
		return tui.Run(ctx, tui.Deps{
			Gateway:  a.Gateway,
			Service:  a.Service,
			Uploader: a.Uploader,
			Toasts:   toasts,
			Logger:   a.Logger,
		})
	})

	return g.Wait()
}
