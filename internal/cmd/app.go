package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/api"
	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/cache"
	"github.com/felixgeelhaar/rezai-admin/internal/config"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/log"
	"github.com/felixgeelhaar/rezai-admin/internal/metrics"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
	"github.com/felixgeelhaar/rezai-admin/internal/resource"
	"github.com/felixgeelhaar/rezai-admin/internal/session"
	"github.com/felixgeelhaar/rezai-admin/internal/telemetry"
	"github.com/felixgeelhaar/rezai-admin/internal/upload"
	"github.com/felixgeelhaar/rezai-admin/internal/ux"
	"github.com/felixgeelhaar/rezai-admin/internal/version"
)

// App is the wired application behind one command.
type App struct {
	Context  *CommandContext
	Config   *config.Config
	Logger   *log.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Store    session.Store
	Client   *api.Client
	Cache    *cache.Cache
	Service  *resource.Service
	Gateway  *auth.Gateway
	Uploader *upload.Uploader
	Notifier notify.Notifier
	Tracing  *telemetry.Provider

	out     io.Writer
	logOut  log.Output
	console bool
}

type appOption func(*App)

// withConsole routes logs to the log file and toasts to a recorder the
// console drains.
func withConsole(rec *notify.Recorder) appOption {
	return func(a *App) {
		a.console = true
		a.Notifier = rec
	}
}

// newApp loads configuration and wires the session, API client, cache,
// resource service and auth gateway.
func newApp(cmd *cobra.Command, opts ...appOption) (*App, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := cc.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		Context:  cc,
		Config:   cfg,
		Notifier: notify.NewWriter(cmd.ErrOrStderr()),
		out:      cmd.OutOrStdout(),
		logOut:   log.NewOutput(cmd.ErrOrStderr()),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.console {
		out, err := log.OutputFile(cfg.LogPath())
		if err != nil {
			return nil, err
		}
		a.logOut = out
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.Log.Level)
	logCfg.Format = log.ParseFormat(cfg.Log.Format)
	logCfg.Output = a.logOut
	logCfg.ServiceVersion = version.Version
	a.Logger = log.New(logCfg)
	log.SetDefaultLogger(a.Logger)

	a.Registry, a.Metrics = metrics.NewRegistry()

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version.Version
	tcfg.Enabled = cfg.Telemetry.Enabled
	tcfg.Endpoint = cfg.Telemetry.Endpoint
	tcfg.Insecure = cfg.Telemetry.Insecure
	tcfg.SampleRate = cfg.Telemetry.SampleRate
	a.Tracing, err = telemetry.NewProvider(cmd.Context(), tcfg)
	if err != nil {
		return nil, err
	}

	a.Store = session.NewFileStore(cfg.SessionPath())

	store := a.Store
	a.Client = api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithToken(func(ctx context.Context) string { return session.Token(ctx, store) }),
		api.WithMetrics(a.Metrics),
		api.WithLogger(a.Logger),
		api.WithTracerProvider(a.Tracing.TracerProvider()),
	)

	a.Cache = cache.New(a.Metrics)
	a.Service = resource.NewService(a.Client, a.Cache,
		resource.WithNotifier(a.Notifier),
		resource.WithMetrics(a.Metrics),
		resource.WithLogger(a.Logger),
	)
	a.Gateway = auth.NewGateway(a.Client, a.Store, a.Cache, auth.NewGuard(cmd.Context(), a.Store),
		auth.WithNotifier(a.Notifier),
		auth.WithLogger(a.Logger),
	)
	a.Uploader = upload.New(cfg.UploadTarget(), nil, a.Metrics, a.Logger)

	a.Logger.Debug("application wired",
		"api", cfg.API.BaseURL,
		"home", cfg.Home,
		"config", cfg.File,
	)
	return a, nil
}

// newProtectedApp wires the application and resolves the guard for route.
// Commands behind a protected route fail without a live session.
func newProtectedApp(cmd *cobra.Command, route auth.Route) (*App, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if a.Gateway.Guard().Resolve(route) != route {
		return nil, errors.NewNotLoggedInError()
	}
	return a, nil
}

// Close flushes pending spans and releases the log output.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Tracing.Shutdown(ctx); err != nil {
		a.Logger.WithError(err).Warn("failed to flush traces")
	}
	return a.logOut.Close()
}

// Print writes data in the selected output format.
func (a *App) Print(data any) error {
	return printFormatted(a.out, a.Context, data)
}

func printFormatted(w io.Writer, cc *CommandContext, data any) error {
	f, err := ux.NewFormatter(cc.Format, &ux.FormatterOptions{Writer: w, NoColor: cc.NoColor})
	if err != nil {
		return err
	}
	return f.Format(data)
}
