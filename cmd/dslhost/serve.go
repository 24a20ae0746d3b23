package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/dslhost/internal/config"
	"github.com/aretw0/dslhost/internal/logging"
	"github.com/aretw0/dslhost/internal/metrics"
	"github.com/aretw0/dslhost/internal/presentation/tui"
	httpAdapter "github.com/aretw0/dslhost/pkg/adapters/http"
	"github.com/aretw0/dslhost/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts dslhost, serving the initial data and accepting submissions over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		level, _ := logging.ParseLevel(cfg.LogLevel)
		format, _ := logging.ParseFormat(cfg.LogFormat)
		logger := logging.New(level, format)
		slog.SetDefault(logger)

		ln, err := net.Listen("tcp", cfg.Addr())
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
		}

		var metricsLn net.Listener
		if cfg.MetricsAddr != "" {
			metricsLn, err = net.Listen("tcp", cfg.MetricsAddr)
			if err != nil {
				ln.Close()
				return fmt.Errorf("failed to listen on %s: %w", cfg.MetricsAddr, err)
			}
		}

		noBanner, _ := cmd.Flags().GetBool("no-banner")
		if !noBanner && term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(cmd.OutOrStdout(), ln.Addr().String())
		}

		// Listen for interrupt or terminate signals.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg, logger, ln, metricsLn)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "", "Host interface to bind (default 127.0.0.1)")
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default 5000)")
	cmd.Flags().String("metrics-addr", "", "Address for the Prometheus /metrics listener (disabled when empty)")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().String("log-format", "", "Log format: text or json")
	cmd.Flags().Bool("no-banner", false, "Do not print the startup banner")
}

// flagKeys maps serve flags to their config keys.
var flagKeys = map[string]string{
	"host":         "host",
	"port":         "port",
	"metrics-addr": "metrics_addr",
	"log-level":    "log_level",
	"log-format":   "log_format",
}

// resolveConfig loads the config file, if any, and applies the flags the
// user set explicitly on top of it.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	overrides := make(map[string]any)
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		overrides[key] = f.Value.String()
	}
	if err := config.Apply(&cfg, overrides); err != nil {
		return cfg, fmt.Errorf("invalid flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run serves on ln (and metricsLn, when set) until ctx is done, then shuts
// the servers down within cfg.ShutdownTimeout.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger, ln, metricsLn net.Listener) error {
	opts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}

	var m *metrics.Metrics
	if metricsLn != nil {
		m = metrics.New()
		opts = append(opts, httpAdapter.WithMiddleware(m.Middleware))
	}

	handler, err := httpAdapter.NewHandler(domain.NewInitialData(), opts...)
	if err != nil {
		return err
	}

	servers := []*http.Server{{Handler: handler, ReadHeaderTimeout: 10 * time.Second}}
	listeners := []net.Listener{ln}
	if m != nil {
		servers = append(servers, &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 10 * time.Second})
		listeners = append(listeners, metricsLn)
	}

	// Channel to listen for errors coming from the listeners.
	serverErrors := make(chan error, len(servers))
	for i, srv := range servers {
		go func(srv *http.Server, l net.Listener) {
			logger.Info("Server listening", "addr", l.Addr().String())
			serverErrors <- srv.Serve(l)
		}(srv, listeners[i])
	}

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		shutdownAll(servers, logger, cfg.ShutdownTimeout)
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown", "cause", context.Cause(ctx))
		if err := shutdownAll(servers, logger, cfg.ShutdownTimeout); err != nil {
			return err
		}
		logger.Info("Server stopped gracefully")
		return nil
	}
}

func shutdownAll(servers []*http.Server, logger *slog.Logger, timeout time.Duration) error {
	// Give outstanding requests a deadline for completion.
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", timeout, "error", err)
			if cerr := srv.Close(); cerr != nil && !errors.Is(cerr, http.ErrServerClosed) {
				errs = append(errs, cerr)
			}
		}
	}
	return errors.Join(errs...)
}
