package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/gearproc/internal/metrics"
	"github.com/harun/gearproc/pkg/procedural"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep procedurals loaded and reload them on change",
	Long: `Load every procedural and keep them loaded until interrupted.
Manifests under the procedural directories are watched: new procedurals are
loaded, changed ones reloaded and removed ones unloaded. When metrics are
enabled, Prometheus metrics are served on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if a.cfg.Procedurals.Watch {
		debounce := time.Duration(a.cfg.Procedurals.DebounceMs) * time.Millisecond
		watcher, err := procedural.NewWatcher(a.runtime, a.log.GetZerolog(), debounce)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	var server *http.Server
	if a.cfg.Metrics.Enabled {
		ln, err := net.Listen("tcp", a.cfg.Metrics.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", a.cfg.Metrics.Addr, err)
		}

		server = &http.Server{
			Handler:           newMetricsMux(a.metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
				a.log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		a.log.Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")
	}

	a.log.Info().Int("procedurals", len(a.runtime.List())).Msg("Watching procedurals")
	<-ctx.Done()
	a.log.Info().Msg("Stopping")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown metrics server: %w", err)
		}
	}

	return nil
}

func newMetricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
