package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hexinli/JakartaBackend/modules/tracking/services"
	"github.com/hexinli/JakartaBackend/modules/tracking/sheet"
	"github.com/hexinli/JakartaBackend/pkg/checkin"
)

func newServeCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run pull-sync on an interval and expose metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			logger := a.conf.Logger()
			relay := checkin.NewClient(checkin.Options{
				Enabled: a.conf.Checkin.Enabled,
				URL:     a.conf.Checkin.URL,
				HWID:    a.conf.Checkin.HWID,
				AppKey:  a.conf.Checkin.AppKey,
				Timeout: a.conf.Checkin.Timeout,
			}, logger)
			a.publisher.Subscribe(newCheckinRelay(relay))

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
				latest, err := a.pull.LatestLog(a.ctx(r.Context()))
				if err != nil {
					http.Error(w, err.Error(), http.StatusServiceUnavailable)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				if latest == nil {
					_, _ = w.Write([]byte(`{"status":"no runs yet"}`))
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status":  latest.Status,
					"last_at": latest.CreatedAt,
				})
			})
			srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("metrics server failed")
				}
			}()

			// Pull runs off the command goroutine so signal handling and the
			// metrics server stay responsive during long syncs.
			runs := make(chan struct{}, 1)
			go func() {
				for range runs {
					if _, err := a.pull.Pull(a.ctx(ctx)); err != nil {
						logger.WithError(err).Error("scheduled pull-sync failed")
					}
				}
			}()

			logger.WithField("interval", a.conf.SyncInterval.String()).Info("scheduler started")
			ticker := time.NewTicker(a.conf.SyncInterval)
			defer ticker.Stop()

			runs <- struct{}{}
			for {
				select {
				case <-ctx.Done():
					close(runs)
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				case <-ticker.C:
					select {
					case runs <- struct{}{}:
					default:
						logger.Warn("previous pull-sync still running, tick skipped")
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Listen address for /metrics and /healthz")
	return cmd
}

// newCheckinRelay forwards terminal delivery updates to the upstream check-in
// service. Relay failures are the client's to log; a rejected check-in never
// fails the write-back that triggered it.
func newCheckinRelay(relay *checkin.Client) func(services.WriteBackCompletedEvent) {
	return func(event services.WriteBackCompletedEvent) {
		status, ok := event.Result.Fields[sheet.FieldStatusDelivery]
		if !ok || status != "ok" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_, _ = relay.Create(ctx, map[string]interface{}{
			"dn_number":   event.Result.ShipmentNo,
			"sheet_title": event.Result.SheetTitle,
			"sheet_row":   event.Result.SheetRow,
			"checked_at":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}
