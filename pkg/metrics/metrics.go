package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smith3v/tg-link-curator/pkg/logger"
)

const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeApplied  = "applied"
	OutcomeStale    = "stale"
	OutcomeFailed   = "failed"
	OutcomeAccepted = "accepted"
)

var (
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcurator_submissions_total",
		Help: "Finalized link submissions by outcome.",
	}, []string{"outcome"})

	ModerationDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcurator_moderation_decisions_total",
		Help: "Administrator decisions by action and outcome.",
	}, []string{"action", "outcome"})

	KeywordLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcurator_keyword_lookups_total",
		Help: "Keyword lookups by outcome.",
	}, []string{"outcome"})

	NotificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkcurator_notification_failures_total",
		Help: "Outbound Telegram messages that could not be delivered.",
	}, []string{"kind"})
)

// Registry holds the bot collectors plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		Submissions,
		ModerationDecisions,
		KeywordLookups,
		NotificationFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr
// disables the endpoint.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down metrics server", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
