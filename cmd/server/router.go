package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	candidacyHandler "nhc/internal/candidacy/handler"
	candidacyMetrics "nhc/internal/candidacy/metrics"
	candidacyService "nhc/internal/candidacy/service"
	electionHandler "nhc/internal/election/handler"
	electionMetrics "nhc/internal/election/metrics"
	electionModels "nhc/internal/election/models"
	electionService "nhc/internal/election/service"
	memberHandler "nhc/internal/member/handler"
	memberService "nhc/internal/member/service"
	"nhc/internal/notification"
	notificationHandler "nhc/internal/notification/handler"
	periodHandler "nhc/internal/period/handler"
	periodService "nhc/internal/period/service"
	"nhc/internal/platform/config"
	"nhc/internal/platform/httputil"
	"nhc/internal/platform/metrics"
	"nhc/internal/platform/middleware"
	"nhc/internal/position"
	positionHandler "nhc/internal/position/handler"
	"nhc/internal/request"
	requestHandler "nhc/internal/request/handler"
	"nhc/internal/zone"
	zoneHandler "nhc/internal/zone/handler"
)

// stores is what a storage backend must provide: every service's Store.
type stores interface {
	zone.Store
	position.Store
	notification.Store
	memberService.Store
	request.Store
	periodService.Store
	candidacyService.Store
	electionService.Store
}

// deps are the backend-independent collaborators.
type deps struct {
	cfg      config.Server
	logger   *slog.Logger
	registry *prometheus.Registry
	policy   electionModels.WinnerPolicy
	cache    electionService.ResultsCache
	checks   map[string]func(context.Context) error
}

type routeRegistrar interface {
	Register(r chi.Router)
	RegisterAdmin(r chi.Router)
}

// buildRouter wires every bounded context onto store and mounts the HTTP
// surface. run is the backend's RunInTx.
func buildRouter[B stores](ctx context.Context, store B, run func(context.Context, func(B) error) error, d deps) (http.Handler, error) {
	log := d.logger
	httpMetrics := metrics.New(d.registry)

	positions := position.NewService(store, position.WithLogger(log))
	if err := positions.EnsureDefaults(ctx); err != nil {
		return nil, err
	}
	notifications := notification.NewService(store, notification.WithLogger(log))
	zones := zone.NewService(store, zone.WithLogger(log))
	members := memberService.New(store, memberService.WithLogger(log))
	requests := request.NewService(store,
		newTx(run, func(b B) request.Store { return b }),
		request.WithLogger(log),
		request.WithNotifier(notifications),
	)
	periods := periodService.New(store,
		newTx(run, func(b B) periodService.Store { return b }),
		periodService.WithLogger(log),
		periodService.WithNotifier(notifications),
		periodService.WithLocation(d.cfg.Location),
	)
	candidacies := candidacyService.New(store,
		newTx(run, func(b B) candidacyService.Store { return b }),
		positions,
		candidacyService.WithLogger(log),
		candidacyService.WithMetrics(candidacyMetrics.New(d.registry)),
		candidacyService.WithNotifier(notifications),
		candidacyService.WithLocation(d.cfg.Location),
	)
	elections := electionService.New(store,
		newTx(run, func(b B) electionService.Store { return b }),
		positions,
		electionService.WithLogger(log),
		electionService.WithMetrics(electionMetrics.New(d.registry)),
		electionService.WithNotifier(notifications),
		electionService.WithResultsCache(d.cache),
		electionService.WithLocation(d.cfg.Location),
		electionService.WithWinnerPolicy(d.policy),
	)

	handlers := []routeRegistrar{
		zoneHandler.New(zones, log),
		positionHandler.New(positions, log),
		memberHandler.New(members, log),
		requestHandler.New(requests, log),
		notificationHandler.New(notifications, log),
		periodHandler.New(periods, log),
		candidacyHandler.New(candidacies, log),
		electionHandler.New(elections, log),
	}

	limiter := middleware.NewClientLimiter(d.cfg.RateLimit.RPS, d.cfg.RateLimit.Burst, 10*time.Minute)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(httpMetrics))
	r.Use(middleware.Timeout(d.cfg.RequestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", healthHandler(d.checks))
	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.MutationsOnly(middleware.RateLimit(limiter, httpMetrics, log)))
		for _, h := range handlers {
			h.Register(r)
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(d.cfg.AdminToken, log))
		for _, h := range handlers {
			h.RegisterAdmin(r)
		}
	})
	return r, nil
}

// healthHandler reports 503 when any dependency check fails.
func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": report})
	}
}
