package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/trananhvu/shoe-catalog/internal/config"
	"github.com/trananhvu/shoe-catalog/internal/http/metric"
	"github.com/trananhvu/shoe-catalog/internal/http/middleware"
	"github.com/trananhvu/shoe-catalog/internal/http/swagger"
	"github.com/trananhvu/shoe-catalog/internal/service"
	"github.com/trananhvu/shoe-catalog/internal/storage/kv"
	"github.com/trananhvu/shoe-catalog/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg         config.HTTP
	logger      *slog.Logger
	metrics     *metric.Metrics
	validator   validator.Validator
	storeHealth kv.HealthChecker

	shoeSvc service.ShoeService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	v validator.Validator,
	storeHealth kv.HealthChecker,
	shoeSvc service.ShoeService,
) *Service {
	return &Service{
		cfg:         cfg,
		logger:      log.With(slog.String("service", "http")),
		metrics:     metric.New(),
		validator:   v,
		storeHealth: storeHealth,
		shoeSvc:     shoeSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	h := newShoeHandler(s.logger, s.validator, s.shoeSvc)

	r.Route("/api/v1/shoes", func(r chi.Router) {
		r.Get("/", h.listShoes)
		r.Post("/", h.createShoe)
		r.Get("/search", h.searchShoes)

		r.Route("/{shoeID}", func(r chi.Router) {
			r.Get("/", h.getShoe)
			r.Put("/", h.updateShoe)
			r.Delete("/", h.deleteShoe)
			r.Post("/rating", h.rateShoe)
		})
	})

	r.Get("/healthz", s.healthz)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) {
	if healthy, err := s.storeHealth.IsHealthy(r.Context()); err != nil || !healthy {
		respondJSON(s.logger, w, r, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	respondJSON(s.logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}
