package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sampleshare/internal/config"
	"sampleshare/internal/middleware"
	"sampleshare/internal/repo"
	"sampleshare/internal/service"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	users repo.UserRepository,
	delivery *service.DeliveryService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithMetrics)

	nssf := NewNSSFHandler(users, delivery, logger)

	// Единственная точка протокола обмена: операция в параметре action
	r.Get("/api", nssf.Serve)
	r.Get("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"ACK"`))
	})

	r.Handle("/metrics", promhttp.Handler())

	return &Handler{Router: r}
}
