package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trsv-dev/gated-static-server/internal/metrics"
	"github.com/trsv-dev/gated-static-server/internal/middleware"
	"github.com/trsv-dev/gated-static-server/internal/static"
)

// Router Роутер сервера статики.
// Все GET/HEAD запросы проходят через проверку роутера правил, остальные методы получают 501.
func Router(gate middleware.Gate, responder http.Handler, recorder metrics.Recorder) chi.Router {
	router := chi.NewRouter()

	// middleware логгера всех запросов
	router.Use(middleware.LogMiddleware)
	router.Use(middleware.MetricsMiddleware(recorder))

	// POST, PUT и прочие методы статикой не поддерживаются
	router.MethodNotAllowed(static.NotImplemented)

	router.Group(func(r chi.Router) {
		r.Use(middleware.GateMiddleware(gate, recorder))

		r.Get("/*", responder.ServeHTTP)
		r.Head("/*", responder.ServeHTTP)
	})

	return router
}

// OpsRouter Служебный роутер: метрики Prometheus и проверка состояния.
func OpsRouter(gatherer prometheus.Gatherer) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.LogMiddleware)

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return router
}
