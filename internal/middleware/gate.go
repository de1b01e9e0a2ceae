package middleware

import (
	"net/http"

	"github.com/trsv-dev/gated-static-server/internal/logger"
	"github.com/trsv-dev/gated-static-server/internal/metrics"
	"github.com/trsv-dev/gated-static-server/internal/routing"
)

// Gate Интерфейс роутера, принимающего решение по пути и заголовкам запроса.
type Gate interface {
	Route(path string, headers http.Header) routing.Decision
}

// GateMiddleware Пропускает запрос к статике только если роутер разрешил его отдачу.
// Отклоненные запросы получают 302 на страницу входа (или на новый адрес страницы),
// разрешенные передаются дальше с переписанным путем.
func GateMiddleware(gate Gate, recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := gate.Route(r.URL.Path, r.Header)
			recorder.ObserveDecision(decision)

			logger.Log.Debug("Решение роутера",
				logger.String("path", r.URL.Path),
				logger.String("decision", decision.Kind.String()),
				logger.String("reason", decision.Reason),
				logger.String("target", decision.Path),
			)

			if decision.Kind == routing.Redirect {
				http.Redirect(w, r, decision.Path, decision.Status)
				return
			}

			// копия запроса с переписанным путем, исходный запрос не меняем
			r2 := r.Clone(r.Context())
			r2.URL.Path = decision.Path
			r2.URL.RawPath = ""

			next.ServeHTTP(w, r2)
		})
	}
}

// MetricsMiddleware Учитывает метод и итоговый статус каждого ответа.
func MetricsMiddleware(recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lw := &LoggingResponseWriter{
				ResponseWriter: w,
				responseData:   &responseData{},
			}

			next.ServeHTTP(lw, r)

			recorder.ObserveResponse(r.Method, lw.Status())
		})
	}
}
