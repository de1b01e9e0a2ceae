package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trsv-dev/gated-static-server/internal/routing"
)

// Namespace Пространство имен всех метрик сервера.
const Namespace = "gss"

// Recorder Интерфейс для учета решений роутера и ответов сервера.
type Recorder interface {
	ObserveDecision(d routing.Decision)
	ObserveResponse(method string, status int)
}

// PrometheusRecorder Учет метрик в Prometheus.
type PrometheusRecorder struct {
	decisions *prometheus.CounterVec
	responses *prometheus.CounterVec
}

// NewPrometheusRecorder Регистрирует метрики в переданном реестре.
func NewPrometheusRecorder(registry prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(registry)

	return &PrometheusRecorder{
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "route_decisions_total",
			Help:      "Total number of routing decisions by kind and reason",
		}, []string{"kind", "reason"}),

		responses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method and response status",
		}, []string{"method", "status"}),
	}
}

func (p *PrometheusRecorder) ObserveDecision(d routing.Decision) {
	p.decisions.WithLabelValues(d.Kind.String(), d.Reason).Inc()
}

func (p *PrometheusRecorder) ObserveResponse(method string, status int) {
	p.responses.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// NoopRecorder Заглушка, если метрики не нужны (ops-адрес не задан).
type NoopRecorder struct{}

func (NoopRecorder) ObserveDecision(routing.Decision) {}

func (NoopRecorder) ObserveResponse(string, int) {}
