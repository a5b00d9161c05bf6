// Package metrics implementa ports.Metrics y las métricas HTTP con Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/CRM-api/internal/application/ports"
)

const namespace = "crm"

var _ ports.Metrics = (*Metrics)(nil)

// Metrics contadores e histogramas de la API.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	PermissionDenies *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	LLMRequests      *prometheus.CounterVec
	LLMDuration      *prometheus.HistogramVec
	EventsPublished  *prometheus.CounterVec
}

// New registra las métricas en reg (prometheus.DefaultRegisterer en producción).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total de requests HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latencia de requests HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PermissionDenies: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "permissions",
			Name:      "denied_total",
			Help:      "Chequeos de permiso denegados por módulo y acción.",
		}, []string{"module", "action"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Lecturas de caché por resultado (hit, miss).",
		}, []string{"cache", "result"}),
		LLMRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Llamadas al proveedor de IA por resultado.",
		}, []string{"provider", "outcome"}),
		LLMDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "request_duration_seconds",
			Help:      "Latencia de llamadas al proveedor de IA.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"provider"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Eventos de dominio publicados por nombre y estado.",
		}, []string{"event", "status"}),
	}
}

func (m *Metrics) PermissionDenied(module, action string) {
	m.PermissionDenies.WithLabelValues(module, action).Inc()
}

func (m *Metrics) CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) LLMRequest(provider, outcome string, elapsed time.Duration) {
	m.LLMRequests.WithLabelValues(provider, outcome).Inc()
	m.LLMDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) EventPublished(name string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsPublished.WithLabelValues(name, status).Inc()
}

// ObserveHTTP registra un request terminado. route es el patrón (/api/leads/:id), no la URL.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
