package ports

import "time"

// Metrics puerto de instrumentación usado por los casos de uso.
// El adaptador Prometheus vive en infrastructure/metrics; NopMetrics para tests.
type Metrics interface {
	PermissionDenied(module, action string)
	CacheLookup(cache string, hit bool)
	LLMRequest(provider, outcome string, elapsed time.Duration)
	EventPublished(name string, err error)
}

// NopMetrics descarta todas las observaciones.
type NopMetrics struct{}

func (NopMetrics) PermissionDenied(string, string)          {}
func (NopMetrics) CacheLookup(string, bool)                 {}
func (NopMetrics) LLMRequest(string, string, time.Duration) {}
func (NopMetrics) EventPublished(string, error)             {}
