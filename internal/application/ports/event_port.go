package ports

import "context"

// Nombres de eventos de dominio publicados tras confirmar la transacción.
const (
	EventDispositionCreated = "sales.disposition.created"
	EventProjectCreated     = "project.created"
)

// Event evento de dominio; Key agrupa mensajes del mismo agregado en una partición.
type Event struct {
	Name    string
	Key     string
	Payload any
}

// EventPublisher puerto de salida hacia el bus de eventos (Kafka o no-op).
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
