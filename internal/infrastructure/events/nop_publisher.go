package events

import (
	"context"

	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

// NopPublisher descarta los eventos cuando no hay brokers configurados.
type NopPublisher struct {
	log *logger.Logger
}

// NewNopPublisher construye el publisher vacío.
func NewNopPublisher(log *logger.Logger) NopPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return NopPublisher{log: log}
}

func (p NopPublisher) Publish(_ context.Context, evs ...ports.Event) error {
	for _, ev := range evs {
		p.log.Debug().Str("event", ev.Name).Str("key", ev.Key).Msg("evento descartado (kafka no configurado)")
	}
	return nil
}
