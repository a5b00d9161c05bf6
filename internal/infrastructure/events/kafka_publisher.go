// Package events publica eventos de dominio en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// envelope formato del mensaje en el tópico.
type envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// messageWriter subconjunto de *kafka.Writer usado por el publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe cada evento en el tópico configurado con el nombre en el header "event".
type KafkaPublisher struct {
	w       messageWriter
	topic   string
	metrics ports.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewKafkaPublisher crea el writer. La escritura es síncrona: Publish devuelve el error del broker.
func NewKafkaPublisher(brokers []string, topic string, metrics ports.Metrics, log *logger.Logger) *KafkaPublisher {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	l := log.Component("kafka")
	zl := l.Zerolog()
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			zl.Error().Msgf(msg, args...)
		}),
	}
	return newPublisher(w, topic, metrics, l)
}

func newPublisher(w messageWriter, topic string, metrics ports.Metrics, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{w: w, topic: topic, metrics: metrics, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Publish serializa y envía los eventos en un solo lote.
func (p *KafkaPublisher) Publish(ctx context.Context, evs ...ports.Event) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(evs))
	for _, ev := range evs {
		b, err := json.Marshal(envelope{Event: ev.Name, OccurredAt: p.now(), Data: ev.Payload})
		if err != nil {
			p.metrics.EventPublished(ev.Name, err)
			return fmt.Errorf("marshal event %s: %w", ev.Name, err)
		}
		msgs = append(msgs, kafka.Message{
			Topic:   p.topic,
			Key:     []byte(ev.Key),
			Value:   b,
			Headers: []kafka.Header{{Key: "event", Value: []byte(ev.Name)}},
		})
	}
	err := p.w.WriteMessages(ctx, msgs...)
	for _, ev := range evs {
		p.metrics.EventPublished(ev.Name, err)
	}
	if err != nil {
		return fmt.Errorf("write kafka messages: %w", err)
	}
	p.log.Debug().Int("count", len(msgs)).Str("topic", p.topic).Msg("eventos publicados")
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
