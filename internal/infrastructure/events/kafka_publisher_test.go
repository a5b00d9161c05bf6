package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type countingMetrics struct {
	ports.NopMetrics
	ok, failed int
}

func (m *countingMetrics) EventPublished(_ string, err error) {
	if err != nil {
		m.failed++
		return
	}
	m.ok++
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	m := &countingMetrics{}
	p := newPublisher(w, "crm.events", m, logger.Nop())
	p.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }

	err := p.Publish(context.Background(), ports.Event{
		Name: ports.EventDispositionCreated, Key: "d-1", Payload: map[string]string{"id": "d-1"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "crm.events", msg.Topic)
	assert.Equal(t, "d-1", string(msg.Key))
	assert.Equal(t, ports.EventDispositionCreated, string(msg.Headers[0].Value))

	var env struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, ports.EventDispositionCreated, env.Event)
	assert.Equal(t, "d-1", env.Data["id"])
	assert.Equal(t, 1, m.ok)
}

func TestPublish_ErrorDelBroker(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	m := &countingMetrics{}
	p := newPublisher(w, "crm.events", m, logger.Nop())

	err := p.Publish(context.Background(),
		ports.Event{Name: ports.EventProjectCreated, Key: "p-1"},
		ports.Event{Name: ports.EventProjectCreated, Key: "p-2"},
	)
	assert.Error(t, err)
	assert.Equal(t, 2, m.failed)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NewNopPublisher(nil).Publish(context.Background(), ports.Event{Name: "x"}))
}
