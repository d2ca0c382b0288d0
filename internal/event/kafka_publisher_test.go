package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/event"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed int
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed++
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	writer := &recordingWriter{}

	publisher, err := event.NewKafkaPublisher(writer)
	require.NoError(t, err)

	occurredAt := time.Date(2026, 10, 15, 4, 0, 0, 0, time.UTC)
	published := domain.OrderEvent{
		Type:           domain.OrderEventStatusChanged,
		OrderID:        uuid.New(),
		OrderNumber:    "CT01JABCDEF",
		PreviousStatus: domain.OrderStatusPaid,
		CurrentStatus:  domain.OrderStatusPreparing,
		ActorID:        "merchant:7",
		OccurredAt:     occurredAt,
		Metadata:       map[string]string{"merchantId": "7"},
	}

	require.NoError(t, publisher.PublishOrderEvent(t.Context(), published))
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	assert.Equal(t, published.OrderID.String(), string(msg.Key))
	assert.Equal(t, occurredAt, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, domain.OrderEventStatusChanged, string(msg.Headers[0].Value))

	var decoded domain.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, published, decoded)

	require.NoError(t, publisher.Close())
	require.NoError(t, publisher.Close())
	assert.Equal(t, 1, writer.closed)

	err = publisher.PublishOrderEvent(t.Context(), published)
	require.ErrorIs(t, err, port.ErrEventPublisherClosed)
}

func TestKafkaPublisherWriteError(t *testing.T) {
	writer := &recordingWriter{err: errors.New("leader not available")}

	publisher, err := event.NewKafkaPublisher(writer)
	require.NoError(t, err)

	err = publisher.PublishOrderEvent(t.Context(), domain.OrderEvent{Type: domain.OrderEventCreated, OrderID: uuid.New()})
	require.EqualError(t, err, "writer.WriteMessages: leader not available")
}

func TestNewKafkaPublisherNilWriter(t *testing.T) {
	_, err := event.NewKafkaPublisher(nil)
	require.Error(t, err)
}
