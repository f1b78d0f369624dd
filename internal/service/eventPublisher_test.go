package service

import (
	"context"
	"testing"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	keys     []string
	messages []interface{}
}

func (p *recordingProducer) SendMessage(ctx context.Context, key string, message interface{}) error {
	p.keys = append(p.keys, key)
	p.messages = append(p.messages, message)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

type recordingQueue struct {
	messages []interface{}
}

func (q *recordingQueue) Publish(ctx context.Context, message interface{}) error {
	q.messages = append(q.messages, message)
	return nil
}

func (q *recordingQueue) HealthCheck() error { return nil }
func (q *recordingQueue) Close() error       { return nil }

func TestKafkaAdapterKeysByBooking(t *testing.T) {
	producer := &recordingProducer{}
	adapter := NewKafkaAdapter(producer)
	event := &entity.BookingEvent{Type: entity.BookingRevoked, BookedTicketID: 17}

	require.NoError(t, adapter.Publish(context.Background(), event))
	assert.Equal(t, []string{"17"}, producer.keys)
	assert.Same(t, event, producer.messages[0])
}

func TestRabbitMQAdapter(t *testing.T) {
	queue := &recordingQueue{}
	event := &entity.BookingEvent{Type: entity.BookingCreated, BookedTicketID: 3}

	require.NoError(t, NewRabbitMQAdapter(queue).Publish(context.Background(), event))
	assert.Len(t, queue.messages, 1)

	assert.NoError(t, NewRabbitMQAdapter(nil).Publish(context.Background(), event))
}
