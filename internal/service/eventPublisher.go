package service

import (
	"context"
	"strconv"

	"github.com/ds124wfegd/ticketbooker/internal/entity"
	"github.com/ds124wfegd/ticketbooker/pkg/kafka"
	"github.com/ds124wfegd/ticketbooker/pkg/rabbitMQ"
)

// RabbitMQAdapter publishes booking events to a RabbitMQ queue.
type RabbitMQAdapter struct {
	queue rabbitMQ.Publisher
}

func NewRabbitMQAdapter(q rabbitMQ.Publisher) *RabbitMQAdapter {
	return &RabbitMQAdapter{queue: q}
}

func (a *RabbitMQAdapter) Publish(ctx context.Context, event *entity.BookingEvent) error {
	if a.queue == nil {
		return nil
	}
	return a.queue.Publish(ctx, event)
}

// KafkaAdapter publishes booking events to a Kafka topic. Events of one
// booking share a key and so keep their order within a partition.
type KafkaAdapter struct {
	producer kafka.Producer
}

func NewKafkaAdapter(p kafka.Producer) *KafkaAdapter {
	return &KafkaAdapter{producer: p}
}

func (a *KafkaAdapter) Publish(ctx context.Context, event *entity.BookingEvent) error {
	if a.producer == nil {
		return nil
	}
	return a.producer.SendMessage(ctx, strconv.FormatInt(event.BookedTicketID, 10), event)
}
