package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Domain event names, mirrored by the UI layer's socket listeners.
const (
	EventBookingCreated = "bookingCreated"
	EventBookingUpdated = "bookingUpdated"
	EventRoomCreated    = "roomCreated"
	EventRoomUpdated    = "roomUpdated"
	EventRoomDeleted    = "roomDeleted"
	EventStatsUpdated   = "statsUpdated"
)

// EventPublisher fans typed domain events out to connected subscribers.
// Delivery is fire-and-forget, at-least-once; subscribers that were
// disconnected reconcile with a full re-fetch, not a replay.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload interface{})
}

// eventEnvelope is the wire shape published on the Redis channel.
type eventEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// RedisEventBus publishes domain events on a single Redis pub/sub channel.
// All events for one booking are published inline on the request that
// mutated it, after the write, so per-booking order is the publish order.
type RedisEventBus struct {
	client  *redis.Client
	log     *logrus.Logger
	channel string
}

func NewRedisEventBus(client *redis.Client, log *logrus.Logger, channel string) *RedisEventBus {
	return &RedisEventBus{
		client:  client,
		log:     log,
		channel: channel,
	}
}

// Publish sends one event. Failures are logged and swallowed: a missed
// broadcast must never fail the booking operation that triggered it.
func (b *RedisEventBus) Publish(ctx context.Context, event string, payload interface{}) {
	body, err := json.Marshal(eventEnvelope{Event: event, Data: payload})
	if err != nil {
		b.log.Warnf("Failed to marshal event %s: %+v", event, err)
		return
	}

	if err := b.client.Publish(ctx, b.channel, body).Err(); err != nil {
		b.log.Warnf("Failed to publish event %s: %+v", event, err)
		return
	}

	b.log.Debugf("Published event %s on %s", event, b.channel)
}
