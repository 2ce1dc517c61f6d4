package service_test

import (
	"context"
	"io"
	"testing"

	"hotel-booking-backend/internal/service"

	"github.com/go-redis/redismock/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventBus(t *testing.T) (*service.RedisEventBus, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return service.NewRedisEventBus(client, log, "hotel:events"), mock
}

func TestRedisEventBus_PublishesEnvelope(t *testing.T) {
	bus, mock := newTestEventBus(t)

	payload := map[string]interface{}{"available": true}
	expected := []byte(`{"event":"bookingUpdated","data":{"available":true}}`)
	mock.ExpectPublish("hotel:events", expected).SetVal(1)

	bus.Publish(context.Background(), service.EventBookingUpdated, payload)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisEventBus_PublishFailureIsSwallowed(t *testing.T) {
	bus, mock := newTestEventBus(t)

	expected := []byte(`{"event":"statsUpdated","data":null}`)
	mock.ExpectPublish("hotel:events", expected).SetErr(assert.AnError)

	// Must not panic or surface the error; broadcasting is best-effort.
	bus.Publish(context.Background(), service.EventStatsUpdated, nil)

	require.NoError(t, mock.ExpectationsWereMet())
}
