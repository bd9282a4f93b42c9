package rabbitmq

import (
	"errors"
	"io"
	"log"
	"os"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// settlement records how a delivery was acknowledged.
type settlement struct {
	acked   int
	nacked  int
	requeue bool
	err     error
}

func (s *settlement) Ack(tag uint64, multiple bool) error {
	s.acked++
	return s.err
}

func (s *settlement) Nack(tag uint64, multiple bool, requeue bool) error {
	s.nacked++
	s.requeue = requeue
	return s.err
}

func (s *settlement) Reject(tag uint64, requeue bool) error {
	return s.Nack(tag, false, requeue)
}

func delivery(ack *settlement, redelivered bool) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  7,
		RoutingKey:   "order.status_changed",
		Redelivered:  redelivered,
		Body:         []byte(`{"order_id":"o1"}`),
	}
}

func TestHandleDelivery(t *testing.T) {
	failing := func(amqp.Delivery) error { return errors.New("db down") }

	tests := []struct {
		name        string
		handler     func(amqp.Delivery) error
		redelivered bool
		acked       int
		nacked      int
		requeue     bool
	}{
		{"success is acked", func(amqp.Delivery) error { return nil }, false, 1, 0, false},
		{"first failure is requeued", failing, false, 0, 1, true},
		{"failed redelivery is dropped", failing, true, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &settlement{}
			handleDelivery(delivery(ack, tt.redelivered), tt.handler)

			assert.Equal(t, tt.acked, ack.acked)
			assert.Equal(t, tt.nacked, ack.nacked)
			assert.Equal(t, tt.requeue, ack.requeue)
		})
	}
}

func TestHandleDelivery_PassesMessageThrough(t *testing.T) {
	var got amqp.Delivery
	ack := &settlement{}
	handleDelivery(delivery(ack, false), func(msg amqp.Delivery) error {
		got = msg
		return nil
	})

	assert.Equal(t, "order.status_changed", got.RoutingKey)
	assert.JSONEq(t, `{"order_id":"o1"}`, string(got.Body))
}

func TestHandleDelivery_SettleErrorIsSwallowed(t *testing.T) {
	ack := &settlement{err: errors.New("channel closed")}
	assert.NotPanics(t, func() {
		handleDelivery(delivery(ack, false), func(amqp.Delivery) error { return nil })
	})
	assert.Equal(t, 1, ack.acked)
}
