package services

import (
	"encoding/json"
	"log"
	"time"
)

// Routing keys for order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher sends an event body to a broker. An empty exchange means
// the publisher's default.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	Previous   string    `json:"previous_status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Total      float64   `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PublisherFunc delivers events in-process, for running without a broker.
type PublisherFunc func(routingKey string, body []byte) error

// Publish calls f, ignoring the exchange.
func (f PublisherFunc) Publish(_, routingKey string, body []byte) error {
	return f(routingKey, body)
}

func publishOrderEvent(p EventPublisher, routingKey string, ev OrderEvent) {
	if p == nil {
		log.Println("Event publisher is not initialized. Skipping message publication.")
		return
	}
	ev.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := p.Publish("", routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", routingKey, ev.OrderID, err)
	}
}
