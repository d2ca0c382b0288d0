package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status.changed"
)

// OrderEvent is emitted after an order mutation has been committed.
type OrderEvent struct {
	Type           string            `json:"type"`
	OrderID        uuid.UUID         `json:"orderId"`
	OrderNumber    string            `json:"orderNumber"`
	PreviousStatus OrderStatus       `json:"previousStatus,omitempty"`
	CurrentStatus  OrderStatus       `json:"currentStatus"`
	ActorID        string            `json:"actorId,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
