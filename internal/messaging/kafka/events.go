package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"

	// Callback события
	EventTypeCallbackDead EventType = "callback.dead_letter"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "beerorders.order.events"
	TopicDeadLetterQueue = "beerorders.callbacks.dlq" // недоставленные callback-уведомления
)

// OrderStatusEvent представляет событие смены статуса заказа
type OrderStatusEvent struct {
	EventType  EventType `json:"event_type"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Status     string    `json:"status"`
	Version    int64     `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

// DeadLetterEvent представляет недоставленное callback-уведомление
type DeadLetterEvent struct {
	EventType   EventType `json:"event_type"`
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	Status      string    `json:"status"`
	Version     int64     `json:"version"`
	CallbackURL string    `json:"callback_url"`
	Error       string    `json:"error"`
	FailedAt    time.Time `json:"failed_at"`
}

// NewOrderStatusEvent создает новое событие смены статуса заказа
func NewOrderStatusEvent(eventType EventType, orderID, customerID, status string, version int64) *OrderStatusEvent {
	return &OrderStatusEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     status,
		Version:    version,
		Timestamp:  time.Now(),
	}
}
