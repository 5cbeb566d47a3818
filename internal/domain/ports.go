package domain

import "time"

// StatusNotification — уведомление о смене статуса заказа для callback-доставки.
// Версия заказа входит в payload: под retry уведомления могут приходить
// не по порядку, и получатель отбрасывает устаревшие по версии.
type StatusNotification struct {
	OrderID     string
	CustomerID  string
	Status      OrderStatus
	Version     int64
	CallbackURL string
	OccurredAt  time.Time
}

// CallbackQueue принимает уведомления для фоновой доставки.
// Постановка в очередь не блокирует вызывающую сторону и не возвращает
// ошибок доставки: доставка best-effort и развязана с транзакцией перехода.
type CallbackQueue interface {
	Enqueue(n StatusNotification)
}

// DeadLetterPublisher получает уведомления, доставить которые не удалось
// после исчерпания всех попыток.
type DeadLetterPublisher interface {
	PublishDeadLetter(n StatusNotification, deliveryErr error) error
}

// StatusEventPublisher публикует события смены статуса во внешний брокер.
type StatusEventPublisher interface {
	PublishStatusChanged(order Order) error
}

// StatusEvent описывает одно событие смены статуса в истории заказа.
type StatusEvent struct {
	OrderID  string
	Status   OrderStatus
	Version  int64
	Occurred time.Time
}

// StatusHistoryRepository хранит историю смен статуса заказа.
type StatusHistoryRepository interface {
	Append(event StatusEvent) error
	List(orderID string) ([]StatusEvent, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}
