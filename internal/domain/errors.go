package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка отсутствующего идентификатора пива в позиции.
	ErrLineBeerRequired = errors.New("line beer_id is required")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrLineQuantityInvalid = errors.New("line quantity must be greater than zero")
	// Ошибка, если зарезервировано меньше нуля или больше заказанного.
	ErrLineAllocationInvalid = errors.New("line allocated quantity must be between 0 and ordered quantity")
	// Ошибка синтаксически некорректного callback URL.
	ErrCallbackURLInvalid = errors.New("callback url is not a well-formed uri")
	// ErrStatusUnknown возвращается при неизвестном статусе заказа.
	ErrStatusUnknown = errors.New("unknown order status")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории
	// или принадлежит другому клиенту.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrOrderAlreadyExists возвращается при создании заказа с занятым ID.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrIllegalTransition возвращается, когда таблица переходов запрещает смену статуса.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrCallbackPermanent — доставка уведомления невозможна структурно (битый URL),
	// повторные попытки бессмысленны.
	ErrCallbackPermanent = errors.New("callback delivery permanently failed")
	// ErrCallbackExhausted — попытки доставки уведомления исчерпаны.
	ErrCallbackExhausted = errors.New("callback delivery attempts exhausted")
	// Ошибка отсутствующего ключа идемпотентности.
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	// Ошибка отсутствующего хеша запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// ErrIdempotencyHashMismatch — ключ уже использован с другим телом запроса.
	ErrIdempotencyHashMismatch = errors.New("idempotency key already used with different request")
	// ErrIdempotencyKeyAlreadyExists — запись по ключу уже создана.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// ErrIdempotencyKeyNotFound — запись по ключу идемпотентности отсутствует.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsIllegalTransition проверяет, является ли ошибка запрещённым переходом статуса.
func IsIllegalTransition(err error) bool {
	return errors.Is(err, ErrIllegalTransition)
}
