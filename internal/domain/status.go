package domain

// OrderStatus описывает стадию жизненного цикла пивного заказа.
type OrderStatus string

const (
	// OrderStatusNew — заказ создан и ещё не отправлен на проверку.
	OrderStatusNew OrderStatus = "NEW"
	// OrderStatusValidationPending — заказ отправлен на проверку позиций.
	OrderStatusValidationPending OrderStatus = "VALIDATION_PENDING"
	// OrderStatusValidated — проверка позиций прошла успешно.
	OrderStatusValidated OrderStatus = "VALIDATED"
	// OrderStatusValidationFailed — проверка позиций завершилась ошибкой, допускается повтор.
	OrderStatusValidationFailed OrderStatus = "VALIDATION_FAILED"
	// OrderStatusAllocationPending — заказ ожидает резервирования на складе.
	OrderStatusAllocationPending OrderStatus = "ALLOCATION_PENDING"
	// OrderStatusAllocated — все позиции зарезервированы.
	OrderStatusAllocated OrderStatus = "ALLOCATED"
	// OrderStatusAllocationFailed — резервирование не удалось, допускается повтор.
	OrderStatusAllocationFailed OrderStatus = "ALLOCATION_FAILED"
	// OrderStatusReady — заказ собран и готов к выдаче.
	OrderStatusReady OrderStatus = "READY"
	// OrderStatusPickedUp — заказ забран покупателем или перевозчиком.
	OrderStatusPickedUp OrderStatus = "PICKED_UP"
	// OrderStatusDelivered — заказ доставлен; терминальный статус.
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled — заказ отменён; терминальный статус.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// transitions задаёт разрешённые переходы между статусами.
// Ребро CANCELLED добавляется отдельно для всех нетерминальных статусов.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusNew:               {OrderStatusValidationPending},
	OrderStatusValidationPending: {OrderStatusValidated, OrderStatusValidationFailed},
	OrderStatusValidated:         {OrderStatusAllocationPending},
	OrderStatusValidationFailed:  {OrderStatusValidationPending},
	OrderStatusAllocationPending: {OrderStatusAllocated, OrderStatusAllocationFailed},
	OrderStatusAllocationFailed:  {OrderStatusAllocationPending},
	OrderStatusAllocated:         {OrderStatusReady},
	OrderStatusReady:             {OrderStatusPickedUp},
	OrderStatusPickedUp:          {OrderStatusDelivered},
	OrderStatusDelivered:         nil,
	OrderStatusCancelled:         nil,
}

// AllStatuses возвращает полный набор статусов в порядке жизненного цикла.
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusNew,
		OrderStatusValidationPending,
		OrderStatusValidated,
		OrderStatusValidationFailed,
		OrderStatusAllocationPending,
		OrderStatusAllocated,
		OrderStatusAllocationFailed,
		OrderStatusReady,
		OrderStatusPickedUp,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal сообщает, является ли статус терминальным: из него нет переходов.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// String возвращает строковое представление статуса.
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransition решает, разрешён ли переход current -> target.
// Функция чистая: никакого состояния, только таблица переходов.
// Переход в текущий статус не считается переходом и возвращает false;
// идемпотентную обработку такого запроса выполняет вызывающая сторона.
func CanTransition(current, target OrderStatus) bool {
	if !current.Valid() || !target.Valid() {
		return false
	}
	if current == target {
		return false
	}
	if target == OrderStatusCancelled {
		return !current.Terminal()
	}
	for _, allowed := range transitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ParseOrderStatus разбирает статус из внешнего представления.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if !status.Valid() {
		return "", ErrStatusUnknown
	}
	return status, nil
}
