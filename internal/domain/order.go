package domain

import (
	"net/url"
	"strings"
	"time"
)

// OrderLine представляет одну позицию заказа: сорт пива и количество.
type OrderLine struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// BeerID — внешний идентификатор сорта пива.
	BeerID string
	// OrderQuantity — заказанное количество единиц.
	OrderQuantity int32
	// QuantityAllocated — количество, уже зарезервированное на складе.
	QuantityAllocated int32
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует состояние пивного заказа и его позиции.
// Version — токен optimistic locking: каждая успешная мутация
// увеличивает его на единицу, запись с устаревшей версией отклоняется.
type Order struct {
	ID          string
	CustomerID  string
	CustomerRef string
	Status      OrderStatus
	Lines       []OrderLine
	CallbackURL string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrStatusUnknown)
	}

	for _, line := range o.Lines {
		if line.BeerID == "" {
			errs = append(errs, ErrLineBeerRequired)
		}
		if line.OrderQuantity <= 0 {
			errs = append(errs, ErrLineQuantityInvalid)
		}
		if line.QuantityAllocated < 0 || line.QuantityAllocated > line.OrderQuantity {
			errs = append(errs, ErrLineAllocationInvalid)
		}
	}

	if o.CallbackURL != "" {
		if err := ValidateCallbackURL(o.CallbackURL); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// ValidateCallbackURL проверяет, что строка является синтаксически корректным URI.
// Схема не обязательна: исторически callback регистрировались и как
// "host:port/path", такие адреса доводит до полного URL доставляющая сторона.
func ValidateCallbackURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrCallbackURLInvalid
	}
	if strings.ContainsAny(raw, " \t\n") {
		return ErrCallbackURLInvalid
	}
	if _, err := url.Parse(raw); err != nil {
		return ErrCallbackURLInvalid
	}
	return nil
}
