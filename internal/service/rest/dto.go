package rest

import (
	"github.com/vladislavdragonenkov/beerorders/internal/domain"
	orderservice "github.com/vladislavdragonenkov/beerorders/internal/service/order"
)

// BeerOrderLineDTO — позиция заказа во внешнем представлении.
type BeerOrderLineDTO struct {
	ID                string `json:"id,omitempty"`
	BeerID            string `json:"beerId"`
	OrderQuantity     int32  `json:"orderQuantity"`
	QuantityAllocated int32  `json:"quantityAllocated"`
}

// BeerOrderDTO — заказ во внешнем представлении.
type BeerOrderDTO struct {
	ID                     string             `json:"id"`
	Version                int64              `json:"version"`
	CreatedDate            string             `json:"createdDate"`
	LastModifiedDate       string             `json:"lastModifiedDate"`
	CustomerID             string             `json:"customerId"`
	CustomerRef            string             `json:"customerRef,omitempty"`
	BeerOrderLines         []BeerOrderLineDTO `json:"beerOrderLines"`
	OrderStatus            string             `json:"orderStatus"`
	OrderStatusCallbackURL string             `json:"orderStatusCallbackUrl,omitempty"`
}

// BeerOrderPageDTO — постраничная выборка заказов клиента.
type BeerOrderPageDTO struct {
	Content       []BeerOrderDTO `json:"content"`
	TotalElements int            `json:"totalElements"`
	PageNumber    int            `json:"pageNumber"`
	PageSize      int            `json:"pageSize"`
}

// CreateBeerOrderRequest — тело запроса на создание заказа.
type CreateBeerOrderRequest struct {
	CustomerRef            string             `json:"customerRef"`
	OrderStatusCallbackURL string             `json:"orderStatusCallbackUrl"`
	BeerOrderLines         []BeerOrderLineDTO `json:"beerOrderLines"`
}

// UpdateStatusRequest — тело запроса на смену статуса заказа.
// Version защищает от lost update: переход применяется только
// к той версии заказа, которую видел вызывающий.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Version int64  `json:"version"`
}

// StatusHistoryEventDTO — одно событие истории статусов заказа.
type StatusHistoryEventDTO struct {
	Status    string `json:"status"`
	Version   int64  `json:"version"`
	Timestamp string `json:"timestamp"`
}

func toOrderDTO(order domain.Order) BeerOrderDTO {
	lines := make([]BeerOrderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, BeerOrderLineDTO{
			ID:                line.ID,
			BeerID:            line.BeerID,
			OrderQuantity:     line.OrderQuantity,
			QuantityAllocated: line.QuantityAllocated,
		})
	}

	return BeerOrderDTO{
		ID:                     order.ID,
		Version:                order.Version,
		CreatedDate:            order.CreatedAt.Format(domain.TimestampLayout),
		LastModifiedDate:       order.UpdatedAt.Format(domain.TimestampLayout),
		CustomerID:             order.CustomerID,
		CustomerRef:            order.CustomerRef,
		BeerOrderLines:         lines,
		OrderStatus:            order.Status.String(),
		OrderStatusCallbackURL: order.CallbackURL,
	}
}

func toOrderPageDTO(page domain.OrderPage) BeerOrderPageDTO {
	content := make([]BeerOrderDTO, 0, len(page.Content))
	for _, order := range page.Content {
		content = append(content, toOrderDTO(order))
	}

	return BeerOrderPageDTO{
		Content:       content,
		TotalElements: page.TotalElements,
		PageNumber:    page.PageNumber,
		PageSize:      page.PageSize,
	}
}

func toHistoryDTO(events []domain.StatusEvent) []StatusHistoryEventDTO {
	dto := make([]StatusHistoryEventDTO, 0, len(events))
	for _, event := range events {
		dto = append(dto, StatusHistoryEventDTO{
			Status:    event.Status.String(),
			Version:   event.Version,
			Timestamp: event.Occurred.Format(domain.TimestampLayout),
		})
	}
	return dto
}

func toCreateRequest(req CreateBeerOrderRequest) orderservice.CreateOrderRequest {
	lines := make([]orderservice.CreateOrderLine, 0, len(req.BeerOrderLines))
	for _, line := range req.BeerOrderLines {
		lines = append(lines, orderservice.CreateOrderLine{
			BeerID:   line.BeerID,
			Quantity: line.OrderQuantity,
		})
	}

	return orderservice.CreateOrderRequest{
		CustomerRef: req.CustomerRef,
		CallbackURL: req.OrderStatusCallbackURL,
		Lines:       lines,
	}
}
