package order_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
	"github.com/vladislavdragonenkov/beerorders/internal/service/order"
)

// makeOrders строит n заказов, уже отсортированных по убыванию даты создания.
func makeOrders(n int) []domain.Order {
	base := time.Now().UTC()
	orders := make([]domain.Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, domain.Order{
			ID:         fmt.Sprintf("order-%02d", i),
			CustomerID: "customer-1",
			Status:     domain.OrderStatusNew,
			CreatedAt:  base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return orders
}

func TestPaginate_Window(t *testing.T) {
	orders := makeOrders(5)

	page := order.Paginate(orders, domain.PageRequest{Page: 1, Size: 2}, 100)
	if page.TotalElements != 5 {
		t.Fatalf("expected total 5, got %d", page.TotalElements)
	}
	if len(page.Content) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(page.Content))
	}
	if page.Content[0].ID != "order-02" || page.Content[1].ID != "order-03" {
		t.Fatalf("unexpected window: %s, %s", page.Content[0].ID, page.Content[1].ID)
	}
}

func TestPaginate_LastPartialPage(t *testing.T) {
	orders := makeOrders(5)

	page := order.Paginate(orders, domain.PageRequest{Page: 2, Size: 2}, 100)
	if len(page.Content) != 1 {
		t.Fatalf("expected 1 order on last page, got %d", len(page.Content))
	}
	if page.Content[0].ID != "order-04" {
		t.Fatalf("expected order-04, got %s", page.Content[0].ID)
	}
}

func TestPaginate_PageBeyondEnd(t *testing.T) {
	orders := makeOrders(3)

	page := order.Paginate(orders, domain.PageRequest{Page: 7, Size: 2}, 100)
	if len(page.Content) != 0 {
		t.Fatalf("expected empty content, got %d", len(page.Content))
	}
	if page.TotalElements != 3 {
		t.Fatalf("total must survive out-of-range page, got %d", page.TotalElements)
	}
}

func TestPaginate_HugePageNumber(t *testing.T) {
	orders := makeOrders(2)

	// Номер страницы, при котором number*size переполняет int
	page := order.Paginate(orders, domain.PageRequest{Page: math.MaxInt/2 + 1, Size: 3}, 100)
	if len(page.Content) != 0 {
		t.Fatalf("expected empty content, got %d", len(page.Content))
	}
	if page.TotalElements != 2 {
		t.Fatalf("total must survive huge page number, got %d", page.TotalElements)
	}

	page = order.Paginate(orders, domain.PageRequest{Page: math.MaxInt, Size: math.MaxInt}, 0)
	if len(page.Content) != 0 {
		t.Fatalf("expected empty content, got %d", len(page.Content))
	}
}

func TestPaginate_NegativePageIsZero(t *testing.T) {
	orders := makeOrders(3)

	page := order.Paginate(orders, domain.PageRequest{Page: -4, Size: 2}, 100)
	if page.PageNumber != 0 {
		t.Fatalf("expected page 0, got %d", page.PageNumber)
	}
	if len(page.Content) != 2 || page.Content[0].ID != "order-00" {
		t.Fatalf("negative page must behave as the first page")
	}
}

func TestPaginate_ZeroSize(t *testing.T) {
	orders := makeOrders(4)

	page := order.Paginate(orders, domain.PageRequest{Page: 0, Size: 0}, 100)
	if len(page.Content) != 0 {
		t.Fatalf("expected empty content, got %d", len(page.Content))
	}
	if page.TotalElements != 4 {
		t.Fatalf("expected total 4, got %d", page.TotalElements)
	}
}

func TestPaginate_SizeClampedToMax(t *testing.T) {
	orders := makeOrders(10)

	page := order.Paginate(orders, domain.PageRequest{Page: 0, Size: 500}, 3)
	if page.PageSize != 3 {
		t.Fatalf("expected clamped size 3, got %d", page.PageSize)
	}
	if len(page.Content) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(page.Content))
	}
}

func TestPaginate_EmptyInput(t *testing.T) {
	page := order.Paginate(nil, domain.PageRequest{Page: 0, Size: 10}, 100)
	if page.Content == nil {
		t.Fatal("content must be an empty slice, not nil")
	}
	if len(page.Content) != 0 || page.TotalElements != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}
