package postgres

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
)

func TestStatusHistoryRepository_PostgresAppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	orderRepo := NewOrderRepository(store)
	historyRepo := NewStatusHistoryRepository(store)

	createdAt := time.Now().UTC().Add(-time.Minute).Round(time.Microsecond)
	order := sampleBeerOrder("history-order", "customer-history", createdAt)
	if err := orderRepo.Create(order); err != nil {
		t.Fatalf("create order for history: %v", err)
	}

	// Zero occurred should be auto-filled.
	if err := historyRepo.Append(domain.StatusEvent{
		OrderID: order.ID,
		Status:  domain.OrderStatusNew,
		Version: 1,
	}); err != nil {
		t.Fatalf("append history event with zero occurred: %v", err)
	}

	explicitOccurred := createdAt.Add(10 * time.Second)
	if err := historyRepo.Append(domain.StatusEvent{
		OrderID:  order.ID,
		Status:   domain.OrderStatusValidationPending,
		Version:  2,
		Occurred: explicitOccurred,
	}); err != nil {
		t.Fatalf("append history event with explicit occurred: %v", err)
	}

	events, err := historyRepo.List(order.ID)
	if err != nil {
		t.Fatalf("list history events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 history events, got %d", len(events))
	}
	if events[0].Version != 1 || events[1].Version != 2 {
		t.Fatalf("events should be sorted by version asc: %+v", events)
	}
	if events[0].Status != domain.OrderStatusNew || events[1].Status != domain.OrderStatusValidationPending {
		t.Fatalf("unexpected event statuses: %+v", events)
	}
}

func TestStatusHistoryRepository_PostgresMissingOrder(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	historyRepo := NewStatusHistoryRepository(store)

	events, err := historyRepo.List("missing-order")
	if err != nil {
		t.Fatalf("list for missing order should not fail: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events for missing order, got %d", len(events))
	}
}
