package memory_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
	"github.com/vladislavdragonenkov/beerorders/internal/storage/memory"
)

func TestStatusHistoryRepository_AppendList(t *testing.T) {
	repo := memory.NewStatusHistoryRepository()
	now := time.Now().UTC()

	// Добавляем события не по порядку версий.
	events := []domain.StatusEvent{
		{OrderID: "order-1", Status: domain.OrderStatusValidated, Version: 3, Occurred: now.Add(2 * time.Second)},
		{OrderID: "order-1", Status: domain.OrderStatusNew, Version: 1, Occurred: now},
		{OrderID: "order-1", Status: domain.OrderStatusValidationPending, Version: 2, Occurred: now.Add(time.Second)},
	}
	for _, event := range events {
		if err := repo.Append(event); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	stored, err := repo.List("order-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 events, got %d", len(stored))
	}
	for i, wantVersion := range []int64{1, 2, 3} {
		if stored[i].Version != wantVersion {
			t.Fatalf("position %d: expected version %d, got %d", i, wantVersion, stored[i].Version)
		}
	}
}

func TestStatusHistoryRepository_ListUnknownOrder(t *testing.T) {
	repo := memory.NewStatusHistoryRepository()
	events, err := repo.List("missing")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty history, got %d events", len(events))
	}
}
