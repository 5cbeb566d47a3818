package domain_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
)

// allowedPairs перечисляет все разрешённые переходы — эталон для полного перебора.
func allowedPairs() map[[2]domain.OrderStatus]bool {
	pairs := map[[2]domain.OrderStatus]bool{
		{domain.OrderStatusNew, domain.OrderStatusValidationPending}:               true,
		{domain.OrderStatusValidationPending, domain.OrderStatusValidated}:         true,
		{domain.OrderStatusValidationPending, domain.OrderStatusValidationFailed}:  true,
		{domain.OrderStatusValidationFailed, domain.OrderStatusValidationPending}:  true,
		{domain.OrderStatusValidated, domain.OrderStatusAllocationPending}:         true,
		{domain.OrderStatusAllocationPending, domain.OrderStatusAllocated}:         true,
		{domain.OrderStatusAllocationPending, domain.OrderStatusAllocationFailed}:  true,
		{domain.OrderStatusAllocationFailed, domain.OrderStatusAllocationPending}:  true,
		{domain.OrderStatusAllocated, domain.OrderStatusReady}:                     true,
		{domain.OrderStatusReady, domain.OrderStatusPickedUp}:                      true,
		{domain.OrderStatusPickedUp, domain.OrderStatusDelivered}:                  true,
	}
	for _, status := range domain.AllStatuses() {
		if !status.Terminal() {
			pairs[[2]domain.OrderStatus{status, domain.OrderStatusCancelled}] = true
		}
	}
	return pairs
}

func TestCanTransition_FullTable(t *testing.T) {
	expected := allowedPairs()

	for _, from := range domain.AllStatuses() {
		for _, to := range domain.AllStatuses() {
			want := expected[[2]domain.OrderStatus{from, to}]
			got := domain.CanTransition(from, to)
			if got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransition_SameStatusIsNotATransition(t *testing.T) {
	for _, status := range domain.AllStatuses() {
		if domain.CanTransition(status, status) {
			t.Errorf("CanTransition(%s, %s) must be false", status, status)
		}
	}
}

func TestCanTransition_TerminalStatesHaveNoExits(t *testing.T) {
	for _, from := range []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
		for _, to := range domain.AllStatuses() {
			if domain.CanTransition(from, to) {
				t.Errorf("terminal status %s must not allow transition to %s", from, to)
			}
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	if domain.CanTransition("SHIPPED", domain.OrderStatusCancelled) {
		t.Fatal("transition from unknown status must be rejected")
	}
	if domain.CanTransition(domain.OrderStatusNew, "SHIPPED") {
		t.Fatal("transition to unknown status must be rejected")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := domain.ParseOrderStatus("VALIDATION_PENDING")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if status != domain.OrderStatusValidationPending {
		t.Fatalf("expected VALIDATION_PENDING, got %s", status)
	}

	if _, err := domain.ParseOrderStatus("validation_pending"); !errors.Is(err, domain.ErrStatusUnknown) {
		t.Fatalf("expected ErrStatusUnknown, got %v", err)
	}
}

func TestTerminal(t *testing.T) {
	terminal := map[domain.OrderStatus]bool{
		domain.OrderStatusDelivered: true,
		domain.OrderStatusCancelled: true,
	}
	for _, status := range domain.AllStatuses() {
		if status.Terminal() != terminal[status] {
			t.Errorf("Terminal(%s) = %v, want %v", status, status.Terminal(), terminal[status])
		}
	}
}
