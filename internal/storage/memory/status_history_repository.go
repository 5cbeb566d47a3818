package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
)

// statusHistoryRepositoryInMemory хранит историю статусов в памяти (для разработки/тестов).
type statusHistoryRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.StatusEvent
}

// NewStatusHistoryRepository создаёт in-memory реализацию StatusHistoryRepository.
func NewStatusHistoryRepository() domain.StatusHistoryRepository {
	return &statusHistoryRepositoryInMemory{events: make(map[string][]domain.StatusEvent)}
}

// Append добавляет событие смены статуса в хранилище.
func (r *statusHistoryRepositoryInMemory) Append(event domain.StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.OrderID] = append(r.events[event.OrderID], event)

	// Под конкурентными переходами события могут прийти не по порядку,
	// держим срез отсортированным по версии заказа.
	sort.Slice(r.events[event.OrderID], func(i, j int) bool {
		return r.events[event.OrderID][i].Version < r.events[event.OrderID][j].Version
	})

	return nil
}

// List возвращает события заказа в порядке возрастания версии.
func (r *statusHistoryRepositoryInMemory) List(orderID string) ([]domain.StatusEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[orderID]
	result := make([]domain.StatusEvent, len(events))
	copy(result, events)
	return result, nil
}

var _ domain.StatusHistoryRepository = (*statusHistoryRepositoryInMemory)(nil)
