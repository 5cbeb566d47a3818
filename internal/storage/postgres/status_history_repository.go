package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
)

type statusHistoryRepository struct {
	db *sql.DB
}

// NewStatusHistoryRepository создаёт PostgreSQL-реализацию StatusHistoryRepository.
func NewStatusHistoryRepository(store *Store) domain.StatusHistoryRepository {
	return &statusHistoryRepository{db: store.DB()}
}

func (r *statusHistoryRepository) Append(event domain.StatusEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, version, occurred)
		VALUES ($1,$2,$3,$4)
	`, event.OrderID, string(event.Status), event.Version, event.Occurred); err != nil {
		return fmt.Errorf("append status history event: %w", err)
	}

	return nil
}

func (r *statusHistoryRepository) List(orderID string) ([]domain.StatusEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, status, version, occurred
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY version ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	events := make([]domain.StatusEvent, 0)
	for rows.Next() {
		var event domain.StatusEvent
		var status string
		if err := rows.Scan(&event.OrderID, &status, &event.Version, &event.Occurred); err != nil {
			return nil, fmt.Errorf("scan status history event: %w", err)
		}
		event.Status = domain.OrderStatus(status)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status history events: %w", err)
	}

	return events, nil
}

var _ domain.StatusHistoryRepository = (*statusHistoryRepository)(nil)
