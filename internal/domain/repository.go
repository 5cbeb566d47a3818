package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByCustomer возвращает все заказы клиента, отсортированные
	// по дате создания (новые первыми), при равенстве — по ID по возрастанию.
	// Постраничную выборку поверх результата выполняет вызывающая сторона.
	ListByCustomer(customerID string) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking:
	// сравнение хранимой версии с order.Version и инкремент атомарны.
	// Возвращает сохранённый заказ с новой версией либо ErrOrderVersionConflict.
	Save(order Order) (Order, error)
}
