package domain

// PageRequest описывает запрошенное окно постраничной выборки.
type PageRequest struct {
	// Page — номер страницы, начиная с нуля. Отрицательный номер трактуется как 0.
	Page int
	// Size — размер страницы. Нулевой размер даёт пустую страницу
	// с корректным общим количеством.
	Size int
}

// OrderPage — детерминированное окно заказов одного клиента.
type OrderPage struct {
	Content       []Order
	TotalElements int
	PageNumber    int
	PageSize      int
}
