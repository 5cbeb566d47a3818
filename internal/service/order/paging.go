package order

import "github.com/vladislavdragonenkov/beerorders/internal/domain"

// Paginate вычисляет детерминированное окно над уже отсортированным
// списком заказов клиента. Отрицательный номер страницы трактуется как 0,
// размер страницы обрезается сверху до maxSize (maxSize <= 0 — без ограничения).
// Нулевой размер даёт пустую страницу с корректным общим количеством.
func Paginate(orders []domain.Order, page domain.PageRequest, maxSize int) domain.OrderPage {
	number := page.Page
	if number < 0 {
		number = 0
	}

	size := page.Size
	if size < 0 {
		size = 0
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}

	result := domain.OrderPage{
		Content:       []domain.Order{},
		TotalElements: len(orders),
		PageNumber:    number,
		PageSize:      size,
	}
	if size == 0 {
		return result
	}

	// number*size может переполниться при огромном номере страницы:
	// страница за последним элементом всегда пуста, умножать не нужно.
	if number > (len(orders)-1)/size {
		return result
	}

	from := number * size

	to := from + size
	if to > len(orders) {
		to = len(orders)
	}

	result.Content = append(result.Content, orders[from:to]...)
	return result
}
