package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
	"github.com/vladislavdragonenkov/beerorders/internal/metrics"
)

const (
	defaultPageSize = 25
	defaultMaxSize  = 100
)

// CreateOrderLine — одна позиция запроса на создание заказа.
type CreateOrderLine struct {
	BeerID   string
	Quantity int32
}

// CreateOrderRequest описывает запрос на создание заказа.
type CreateOrderRequest struct {
	CustomerRef string
	CallbackURL string
	Lines       []CreateOrderLine
}

// ValidationError агрегирует нарушенные инварианты запроса.
type ValidationError struct {
	Violations []error
}

// Error возвращает все нарушения одной строкой.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, violation := range e.Violations {
		parts = append(parts, violation.Error())
	}
	return strings.Join(parts, "; ")
}

// Options задаёт параметры сервиса заказов.
type Options struct {
	Logger          *log.Entry
	EventPublisher  domain.StatusEventPublisher
	Metrics         *metrics.OrderMetrics
	DefaultPageSize int
	MaxPageSize     int
}

// Option настраивает Service.
type Option func(*Options)

// WithLogger задаёт logger для сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithEventPublisher задаёт publisher событий смены статуса (опционально).
func WithEventPublisher(publisher domain.StatusEventPublisher) Option {
	return func(opts *Options) {
		opts.EventPublisher = publisher
	}
}

// WithMetrics задаёт метрики операций над заказами.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithDefaultPageSize задаёт размер страницы, когда клиент его не указал.
func WithDefaultPageSize(size int) Option {
	return func(opts *Options) {
		opts.DefaultPageSize = size
	}
}

// WithMaxPageSize задаёт верхнюю границу размера страницы.
func WithMaxPageSize(size int) Option {
	return func(opts *Options) {
		opts.MaxPageSize = size
	}
}

// Service реализует операции жизненного цикла заказов поверх репозитория.
// Сервис не держит блокировок по заказу: линеаризуемость мутаций
// обеспечивает проверка версии на границе репозитория.
type Service struct {
	repo      domain.OrderRepository
	history   domain.StatusHistoryRepository
	callbacks domain.CallbackQueue
	events    domain.StatusEventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry

	defaultPageSize int
	maxPageSize     int
}

// NewService конструирует сервис заказов.
// callbacks может быть nil: тогда уведомления не планируются.
func NewService(
	repo domain.OrderRepository,
	history domain.StatusHistoryRepository,
	callbacks domain.CallbackQueue,
	options ...Option,
) *Service {
	opts := Options{
		DefaultPageSize: defaultPageSize,
		MaxPageSize:     defaultMaxSize,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = defaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaultMaxSize
	}
	if opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = opts.MaxPageSize
	}

	return &Service{
		repo:            repo,
		history:         history,
		callbacks:       callbacks,
		events:          opts.EventPublisher,
		metrics:         opts.Metrics,
		logger:          logger,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
	}
}

// GetOrderByID возвращает заказ клиента.
// Чужой заказ неотличим от несуществующего: в обоих случаях ErrOrderNotFound.
func (s *Service) GetOrderByID(customerID, orderID string) (domain.Order, error) {
	order, err := s.repo.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.CustomerID != customerID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders возвращает постраничную выборку заказов клиента.
// Отрицательный размер страницы трактуется как размер по умолчанию.
func (s *Service) ListOrders(customerID string, page domain.PageRequest) (domain.OrderPage, error) {
	if page.Size < 0 {
		page.Size = s.defaultPageSize
	}

	orders, err := s.repo.ListByCustomer(customerID)
	if err != nil {
		return domain.OrderPage{}, fmt.Errorf("list orders: %w", err)
	}

	return Paginate(orders, page, s.maxPageSize), nil
}

// CreateOrder создаёт заказ в статусе NEW.
func (s *Service) CreateOrder(customerID string, req CreateOrderRequest) (domain.Order, error) {
	now := time.Now().UTC()

	lines := make([]domain.OrderLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, domain.OrderLine{
			ID:            uuid.NewString(),
			BeerID:        line.BeerID,
			OrderQuantity: line.Quantity,
			CreatedAt:     now,
		})
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		CustomerRef: req.CustomerRef,
		Status:      domain.OrderStatusNew,
		Lines:       lines,
		CallbackURL: req.CallbackURL,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if violations := order.ValidateInvariants(); len(violations) > 0 {
		return domain.Order{}, &ValidationError{Violations: violations}
	}

	if err := s.repo.Create(order); err != nil {
		s.logger.WithError(err).Error("failed to create order")
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.appendHistory(order)
	s.publishStatusEvent(order)
	s.metrics.OrderCreated()

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"lines":       len(order.Lines),
	}).Info("order created")

	return order, nil
}

// TransitionOrder переводит заказ в target при совпадении версии.
// Запрос перехода в текущий статус — идемпотентный no-op: заказ
// возвращается как есть, callback не планируется.
func (s *Service) TransitionOrder(orderID string, target domain.OrderStatus, expectedVersion int64) (domain.Order, error) {
	started := time.Now()

	if !target.Valid() {
		return domain.Order{}, domain.ErrStatusUnknown
	}

	order, err := s.repo.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if order.Version != expectedVersion {
		s.metrics.VersionConflict()
		return domain.Order{}, fmt.Errorf("expected version %d, stored %d: %w",
			expectedVersion, order.Version, domain.ErrOrderVersionConflict)
	}

	if order.Status == target {
		s.metrics.TransitionNoop()
		return order, nil
	}

	if !domain.CanTransition(order.Status, target) {
		s.metrics.IllegalTransition()
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", order.Status, target, domain.ErrIllegalTransition)
	}

	order.Status = target
	order.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.Save(order)
	if err != nil {
		if domain.IsVersionConflict(err) {
			s.metrics.VersionConflict()
			return domain.Order{}, err
		}
		s.logger.WithError(err).WithField("order_id", orderID).Error("failed to save transition")
		return domain.Order{}, fmt.Errorf("save transition: %w", err)
	}

	s.appendHistory(saved)
	s.publishStatusEvent(saved)
	s.scheduleCallback(saved)
	s.metrics.TransitionApplied(target.String(), time.Since(started))

	s.logger.WithFields(log.Fields{
		"order_id": saved.ID,
		"status":   saved.Status,
		"version":  saved.Version,
	}).Info("order transitioned")

	return saved, nil
}

// GetStatusHistory возвращает историю смен статуса заказа.
func (s *Service) GetStatusHistory(orderID string) ([]domain.StatusEvent, error) {
	if _, err := s.repo.Get(orderID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(orderID)
}

// scheduleCallback ставит уведомление в очередь доставки, если у заказа
// зарегистрирован callback URL. Постановка не блокирует переход.
func (s *Service) scheduleCallback(order domain.Order) {
	if s.callbacks == nil || order.CallbackURL == "" {
		return
	}

	s.callbacks.Enqueue(domain.StatusNotification{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		Status:      order.Status,
		Version:     order.Version,
		CallbackURL: order.CallbackURL,
		OccurredAt:  order.UpdatedAt,
	})
	s.metrics.CallbackScheduled()
}

func (s *Service) appendHistory(order domain.Order) {
	if s.history == nil {
		return
	}
	event := domain.StatusEvent{
		OrderID:  order.ID,
		Status:   order.Status,
		Version:  order.Version,
		Occurred: order.UpdatedAt,
	}
	if err := s.history.Append(event); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to append status history")
	}
}

func (s *Service) publishStatusEvent(order domain.Order) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishStatusChanged(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish status event")
	}
}
