package rest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
	orderservice "github.com/vladislavdragonenkov/beerorders/internal/service/order"
)

const (
	// IdempotencyKeyHeader — заголовок с ключом идемпотентности создания заказа.
	IdempotencyKeyHeader = "Idempotency-Key"

	defaultIdempotencyTTL = 24 * time.Hour
	maxRequestBodyBytes   = 1 << 20
)

// Options задаёт параметры HTTP handler.
type Options struct {
	Logger         *log.Entry
	Idempotency    domain.IdempotencyRepository
	IdempotencyTTL time.Duration
	RequestTimeout time.Duration
}

// Option настраивает Handler.
type Option func(*Options)

// WithLogger задаёт logger для handler.
func WithLogger(logger *log.Entry) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithIdempotency включает поддержку заголовка Idempotency-Key на создании заказа.
func WithIdempotency(repo domain.IdempotencyRepository) Option {
	return func(o *Options) {
		o.Idempotency = repo
	}
}

// WithIdempotencyTTL задаёт время жизни ключей идемпотентности.
func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.IdempotencyTTL = ttl
		}
	}
}

// WithRequestTimeout задаёт таймаут обработки одного запроса.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.RequestTimeout = timeout
		}
	}
}

// Handler обслуживает REST API заказов.
type Handler struct {
	orders         *orderservice.Service
	idempotency    domain.IdempotencyRepository
	idempotencyTTL time.Duration
	requestTimeout time.Duration
	logger         *log.Entry
}

// NewHandler создает новый HTTP handler поверх сервиса заказов.
func NewHandler(orders *orderservice.Service, options ...Option) *Handler {
	opts := &Options{
		Logger:         log.WithField("component", "rest-handler"),
		IdempotencyTTL: defaultIdempotencyTTL,
		RequestTimeout: 60 * time.Second,
	}
	for _, option := range options {
		option(opts)
	}

	return &Handler{
		orders:         orders,
		idempotency:    opts.Idempotency,
		idempotencyTTL: opts.IdempotencyTTL,
		requestTimeout: opts.RequestTimeout,
		logger:         opts.Logger,
	}
}

// Router собирает chi router со всеми маршрутами API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(h.requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", IdempotencyKeyHeader},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers/{customerId}/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrder)
			r.Get("/{orderId}", h.getOrder)
		})

		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Put("/status", h.updateStatus)
			r.Get("/history", h.getHistory)
		})
	})

	return r
}

// listOrders обрабатывает GET /api/v1/customers/{customerId}/orders
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	page, err := parsePageRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.orders.ListOrders(customerID, page)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderPageDTO(result))
}

// getOrder обрабатывает GET /api/v1/customers/{customerId}/orders/{orderId}
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")
	orderID := chi.URLParam(r, "orderId")

	order, err := h.orders.GetOrderByID(customerID, orderID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderDTO(order))
}

// createOrder обрабатывает POST /api/v1/customers/{customerId}/orders
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	key := r.Header.Get(IdempotencyKeyHeader)
	if key != "" && h.idempotency != nil {
		h.createOrderIdempotent(w, customerID, key, body)
		return
	}

	status, payload := h.doCreateOrder(customerID, body)
	h.writeRaw(w, status, payload)
}

// createOrderIdempotent выполняет создание заказа под ключом идемпотентности.
// Повтор с тем же ключом и телом возвращает сохранённый ответ,
// тот же ключ с другим телом отклоняется.
func (h *Handler) createOrderIdempotent(w http.ResponseWriter, customerID, key string, body []byte) {
	hash := requestHash(body)

	_, err := h.idempotency.CreateProcessing(key, hash, time.Now().UTC().Add(h.idempotencyTTL))
	if err != nil {
		if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
			h.logger.WithError(err).Error("failed to register idempotency key")
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		record, getErr := h.idempotency.Get(key)
		if getErr != nil {
			h.logger.WithError(getErr).Error("failed to load idempotency record")
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if record.RequestHash != hash {
			h.writeError(w, http.StatusConflict, "idempotency key already used with different request")
			return
		}

		if record.Status == domain.IdempotencyStatusProcessing {
			h.writeError(w, http.StatusConflict, "request with this idempotency key is being processed")
			return
		}

		h.writeRaw(w, record.HTTPStatus, record.ResponseBody)
		return
	}

	status, payload := h.doCreateOrder(customerID, body)

	var markErr error
	if status >= http.StatusBadRequest {
		markErr = h.idempotency.MarkFailed(key, payload, status)
	} else {
		markErr = h.idempotency.MarkDone(key, payload, status)
	}
	if markErr != nil {
		h.logger.WithError(markErr).WithField("idempotency_key", key).
			Warn("failed to store idempotency response")
	}

	h.writeRaw(w, status, payload)
}

// doCreateOrder разбирает тело, создаёт заказ и возвращает готовый HTTP-ответ.
func (h *Handler) doCreateOrder(customerID string, body []byte) (int, []byte) {
	var req CreateBeerOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, errorBody("invalid request body")
	}

	order, err := h.orders.CreateOrder(customerID, toCreateRequest(req))
	if err != nil {
		status, message := domainErrorStatus(err)
		return status, errorBody(message)
	}

	payload, err := json.Marshal(toOrderDTO(order))
	if err != nil {
		h.logger.WithError(err).Error("failed to encode order response")
		return http.StatusInternalServerError, errorBody("internal server error")
	}

	return http.StatusCreated, payload
}

// updateStatus обрабатывает PUT /api/v1/orders/{orderId}/status
func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.TransitionOrder(orderID, target, req.Version)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toOrderDTO(order))
}

// getHistory обрабатывает GET /api/v1/orders/{orderId}/history
func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	events, err := h.orders.GetStatusHistory(orderID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toHistoryDTO(events))
}

func parsePageRequest(r *http.Request) (domain.PageRequest, error) {
	// Отсутствующие параметры означают размер по умолчанию.
	page := domain.PageRequest{Page: 0, Size: -1}

	query := r.URL.Query()

	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return domain.PageRequest{}, errors.New("page must be an integer")
		}
		page.Page = parsed
	}

	if raw := query.Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return domain.PageRequest{}, errors.New("size must be an integer")
		}
		page.Size = parsed
	}

	return page, nil
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// domainErrorStatus отображает доменную ошибку в HTTP статус и сообщение.
func domainErrorStatus(err error) (int, string) {
	var validationErr *orderservice.ValidationError

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.Is(err, domain.ErrStatusUnknown):
		return http.StatusBadRequest, domain.ErrStatusUnknown.Error()
	case domain.IsIllegalTransition(err):
		return http.StatusUnprocessableEntity, err.Error()
	case domain.IsVersionConflict(err):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status, message := domainErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}
	h.writeError(w, status, message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("failed to encode JSON response")
	}
}

func (h *Handler) writeRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(payload); err != nil {
		h.logger.WithError(err).Error("failed to write response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeRaw(w, status, errorBody(message))
}

func errorBody(message string) []byte {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return payload
}
