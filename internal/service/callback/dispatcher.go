package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/beerorders/internal/domain"
)

const (
	defaultWorkers        = 4
	defaultQueueSize      = 256
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 100 * time.Millisecond
	defaultMaxDelay       = 5 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

var (
	callbackAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beerorders_callback_attempts_total",
		Help: "Total number of callback delivery attempts grouped by result.",
	}, []string{"result"})
	callbackQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beerorders_callback_queue_depth",
		Help: "Current number of notifications waiting in the dispatch queue.",
	})
	callbackDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beerorders_callback_dropped_total",
		Help: "Total number of notifications dropped because the queue was full.",
	})
)

// FailureHook вызывается, когда уведомление окончательно не доставлено.
// Хук — точка наблюдаемости: ошибка доставки никогда не возвращается
// инициатору перехода.
type FailureHook func(n domain.StatusNotification, err error)

// Options задаёт параметры диспетчера callback-уведомлений.
type Options struct {
	Logger         *log.Entry
	HTTPClient     *http.Client
	DLQPublisher   domain.DeadLetterPublisher
	FailureHook    FailureHook
	Workers        int
	QueueSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	MaxDelay       time.Duration
}

// Option настраивает Dispatcher.
type Option func(*Options)

// WithLogger задаёт logger для диспетчера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithHTTPClient задаёт HTTP-клиент доставки.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithDLQPublisher задаёт publisher для недоставленных уведомлений.
func WithDLQPublisher(publisher domain.DeadLetterPublisher) Option {
	return func(opts *Options) {
		opts.DLQPublisher = publisher
	}
}

// WithFailureHook задаёт хук окончательных ошибок доставки.
func WithFailureHook(hook FailureHook) Option {
	return func(opts *Options) {
		opts.FailureHook = hook
	}
}

// WithWorkers задаёт число параллельных воркеров доставки.
func WithWorkers(workers int) Option {
	return func(opts *Options) {
		opts.Workers = workers
	}
}

// WithQueueSize задаёт ёмкость очереди уведомлений.
func WithQueueSize(size int) Option {
	return func(opts *Options) {
		opts.QueueSize = size
	}
}

// WithMaxAttempts задаёт число попыток доставки перед отказом.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *Options) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *Options) {
		opts.RetryBaseDelay = delay
	}
}

// WithMaxDelay задаёт верхнюю границу backoff-паузы.
func WithMaxDelay(delay time.Duration) Option {
	return func(opts *Options) {
		opts.MaxDelay = delay
	}
}

// Dispatcher доставляет уведомления о смене статуса на callback URL заказа.
// Доставка at-least-once с ограниченным числом попыток: каждая доставка
// выполняется независимо, под retry уведомления одного заказа могут
// приходить не по порядку — получатель сверяет версию из payload.
type Dispatcher struct {
	queue          chan domain.StatusNotification
	client         *http.Client
	dlq            domain.DeadLetterPublisher
	failureHook    FailureHook
	logger         *log.Entry
	workers        int
	maxAttempts    int
	retryBaseDelay time.Duration
	maxDelay       time.Duration

	wg sync.WaitGroup
}

// NewDispatcher создаёт диспетчер callback-уведомлений.
func NewDispatcher(options ...Option) *Dispatcher {
	opts := Options{
		Workers:        defaultWorkers,
		QueueSize:      defaultQueueSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
		MaxDelay:       defaultMaxDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "callback-dispatcher")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}

	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}

	return &Dispatcher{
		queue:          make(chan domain.StatusNotification, opts.QueueSize),
		client:         client,
		dlq:            opts.DLQPublisher,
		failureHook:    opts.FailureHook,
		logger:         logger,
		workers:        opts.Workers,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
		maxDelay:       opts.MaxDelay,
	}
}

// Enqueue ставит уведомление в очередь доставки, не блокируя вызывающую сторону.
// При переполненной очереди уведомление отбрасывается с записью в лог.
func (d *Dispatcher) Enqueue(n domain.StatusNotification) {
	select {
	case d.queue <- n:
		callbackQueueDepth.Set(float64(len(d.queue)))
	default:
		callbackDropped.Inc()
		d.logger.WithFields(log.Fields{
			"order_id": n.OrderID,
			"status":   n.Status,
		}).Warn("callback queue is full, notification dropped")
		err := fmt.Errorf("queue overflow: %w", domain.ErrCallbackExhausted)
		d.publishDeadLetter(n, err)
		d.notifyFailure(n, err)
	}
}

// QueueDepth возвращает текущее число уведомлений в очереди.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

// QueueCapacity возвращает ёмкость очереди доставки.
func (d *Dispatcher) QueueCapacity() int {
	return cap(d.queue)
}

// Run запускает воркеры доставки до отмены ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.worker(ctx)
		}()
	}
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			callbackQueueDepth.Set(float64(len(d.queue)))
			d.dispatch(ctx, n)
		}
	}
}

// callbackPayload — тело POST-запроса к callback URL.
type callbackPayload struct {
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	Version   int64  `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (d *Dispatcher) dispatch(ctx context.Context, n domain.StatusNotification) {
	target, err := resolveCallbackURL(n.CallbackURL)
	if err != nil {
		// Структурно недоставляемый адрес: retry бессмысленны.
		callbackAttempts.WithLabelValues("permanent").Inc()
		d.logger.WithError(err).WithFields(log.Fields{
			"order_id":     n.OrderID,
			"callback_url": n.CallbackURL,
		}).Error("callback url is undeliverable")
		d.publishDeadLetter(n, err)
		d.notifyFailure(n, err)
		return
	}

	if err := d.deliverWithRetry(ctx, target, n); err != nil {
		callbackAttempts.WithLabelValues("failed").Inc()
		d.logger.WithError(err).WithFields(log.Fields{
			"order_id": n.OrderID,
			"status":   n.Status,
			"version":  n.Version,
		}).Error("callback delivery failed after retries")
		d.publishDeadLetter(n, err)
		d.notifyFailure(n, err)
		return
	}
}

func (d *Dispatcher) deliverWithRetry(ctx context.Context, target string, n domain.StatusNotification) error {
	body, err := json.Marshal(callbackPayload{
		OrderID:   n.OrderID,
		Status:    n.Status.String(),
		Version:   n.Version,
		Timestamp: n.OccurredAt.Format(domain.TimestampLayout),
	})
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.post(ctx, target, body)
		if err == nil {
			callbackAttempts.WithLabelValues("delivered").Inc()
			if attempt > 1 {
				d.logger.WithFields(log.Fields{
					"order_id": n.OrderID,
					"attempt":  attempt,
				}).Info("callback delivered after retry")
			}
			return nil
		}
		lastErr = err
		callbackAttempts.WithLabelValues("retry_error").Inc()

		if attempt >= d.maxAttempts {
			break
		}

		delay := d.retryBackoff(attempt)
		d.logger.WithError(err).WithFields(log.Fields{
			"order_id": n.OrderID,
			"attempt":  attempt,
			"delay":    delay,
		}).Warn("callback delivery failed, retrying")

		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("delivery failed after %d attempts: %v: %w", d.maxAttempts, lastErr, domain.ErrCallbackExhausted)
}

func (d *Dispatcher) post(ctx context.Context, target string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post callback: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback endpoint returned %d", resp.StatusCode)
	}
	return nil
}

func (d *Dispatcher) retryBackoff(attempt int) time.Duration {
	if d.retryBaseDelay <= 0 {
		return 0
	}

	delay := d.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > d.maxDelay/2 {
			return d.maxDelay
		}
		delay *= 2
	}
	if delay > d.maxDelay {
		delay = d.maxDelay
	}
	return delay
}

func (d *Dispatcher) publishDeadLetter(n domain.StatusNotification, deliveryErr error) {
	if d.dlq == nil {
		return
	}
	if err := d.dlq.PublishDeadLetter(n, deliveryErr); err != nil {
		d.logger.WithError(err).WithField("order_id", n.OrderID).Warn("failed to publish dead letter")
	}
}

func (d *Dispatcher) notifyFailure(n domain.StatusNotification, err error) {
	if d.failureHook == nil {
		return
	}
	d.failureHook(n, err)
}

// resolveCallbackURL приводит зарегистрированный адрес к абсолютному URL.
// Адреса вида host:port/path дополняются схемой http, исторически
// callback регистрировались и без схемы.
func resolveCallbackURL(raw string) (string, error) {
	if err := domain.ValidateCallbackURL(raw); err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrCallbackPermanent)
	}

	parsed, err := url.Parse(raw)
	if err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
		return parsed.String(), nil
	}

	withScheme, err := url.Parse("http://" + raw)
	if err != nil || withScheme.Host == "" {
		return "", fmt.Errorf("cannot resolve %q: %w", raw, domain.ErrCallbackPermanent)
	}
	return withScheme.String(), nil
}
