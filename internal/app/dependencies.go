package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/checkout"
	"github.com/vladislavdragonenkov/sweetcart/internal/client"
	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/health"
	"github.com/vladislavdragonenkov/sweetcart/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/sweetcart/internal/metrics"
	"github.com/vladislavdragonenkov/sweetcart/internal/session"
	"github.com/vladislavdragonenkov/sweetcart/internal/version"
)

// pushJobName — job, под которым метрики клиента уходят в Pushgateway.
const pushJobName = "sweetcart"

// Dependencies — собранный граф компонентов клиента.
type Dependencies struct {
	Config   Config
	Registry *prometheus.Registry
	Metrics  *metrics.CartMetrics

	KV       domain.KVStore
	Session  *session.Session
	API      *client.Client
	Catalog  *client.CatalogClient
	Orders   *client.OrderClient
	Producer *kafka.Producer
	Checkout *checkout.Service
	Health   *health.Handler

	logger  *log.Entry
	closeKV func() error
}

// initRuntimeDependencies открывает хранилище, гидрирует сессию и собирает клиентов API.
// Недоступная Kafka не считается ошибкой: события оформления просто не публикуются.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetricsWithRegisterer(registry)

	backend, err := initKVStore(ctx, cfg, logger.WithField("component", "storage"))
	if err != nil {
		return nil, err
	}

	sess := session.Open(backend.kv, session.Options{
		CartKey: cfg.CartKey,
		Logger:  logger.WithField("component", "session"),
		Metrics: cartMetrics,
	})

	api, err := client.New(client.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Token:   sess.Token,
		OnUnauthorized: func() {
			if err := sess.ClearToken(); err != nil {
				logger.WithError(err).Warn("failed to drop rejected auth token")
			}
		},
		Logger: logger.WithField("component", "api-client"),
	})
	if err != nil {
		_ = backend.close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)

	deps := &Dependencies{
		Config:   cfg,
		Registry: registry,
		Metrics:  cartMetrics,
		KV:       backend.kv,
		Session:  sess,
		API:      api,
		Catalog:  client.NewCatalogClient(api),
		Orders:   client.NewOrderClient(api),
		Producer: producer,
		logger:   logger,
		closeKV:  backend.close,
	}

	var publisher domain.EventPublisher
	if producer != nil {
		publisher = producer
	}
	deps.Checkout = checkout.NewService(
		sess.Cart(),
		deps.Catalog,
		deps.Orders,
		publisher,
		logger.WithField("component", "checkout"),
		cartMetrics,
	)
	deps.Health = newHealthHandler(deps, backend.ping)

	return deps, nil
}

// NewDependencies собирает зависимости по cfg. Вызывающий обязан вызвать Close.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return initRuntimeDependencies(ctx, cfg, logger)
}

func newHealthHandler(deps *Dependencies, pingKV func(ctx context.Context) error) *health.Handler {
	h := health.NewHandler(version.GetVersion())

	h.RegisterChecker("storage", health.NewSimpleChecker("storage", func(ctx context.Context) error {
		if err := pingKV(ctx); err != nil {
			return err
		}
		_, err := deps.KV.Get(deps.Config.CartKey)
		if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
			return err
		}
		return nil
	}))

	h.RegisterChecker("catalog", health.NewSimpleChecker("catalog", deps.Catalog.Health))

	if len(deps.Config.KafkaBrokers) > 0 {
		h.RegisterChecker("kafka", health.NewOptionalChecker("kafka", func(context.Context) error {
			if deps.Producer == nil {
				return errors.New("kafka producer is not connected")
			}
			return nil
		}))
	}

	return h
}

// PushMetrics отправляет метрики сессии в Pushgateway, если он настроен.
func (d *Dependencies) PushMetrics(ctx context.Context) error {
	if d == nil || d.Config.PushgatewayURL == "" {
		return nil
	}

	current := d.Session.Cart().Cart()
	d.Metrics.SetCartState(current.TotalItems, current.TotalAmount)

	err := push.New(d.Config.PushgatewayURL, pushJobName).
		Gatherer(d.Registry).
		Grouping("version", version.GetVersion()).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

// Close освобождает хранилище и producer.
func (d *Dependencies) Close() error {
	if d == nil {
		return nil
	}

	closeKafka(d.Producer, d.logger)

	if d.closeKV != nil {
		if err := d.closeKV(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}
