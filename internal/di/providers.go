package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"EGXAdvisor/internal/domain/repository"
	domsvc "EGXAdvisor/internal/domain/service"
	"EGXAdvisor/internal/handler/api"
	mid "EGXAdvisor/internal/middleware"
	internalrepo "EGXAdvisor/internal/repository"
	"EGXAdvisor/internal/service/ratelimit"
	"EGXAdvisor/internal/service/tradingview"
	"EGXAdvisor/internal/services/forecast"
	"EGXAdvisor/internal/services/strategy"
	"EGXAdvisor/internal/usecase"
	pkgcache "EGXAdvisor/pkg/cache"
	pkgch "EGXAdvisor/pkg/clickhouse"
	"EGXAdvisor/pkg/config"
	pkgkafka "EGXAdvisor/pkg/kafka"
	applogger "EGXAdvisor/pkg/logger"
	"EGXAdvisor/pkg/metrics"
	"EGXAdvisor/pkg/queue"
	"EGXAdvisor/pkg/server"

	goredis "github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	db := databaseName(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s
			(dt Date, symbol String, open Float64, high Float64, low Float64, close Float64, volume Float64)
			ENGINE=ReplacingMergeTree ORDER BY (symbol, dt)`, db, barsTable(cfg)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s
			(ts DateTime, symbol String, price Float64, volume Float64, source String, event_id String)
			ENGINE=MergeTree ORDER BY (symbol, ts)`, db, quotesTable(cfg)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s
			(symbol String, as_of DateTime, recorded_at DateTime, action String, conviction Int32, regime String,
			 entry_lower Float64, entry_upper Float64, target_exit Float64, stop_loss Float64,
			 risk_distance_pct Float64, logic_summary String)
			ENGINE=MergeTree ORDER BY (symbol, recorded_at)`, db, journalTable(cfg)),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

func databaseName(cfg *config.Config) string {
	if cfg.ClickHouse.Database != "" {
		return cfg.ClickHouse.Database
	}
	return "egxadvisor"
}

func barsTable(cfg *config.Config) string {
	if cfg.ClickHouse.BarsTable != "" {
		return cfg.ClickHouse.BarsTable
	}
	return "eod_bars"
}

func quotesTable(cfg *config.Config) string {
	if cfg.ClickHouse.QuotesTable != "" {
		return cfg.ClickHouse.QuotesTable
	}
	return "quotes_raw"
}

func journalTable(cfg *config.Config) string {
	if cfg.ClickHouse.JournalTable != "" {
		return cfg.ClickHouse.JournalTable
	}
	return "trade_journal"
}

func qualified(cfg *config.Config, table string) string {
	return databaseName(cfg) + "." + table
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideQuoteStorage creates ClickHouse quote storage.
func ProvideQuoteStorage(chClient *pkgch.Client, cfg *config.Config) repository.QuoteStorage {
	return internalrepo.NewClickHouseQuoteStorage(chClient.DB(), qualified(cfg, quotesTable(cfg)))
}

// ProvideQuotePublisher creates a Kafka quote publisher.
func ProvideQuotePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaQuotePublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaQuotesHandler registers the handler for the quotes topic.
func ProvideKafkaQuotesHandler(store repository.QuoteStorage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaQuotesHandler {
	return usecase.NewKafkaQuotesHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideQuoteStream creates the exchange quote WebSocket stream.
func ProvideQuoteStream(cfg *config.Config) repository.MarketStream {
	return tradingview.New(
		cfg.Stream.AuthToken,
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
}

// ProvideQuoteProcessor creates the quote processor use case.
func ProvideQuoteProcessor(
	pub repository.Publisher,
	store repository.QuoteStorage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.QuoteProcessor {
	return usecase.NewQuoteProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideQuoteCollector creates the quote collector use case.
func ProvideQuoteCollector(
	stream repository.MarketStream,
	processor *usecase.QuoteProcessor,
	metrics repository.Metrics,
) *usecase.QuoteCollector {
	// Build middleware pipeline between WebSocket and backend
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewQuoteCollector(stream, processor, metrics, pipe)
}

// ProvideBarStore creates the EOD bar store.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.BarStore {
	s := internalrepo.NewCHBarStore(chClient, qualified(cfg, barsTable(cfg)))
	s.SetLogger(l)
	return s
}

// ProvideJournalStore creates the trade journal store.
func ProvideJournalStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.JournalStore {
	s := internalrepo.NewCHJournalStore(chClient, qualified(cfg, journalTable(cfg)))
	s.SetLogger(l)
	return s
}

// ProvideCache creates the recommendation cache. With Redis enabled the
// layered memory-over-Redis cache is used; otherwise memory only.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Advisor.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Advisor.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("advisor.redis.addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("advisor.redis.addr port: %w", err)
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Advisor.Redis.Password),
		pkgcache.WithRedisDB(cfg.Advisor.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideForecaster creates the ML forecast service client. A nil
// forecaster degrades recommendations to hold via the missing-input gate.
func ProvideForecaster(cfg *config.Config) domsvc.Forecaster {
	if cfg.Forecast.ServiceURL == "" {
		return nil
	}
	return forecast.NewHTTPForecaster(cfg)
}

// ProvideStrategyEngine builds the decision engine from config, falling
// back to the default tuning when no weights are set.
func ProvideStrategyEngine(cfg *config.Config) (*strategy.Engine, error) {
	sc := strategy.DefaultConfig()
	w := cfg.Advisor.Weights
	if w.ML+w.Technical+w.Regime+w.Risk != 0 {
		sc.Weights = strategy.Weights{
			ML:        w.ML,
			Technical: w.Technical,
			Regime:    w.Regime,
			Risk:      w.Risk,
		}
	}
	return strategy.NewEngine(sc)
}

// ProvideAdvisor assembles the advisor use case.
func ProvideAdvisor(
	bars repository.BarStore,
	journal repository.JournalStore,
	forecaster domsvc.Forecaster,
	engine *strategy.Engine,
	c pkgcache.Service,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Advisor {
	return usecase.NewAdvisor(usecase.AdvisorParams{
		Bars:         bars,
		Journal:      journal,
		Forecaster:   forecaster,
		Engine:       engine,
		Cache:        c,
		Limiter:      ratelimit.New(),
		Metrics:      metrics,
		Logger:       l,
		CacheTTL:     cfg.Advisor.CacheTTL,
		RiskLookback: cfg.Advisor.RiskLookback,
	})
}

// ProvideBarsUseCase creates the bars query use case.
func ProvideBarsUseCase(bars repository.BarStore) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(bars)
}

// ProvideJobQueue creates the Redis-backed background job queue and
// registers the universe scan job. Returns nil when Redis is disabled.
func ProvideJobQueue(cfg *config.Config, advisor *usecase.Advisor, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Advisor.Redis.Enabled {
		return nil
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Advisor.Redis.Addr,
		Password: cfg.Advisor.Redis.Password,
		DB:       cfg.Advisor.Redis.DB,
	})
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    2,
		QueueSize:  100,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix("egxadvisor:queue"))
	q.RegisterJob(usecase.NewUniverseScanJob(advisor, l))

	// Aggregate repeated error logs through the queue
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          "logs.error.aggregated",
		Publisher:      q,
	})
	return q
}

// ProvideAdvisorHandler creates the Echo HTTP handler.
func ProvideAdvisorHandler(
	l *applogger.Logger,
	advisor *usecase.Advisor,
	bars *usecase.BarsUseCase,
	jobs *queue.RedisQueue,
) *api.AdvisorEchoHandler {
	var svc queue.QueueService
	if jobs != nil {
		svc = jobs
	}
	return api.NewAdvisorEchoHandler(l, advisor, bars, svc)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaQuotesHandler,
	chClient *pkgch.Client,
	handler *api.AdvisorEchoHandler,
	jobs *queue.RedisQueue,
) *server.App {
	// Attach hook to consumer: NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	if jobs != nil {
		app.SetJobQueue(jobs)
	}
	if collector != nil {
		app.QuoteProc = collector.Processor()
	}
	return app
}
