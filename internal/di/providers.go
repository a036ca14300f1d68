package di

import (
	"context"
	"fmt"
	"time"

	"TradeDesk/internal/agents"
	domrepo "TradeDesk/internal/domain/repository"
	"TradeDesk/internal/domain/service"
	"TradeDesk/internal/exchange"
	"TradeDesk/internal/handler/api"
	"TradeDesk/internal/indicators"
	"TradeDesk/internal/llm"
	"TradeDesk/internal/marketdata"
	mid "TradeDesk/internal/middleware"
	internalrepo "TradeDesk/internal/repository"
	"TradeDesk/internal/usecase"
	"TradeDesk/pkg/cache"
	pkgch "TradeDesk/pkg/clickhouse"
	"TradeDesk/pkg/config"
	xhttp "TradeDesk/pkg/http"
	pkgkafka "TradeDesk/pkg/kafka"
	applogger "TradeDesk/pkg/logger"
	"TradeDesk/pkg/metrics"
	"TradeDesk/pkg/server"
)

// ProvideLogger builds the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCacheManager creates the named-partition cache manager.
func ProvideCacheManager() *cache.Manager {
	return cache.NewManager()
}

// ProvideRedisCache connects to Redis when enabled; returns nil when
// disabled so the provider runs on the in-memory layer alone.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	r := cfg.Cache.Redis
	if !r.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(r.Host),
		cache.WithRedisPort(r.Port),
		cache.WithRedisPassword(r.Password),
		cache.WithRedisDB(r.DB),
		cache.WithRedisPool(r.PoolSize, r.MinIdleConns, r.PoolTimeout),
		cache.WithRedisPrefix(r.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideMarketSource creates the Yahoo-backed source.
func ProvideMarketSource(cfg *config.Config, log *applogger.Logger) marketdata.Source {
	return marketdata.NewYahooSource(log,
		marketdata.WithRateLimit(cfg.MarketData.RateLimit.PerSecond, cfg.MarketData.RateLimit.Burst),
		marketdata.WithHistoryDays(cfg.MarketData.HistoryDays),
	)
}

// ProvideFallbackGenerator creates the synthetic data generator.
func ProvideFallbackGenerator() *marketdata.FallbackGenerator {
	return marketdata.NewFallbackGenerator()
}

// ProvideCalculator creates the indicator calculator.
func ProvideCalculator(cfg *config.Config) *indicators.Calculator {
	t := cfg.Technical
	return indicators.NewCalculator(indicators.Config{
		RSIPeriod:       t.RSIPeriod,
		MACDFast:        t.MACDFast,
		MACDSlow:        t.MACDSlow,
		MACDSignal:      t.MACDSignal,
		MAShortPeriod:   t.MAShortPeriod,
		MALongPeriod:    t.MALongPeriod,
		BollingerPeriod: t.BollingerPeriod,
		BollingerK:      t.BollingerK,
		VolumePeriod:    t.VolumePeriod,
	})
}

// ProvideMarketDataProvider wires the cached, retrying provider.
func ProvideMarketDataProvider(
	cfg *config.Config,
	source marketdata.Source,
	fallback *marketdata.FallbackGenerator,
	calc *indicators.Calculator,
	manager *cache.Manager,
	redis *cache.RedisCache,
	m domrepo.Metrics,
	log *applogger.Logger,
) *marketdata.Provider {
	return marketdata.NewProvider(source, fallback, calc, manager, redis, m, log,
		marketdata.WithRetries(cfg.MarketData.MaxRetries, cfg.MarketData.RetryDelay),
		marketdata.WithFallbackEnabled(!cfg.MarketData.DisableFallback),
		marketdata.WithTTLs(cfg.Cache.MarketDataTTL, cfg.Cache.IndicatorsTTL),
		marketdata.WithCacheLimits(cfg.Cache.MaxSize, cfg.Cache.CleanupInterval),
		marketdata.WithMinHistory(cfg.Technical.MALongPeriod),
	)
}

// ProvideTextGenerator returns the Ollama client when LLM is enabled,
// the static generator otherwise.
func ProvideTextGenerator(cfg *config.Config, m domrepo.Metrics, log *applogger.Logger) service.TextGenerator {
	if !cfg.LLM.Enabled {
		return llm.Static{}
	}
	return llm.NewOllamaClient(cfg.LLM.BaseURL, m, log,
		llm.WithModel(cfg.LLM.Model),
		llm.WithTimeout(cfg.LLM.Timeout),
	)
}

// ProvideExchange creates the simulated exchange quoting off the live
// provider.
func ProvideExchange(provider *marketdata.Provider, m domrepo.Metrics, log *applogger.Logger) *exchange.Exchange {
	return exchange.New(provider, m, log)
}

// ProvideClickHouseClient connects to ClickHouse and prepares the
// schema; nil when storage is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	ch := cfg.Storage.ClickHouse
	if !ch.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideDecisionStore backs persistence with ClickHouse when wired,
// the noop store otherwise.
func ProvideDecisionStore(chClient *pkgch.Client, log *applogger.Logger) domrepo.DecisionStore {
	if chClient == nil {
		return internalrepo.NoopStore{}
	}
	return internalrepo.NewCHDecisionStore(chClient, log)
}

// ProvideKafkaProducer creates the event producer; nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	k := cfg.Events.Kafka
	if !k.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.MaxAttempts),
		pkgkafka.WithBatchSize(k.BatchSize),
		pkgkafka.WithBatchTimeout(k.Linger),
		pkgkafka.WithTimeouts(k.WriteTimeout, k.WriteTimeout),
		pkgkafka.WithAsync(k.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideHub creates the websocket broadcast hub.
func ProvideHub(log *applogger.Logger) *api.Hub {
	return api.NewHub(log)
}

// ProvideEventPipeline assembles the fan-out pipeline with whichever
// sinks are enabled.
func ProvideEventPipeline(
	cfg *config.Config,
	m domrepo.Metrics,
	log *applogger.Logger,
	producer *pkgkafka.Producer,
	hub *api.Hub,
) *mid.EventPipeline {
	pipe := mid.NewEventPipeline(m, log, mid.WithBufferSize(cfg.Events.BufferSize))
	pipe.AddSink(hub)
	if producer != nil {
		pipe.AddSink(internalrepo.NewKafkaEventSink(producer, cfg.Events.Kafka.Topic))
	}
	return pipe
}

// ProvideDesk assembles the nine-agent desk.
func ProvideDesk(
	cfg *config.Config,
	provider *marketdata.Provider,
	ex *exchange.Exchange,
	store domrepo.DecisionStore,
	pipeline *mid.EventPipeline,
	m domrepo.Metrics,
	gen service.TextGenerator,
	log *applogger.Logger,
) *usecase.Desk {
	return usecase.NewDesk(provider, ex, store, pipeline, m, gen, log,
		usecase.WithBatchSize(cfg.Session.BatchSize),
		usecase.WithMaxParallel(cfg.Session.MaxParallel),
		usecase.WithDiscussionRounds(cfg.Session.DiscussionRounds),
		usecase.WithContextWindow(cfg.Session.ContextWindow),
		usecase.WithAgentOptions(agents.WithHistoryCapacity(cfg.Session.HistoryCapacity)),
	)
}

// ProvideMonitor creates the background monitor; nil when disabled or
// no symbols are configured.
func ProvideMonitor(cfg *config.Config, provider *marketdata.Provider, log *applogger.Logger) *usecase.Monitor {
	if !cfg.Monitor.Enabled || len(cfg.Monitor.Symbols) == 0 {
		return nil
	}
	return usecase.NewMonitor(provider, cfg.Monitor.Symbols, log,
		usecase.WithInterval(cfg.Monitor.Interval),
		usecase.WithMoveThreshold(cfg.Monitor.MoveThreshold),
		usecase.WithRSIBounds(cfg.Monitor.RSILow, cfg.Monitor.RSIHigh),
	)
}

// ProvideDeskHandler creates the HTTP handler.
func ProvideDeskHandler(log *applogger.Logger, desk *usecase.Desk, hub *api.Hub) *api.DeskHandler {
	return api.NewDeskHandler(log, desk, hub)
}

// ProvideHTTPServer mounts the handler on the echo server.
func ProvideHTTPServer(cfg *config.Config, handler *api.DeskHandler, log *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	return xhttp.NewServer(handler, log, opts...)
}

// ProvideApp bundles the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	desk *usecase.Desk,
	monitor *usecase.Monitor,
	pipeline *mid.EventPipeline,
	store domrepo.DecisionStore,
	srv *xhttp.Server,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, desk, monitor, pipeline, store, srv, chClient)
}
