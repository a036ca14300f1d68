package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"TradeDesk/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Logging struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	LLM struct {
		Enabled bool          `yaml:"enabled"`
		BaseURL string        `yaml:"base_url" default:"http://localhost:11434"`
		Model   string        `yaml:"model" default:"llama3"`
		Timeout time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"llm"`
	MarketData struct {
		MaxRetries      int           `yaml:"max_retries" default:"3" validate:"gte=1"`
		RetryDelay      time.Duration `yaml:"retry_delay" default:"1s"`
		DisableFallback bool          `yaml:"disable_fallback"`
		HistoryDays     int           `yaml:"history_days" default:"90" validate:"gt=0"`
		RateLimit       struct {
			PerSecond float64 `yaml:"per_second" default:"5"`
			Burst     int     `yaml:"burst" default:"10"`
		} `yaml:"rate_limit"`
	} `yaml:"market_data"`
	Cache struct {
		MarketDataTTL   time.Duration `yaml:"market_data_ttl" default:"5m"`
		IndicatorsTTL   time.Duration `yaml:"indicators_ttl" default:"10m"`
		MaxSize         int           `yaml:"max_size" default:"1000" validate:"gt=0"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" default:"30m"`
		Redis           struct {
			Enabled      bool          `yaml:"enabled"`
			Host         string        `yaml:"host" default:"localhost"`
			Port         int           `yaml:"port" default:"6379"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			PoolSize     int           `yaml:"pool_size" default:"10"`
			MinIdleConns int           `yaml:"min_idle_conns" default:"5"`
			PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
			Prefix       string        `yaml:"prefix" default:"tradedesk"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Technical struct {
		RSIPeriod       int     `yaml:"rsi_period" default:"14" validate:"gt=1"`
		MACDFast        int     `yaml:"macd_fast" default:"12" validate:"gt=0"`
		MACDSlow        int     `yaml:"macd_slow" default:"26" validate:"gt=0"`
		MACDSignal      int     `yaml:"macd_signal" default:"9" validate:"gt=0"`
		MAShortPeriod   int     `yaml:"ma_short_period" default:"20" validate:"gt=0"`
		MALongPeriod    int     `yaml:"ma_long_period" default:"50" validate:"gt=0"`
		BollingerPeriod int     `yaml:"bollinger_period" default:"20" validate:"gt=1"`
		BollingerK      float64 `yaml:"bollinger_k" default:"2"`
		VolumePeriod    int     `yaml:"volume_period" default:"20" validate:"gt=0"`
	} `yaml:"technical"`
	Session struct {
		BatchSize        int `yaml:"batch_size" default:"4" validate:"gt=0"`
		MaxParallel      int `yaml:"max_parallel" default:"4" validate:"gt=0"`
		DiscussionRounds int `yaml:"discussion_rounds" default:"2" validate:"gte=0"`
		ContextWindow    int `yaml:"context_window" default:"5" validate:"gt=0"`
		HistoryCapacity  int `yaml:"history_capacity" default:"256" validate:"gt=0"`
	} `yaml:"session"`
	Monitor struct {
		Enabled       bool          `yaml:"enabled"`
		Interval      time.Duration `yaml:"interval" default:"30s"`
		Symbols       []string      `yaml:"symbols"`
		MoveThreshold float64       `yaml:"move_threshold" default:"2"`
		RSILow        float64       `yaml:"rsi_low" default:"25"`
		RSIHigh       float64       `yaml:"rsi_high" default:"75"`
	} `yaml:"monitor"`
	Events struct {
		BufferSize int `yaml:"buffer_size" default:"256" validate:"gt=0"`
		Kafka      struct {
			Enabled      bool          `yaml:"enabled"`
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"desk.events"`
			RequiredAcks int           `yaml:"required_acks" default:"1"`
			Compression  string        `yaml:"compression" default:"snappy"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async" default:"true"`
		} `yaml:"kafka"`
	} `yaml:"events"`
	Storage struct {
		ClickHouse struct {
			Enabled          bool          `yaml:"enabled"`
			Host             string        `yaml:"host" default:"localhost"`
			Port             int           `yaml:"port" default:"9000"`
			Database         string        `yaml:"database" default:"tradedesk"`
			User             string        `yaml:"user" default:"default"`
			Password         string        `yaml:"password"`
			AsyncInsert      bool          `yaml:"async_insert" default:"true"`
			WaitForAsync     bool          `yaml:"wait_for_async_insert"`
			DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		} `yaml:"clickhouse"`
	} `yaml:"storage"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			c.Cache.Redis.Port = util.ParseIntDefault(port, c.Cache.Redis.Port)
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("MONITOR_SYMBOLS"); v != "" {
		c.Monitor.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("MONITOR_MOVE_THRESHOLD"); v != "" {
		c.Monitor.MoveThreshold = util.ParseFloatDefault(v, c.Monitor.MoveThreshold)
	}

	return c, nil
}

// Default returns a configuration with all default values applied,
// without reading a file.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Technical.MACDFast >= c.Technical.MACDSlow {
		return fmt.Errorf("technical.macd_fast must be less than technical.macd_slow")
	}
	if c.Events.Kafka.Enabled && len(c.Events.Kafka.Brokers) == 0 {
		return fmt.Errorf("events.kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
