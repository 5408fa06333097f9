package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"StockX/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"log"`
	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8000" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10m"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Metrics struct {
		Enabled     bool          `yaml:"enabled" default:"true"`
		Path        string        `yaml:"path" default:"/metrics"`
		SlowRequest time.Duration `yaml:"slow_request" default:"10s"`
	} `yaml:"metrics"`
	Tracing struct {
		Enabled     bool   `yaml:"enabled"`
		ServiceName string `yaml:"service_name" default:"stockx"`
	} `yaml:"tracing"`
	Model struct {
		WindowSize         int     `yaml:"window_size" default:"60" validate:"gte=2"`
		LSTMUnits          []int   `yaml:"lstm_units" default:"[50,50]" validate:"min=1,dive,gte=1"`
		DenseUnits         []int   `yaml:"dense_units" default:"[25]" validate:"dive,gte=1"`
		LearningRate       float64 `yaml:"learning_rate" default:"0.001" validate:"gt=0"`
		BatchSize          int     `yaml:"batch_size" default:"32" validate:"gte=1"`
		ValidationFraction float64 `yaml:"validation_fraction" default:"0.2" validate:"gte=0,lt=1"`
		DefaultEpochs      int     `yaml:"default_epochs" default:"10" validate:"gte=1"`
		MaxEpochs          int     `yaml:"max_epochs" default:"500" validate:"gtefield=DefaultEpochs"`
		Seed               int64   `yaml:"seed" default:"42"`
		Shuffle            bool    `yaml:"shuffle" default:"true"`
	} `yaml:"model"`
	Prediction struct {
		LookbackDays int `yaml:"lookback_days" default:"120" validate:"gte=1"`
	} `yaml:"prediction"`
	Timeouts struct {
		News    time.Duration `yaml:"news" default:"10s" validate:"gt=0,lte=10s"`
		Price   time.Duration `yaml:"price" default:"5s" validate:"gt=0,lte=5s"`
		History time.Duration `yaml:"history" default:"30s" validate:"gt=0"`
	} `yaml:"timeouts"`
	Artifacts struct {
		Backend  string        `yaml:"backend" default:"file" validate:"oneof=file s3"`
		Dir      string        `yaml:"dir" default:"models"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"5m"`
		S3       struct {
			Bucket       string `yaml:"bucket"`
			Prefix       string `yaml:"prefix" default:"models"`
			Region       string `yaml:"region" default:"us-east-1"`
			Endpoint     string `yaml:"endpoint"`
			UsePathStyle bool   `yaml:"use_path_style"`
		} `yaml:"s3"`
	} `yaml:"artifacts"`
	PriceFeed struct {
		Provider     string        `yaml:"provider" default:"yfinance" validate:"oneof=yfinance chart"`
		ChartURL     string        `yaml:"chart_url" default:"https://query1.finance.yahoo.com/v8/finance/chart"`
		CacheTTL     time.Duration `yaml:"cache_ttl" default:"5m"`
		TopCompanies []string      `yaml:"top_companies" default:"[\"AAPL\",\"MSFT\",\"AMZN\",\"GOOGL\",\"TSLA\",\"NVDA\",\"META\"]"`
	} `yaml:"price_feed"`
	News struct {
		Provider       string  `yaml:"provider" default:"newsapi" validate:"oneof=newsapi rss"`
		APIKey         string  `yaml:"api_key"`
		BaseURL        string  `yaml:"base_url" default:"https://newsapi.org/v2/everything"`
		RSSURL         string  `yaml:"rss_url" default:"https://news.google.com/rss/search"`
		WindowDays     int     `yaml:"window_days" default:"10" validate:"gte=1"`
		MaxItems       int     `yaml:"max_items" default:"20" validate:"gte=1,lte=100"`
		Language       string  `yaml:"language" default:"en"`
		SortBy         string  `yaml:"sort_by" default:"publishedAt"`
		TitleScorer    string  `yaml:"title_scorer" default:"lexicon" validate:"oneof=lexicon polarity"`
		ContentScorer  string  `yaml:"content_scorer" default:"polarity" validate:"oneof=lexicon polarity"`
		ExtractContent bool    `yaml:"extract_content"`
		RateCapacity   int     `yaml:"rate_capacity" default:"10" validate:"gte=1"`
		RateRefill     float64 `yaml:"rate_refill_per_sec" default:"1" validate:"gt=0"`
	} `yaml:"news"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host" default:"localhost"`
		Port     int           `yaml:"port" default:"6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix" default:"stockx"`
		PoolSize int           `yaml:"pool_size" default:"10" validate:"gte=1"`
		LockTTL  time.Duration `yaml:"lock_ttl" default:"30m"`
	} `yaml:"redis"`
	Queue struct {
		Workers    int           `yaml:"workers" default:"1" validate:"gte=1"`
		BufferSize int           `yaml:"buffer_size" default:"64" validate:"gte=1"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"30s"`
		JobTimeout time.Duration `yaml:"job_timeout" default:"30m"`
	} `yaml:"queue"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Topics       struct {
			TrainRequests    string `yaml:"train_requests" default:"stockx.train.requests"`
			TrainingEvents   string `yaml:"training_events" default:"stockx.training.events"`
			PredictionEvents string `yaml:"prediction_events" default:"stockx.prediction.events"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"stockx-trainer"`
			Workers    int           `yaml:"workers" default:"1"`
			BufferSize int           `yaml:"buffer_size" default:"16"`
			RetryMax   int           `yaml:"retry_max" default:"0"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"1s"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"30s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"stockx.train.requests.dlq"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Recorder struct {
		Backend string `yaml:"backend" default:"sqlite" validate:"oneof=none sqlite clickhouse"`
		SQLite  struct {
			Path string `yaml:"path" default:"data/predictions.db"`
		} `yaml:"sqlite"`
	} `yaml:"recorder"`
	ClickHouse struct {
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"default"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		AsyncInsert  bool          `yaml:"async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecTime  time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Scheduler struct {
		Enabled bool     `yaml:"enabled"`
		Cron    string   `yaml:"cron" default:"0 30 22 * * 1-5"`
		Symbols []string `yaml:"symbols"`
		Epochs  int      `yaml:"epochs" default:"10" validate:"gte=1"`
	} `yaml:"scheduler"`
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
}

var validate = validator.New()

// Default returns a configuration populated only from defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := getenv("ARTIFACT_DIR"); v != "" {
		c.Artifacts.Dir = v
	}
	c.Server.Port = util.ParseIntDefault(getenv("PORT"), c.Server.Port)
	if v := getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
		c.Redis.Enabled = true
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("S3_BUCKET"); v != "" {
		c.Artifacts.S3.Bucket = v
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Artifacts.Backend == "s3" && c.Artifacts.S3.Bucket == "" {
		return fmt.Errorf("artifacts.s3.bucket is required for the s3 backend")
	}
	if c.Artifacts.Backend == "file" && c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir is required for the file backend")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required when telegram is enabled")
	}
	if c.Scheduler.Enabled && len(c.Scheduler.Symbols) == 0 {
		return fmt.Errorf("scheduler.symbols is required when the scheduler is enabled")
	}
	if c.Recorder.Backend == "sqlite" && c.Recorder.SQLite.Path == "" {
		return fmt.Errorf("recorder.sqlite.path is required for the sqlite recorder")
	}
	return nil
}
