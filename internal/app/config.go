package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Поддерживаемые драйверы хранилища заказов.
const (
	StorageDriverFile   = "file"
	StorageDriverMemory = "memory"
)

// Config описывает настройки запуска сервиса. Значения читаются из окружения.
type Config struct {
	HTTPAddr    string `env:"BAKERY_HTTP_ADDR" envDefault:":3001"`
	MetricsAddr string `env:"BAKERY_METRICS_ADDR" envDefault:":9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// StorageDriver выбирает хранилище: file (по умолчанию) или memory для демо.
	StorageDriver string `env:"BAKERY_STORAGE_DRIVER" envDefault:"file"`
	OrdersPath    string `env:"BAKERY_ORDERS_PATH" envDefault:"data/order.json"`
	CatalogPath   string `env:"BAKERY_CATALOG_PATH" envDefault:"data/cakes.yaml"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	QRSize        int           `env:"QR_SIZE" envDefault:"256"`

	// Пустой SMTPHost отключает отправку писем.
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`
	ShopName     string `env:"SHOP_NAME"`

	KafkaBrokers   []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic     string   `env:"KAFKA_TOPIC" envDefault:"bakery.order.events"`
	EventQueueSize int      `env:"EVENT_QUEUE_SIZE" envDefault:"256"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig возвращает значения по умолчанию без чтения окружения.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:        ":3001",
		MetricsAddr:     ":9090",
		StorageDriver:   StorageDriverFile,
		OrdersPath:      "data/order.json",
		CatalogPath:     "data/cakes.yaml",
		LogLevel:        "info",
		CORSOrigins:     []string{"*"},
		NotifyTimeout:   10 * time.Second,
		QRSize:          256,
		SMTPPort:        587,
		KafkaTopic:      "bakery.order.events",
		EventQueueSize:  256,
		ShutdownTimeout: 5 * time.Second,
	}
}

// LoadConfig читает конфигурацию из переменных окружения процесса.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("BAKERY_HTTP_ADDR is empty"))
	}
	if c.MetricsAddr == "" {
		errs = append(errs, errors.New("BAKERY_METRICS_ADDR is empty"))
	}
	switch c.StorageDriver {
	case StorageDriverFile:
		if c.OrdersPath == "" {
			errs = append(errs, errors.New("BAKERY_ORDERS_PATH is empty"))
		}
	case StorageDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	if c.EventQueueSize <= 0 {
		errs = append(errs, errors.New("EVENT_QUEUE_SIZE must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.MailEnabled() {
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			errs = append(errs, fmt.Errorf("SMTP_PORT %d is out of range", c.SMTPPort))
		}
		if c.MailFrom == "" {
			errs = append(errs, errors.New("MAIL_FROM is required when SMTP_HOST is set"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// MailEnabled сообщает, настроена ли отправка писем.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// KafkaEnabled сообщает, нужно ли публиковать события заказов.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
