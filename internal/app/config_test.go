package app

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":3001", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, StorageDriverFile, cfg.StorageDriver)
	assert.Equal(t, "data/order.json", cfg.OrdersPath)
	assert.Equal(t, 10*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.MailEnabled())
	assert.False(t, cfg.KafkaEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsMatchDefaultConfig(t *testing.T) {
	cfg, err := loadConfig(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	cfg, err := loadConfig(env.Options{Environment: map[string]string{
		"BAKERY_HTTP_ADDR":   "127.0.0.1:8080",
		"BAKERY_ORDERS_PATH": "/var/lib/bakery/order.json",
		"NOTIFY_TIMEOUT":     "3s",
		"SMTP_HOST":          "smtp.example.com",
		"SMTP_PORT":          "465",
		"MAIL_FROM":          "shop@example.com",
		"SHOP_NAME":          "パティスリー桜",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
		"CORS_ORIGINS":       "https://shop.example.com",
	}})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, "/var/lib/bakery/order.json", cfg.OrdersPath)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "パティスリー桜", cfg.ShopName)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.MailEnabled())
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig(env.Options{Environment: map[string]string{"NOTIFY_TIMEOUT": "soon"}})
	require.Error(t, err)

	_, err = loadConfig(env.Options{Environment: map[string]string{"SMTP_HOST": "smtp.example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_FROM")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty http addr", func(c *Config) { c.HTTPAddr = "" }, "BAKERY_HTTP_ADDR"},
		{"empty orders path", func(c *Config) { c.OrdersPath = "" }, "BAKERY_ORDERS_PATH"},
		{"unknown driver", func(c *Config) { c.StorageDriver = "postgres" }, "unsupported storage driver"},
		{"zero event queue", func(c *Config) { c.EventQueueSize = 0 }, "EVENT_QUEUE_SIZE"},
		{"zero notify timeout", func(c *Config) { c.NotifyTimeout = 0 }, "NOTIFY_TIMEOUT"},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, "SHUTDOWN_TIMEOUT"},
		{"bad smtp port", func(c *Config) {
			c.SMTPHost = "smtp"
			c.MailFrom = "a@b"
			c.SMTPPort = 70000
		}, "SMTP_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
