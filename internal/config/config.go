package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PaymentMode selects the payment gateway at wiring time. It is never
// inferred from request content.
type PaymentMode string

const (
	PaymentModeMock   PaymentMode = "mock"
	PaymentModeStripe PaymentMode = "stripe"
)

type Config struct {
	Port string

	Database DatabaseConfig
	RabbitMQ RabbitMQConfig

	PaymentMode         PaymentMode
	PaymentCurrency     string
	StripeSecretKey     string
	StripeWebhookSecret string

	JWTSecret string

	GCSBucket string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RabbitMQConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	VHost      string
	Exchange   string
	RetryCount int
	RetryDelay time.Duration
}

func (c RabbitMQConfig) ConnectionURL() string {
	vhost := c.VHost
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		c.Username, c.Password, c.Host, c.Port, vhost)
}

func Load() Config {
	port, _ := strconv.Atoi(getEnvOrDefault("RABBITMQ_PORT", "5672"))
	retryCount, _ := strconv.Atoi(getEnvOrDefault("RABBITMQ_RETRY_COUNT", "3"))

	mode := PaymentMode(getEnvOrDefault("PAYMENT_MODE", string(PaymentModeStripe)))
	if mode != PaymentModeMock && mode != PaymentModeStripe {
		mode = PaymentModeStripe
	}

	return Config{
		Port: getEnvOrDefault("PORT", "8080"),
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			Name:     getEnvOrDefault("DB_NAME", "shopnexus"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:       getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:       port,
			Username:   getEnvOrDefault("RABBITMQ_USERNAME", "guest"),
			Password:   getEnvOrDefault("RABBITMQ_PASSWORD", "guest"),
			VHost:      getEnvOrDefault("RABBITMQ_VHOST", "/"),
			Exchange:   getEnvOrDefault("RABBITMQ_EXCHANGE", "shop.events"),
			RetryCount: retryCount,
			RetryDelay: time.Second * 5,
		},
		PaymentMode:         mode,
		PaymentCurrency:     getEnvOrDefault("PAYMENT_CURRENCY", "inr"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		JWTSecret:           getEnvOrDefault("JWT_SECRET", "dev-secret-change-me"),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
