package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string

	StripeSecretKey  string
	StripeWebhookKey string
	Currency         string
	BaseURL          string

	// ALLOW_UNVERIFIED_WEBHOOKS must be set explicitly to accept webhook
	// payloads without a signing secret. Never enable in production.
	AllowUnverifiedWebhooks bool

	EmailJSServiceID            string
	EmailJSUserID               string
	EmailJSOrigin               string
	EmailJSTemplateOrder        string
	EmailJSTemplateOrderAdmin   string
	EmailJSTemplateBooking      string
	EmailJSTemplateBookingAdmin string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string

	CompanyName      string
	CompanyEmail     string
	CompanyPhone     string
	OrderNotifyEmail string

	KafkaBrokers    string
	OrderEventTopic string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "4242"),
		Environment: getEnv("APP_ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Johannesburg"),

		RedisURL: getEnv("REDIS_URL", ""),

		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:         strings.ToLower(getEnv("STRIPE_CURRENCY", "zar")),
		BaseURL:          getEnv("BASE_URL", "http://localhost:4242"),

		AllowUnverifiedWebhooks: getEnvAsBool("ALLOW_UNVERIFIED_WEBHOOKS", false),

		EmailJSServiceID:            os.Getenv("EMAILJS_SERVICE_ID"),
		EmailJSUserID:               firstNonEmpty(os.Getenv("EMAILJS_USER_ID"), os.Getenv("EMAILJS_PUBLIC_KEY")),
		EmailJSOrigin:               getEnv("EMAILJS_ORIGIN", "http://localhost:4242"),
		EmailJSTemplateOrder:        os.Getenv("EMAILJS_TEMPLATE_ID_CONFIRMATION_ORDER"),
		EmailJSTemplateOrderAdmin:   firstNonEmpty(os.Getenv("EMAILJS_TEMPLATE_ID_ORDER_ADMIN"), os.Getenv("EMAILJS_TEMPLATE_ID_CONFIRMATION_ORDER")),
		EmailJSTemplateBooking:      firstNonEmpty(os.Getenv("EMAILJS_TEMPLATE_ID_BOOKING_CUSTOMER"), os.Getenv("EMAILJS_TEMPLATE_ID_BOOKING")),
		EmailJSTemplateBookingAdmin: firstNonEmpty(os.Getenv("EMAILJS_TEMPLATE_ID_BOOKING_ADMIN"), os.Getenv("EMAILJS_TEMPLATE_ID_BOOKING")),

		SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: getEnv("SMTP_PORT", "465"),
		SMTPUser: os.Getenv("GMAIL_USER"),
		SMTPPass: strings.ReplaceAll(os.Getenv("GMAIL_PASS"), " ", ""),

		CompanyName:      getEnv("COMPANY_NAME", "Myriad Green"),
		CompanyEmail:     getEnv("COMPANY_EMAIL", "irrigationsa@gmail.com"),
		CompanyPhone:     getEnv("COMPANY_PHONE", "+27 12 345 6789"),
		OrderNotifyEmail: strings.TrimSpace(getEnv("ORDER_NOTIFY_EMAIL", "irrigationsa@gmail.com")),

		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		OrderEventTopic: getEnv("ORDER_EVENT_TOPIC", "order-events"),
	}

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("missing required environment variable STRIPE_SECRET_KEY")
	}
	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" {
		return nil, fmt.Errorf("missing required Postgres environment variables")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
