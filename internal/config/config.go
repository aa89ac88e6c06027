package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	JWTSecret  string

	// Card gateway. Only StripePublishableKey may reach a client.
	StripeSecretKey      string
	StripeWebhookSecret  string
	StripePublishableKey string

	// Regional gateway. Only RazorpayKeyID may reach a client.
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayCurrency  string

	StoreCurrency        string
	ExchangeRates        string
	OrderConfirmationURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ReceiptFrom  string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    getEnv("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),
		JWTSecret:  os.Getenv("JWT_SECRET"),

		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayCurrency:  strings.ToUpper(getEnv("RAZORPAY_CURRENCY", "INR")),

		StoreCurrency:        strings.ToUpper(getEnv("STORE_CURRENCY", "USD")),
		ExchangeRates:        getEnv("EXCHANGE_RATES", "USD:1"),
		OrderConfirmationURL: getEnv("ORDER_CONFIRMATION_URL", "/account/orders/%s"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		ReceiptFrom:  os.Getenv("RECEIPT_FROM"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// Validate lists the settings that are missing. Each missing provider
// setting disables that provider rather than the whole service.
func (c *Config) Validate() []string {
	var missing []string
	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	check("JWT_SECRET", c.JWTSecret)
	check("STRIPE_SECRET_KEY", c.StripeSecretKey)
	check("STRIPE_WEBHOOK_SECRET", c.StripeWebhookSecret)
	check("STRIPE_PUBLISHABLE_KEY", c.StripePublishableKey)
	check("RAZORPAY_KEY_ID", c.RazorpayKeyID)
	check("RAZORPAY_KEY_SECRET", c.RazorpayKeySecret)

	return missing
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.ReceiptFrom != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
