package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTSecret       = "default-secret-change-in-production"
	defaultTokenExpiration = 24 * time.Hour
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenExpiration time.Duration
	AdminLogins     []string
	LogLevel        string

	// Платёжный провайдер
	StripeSecretKey        string
	StripeWebhookSecret    string
	StripeAPIURL           string
	WebhookSignatureHeader string
	WebhookTestEventPrefix string
	CheckoutSuccessURL     string
	CheckoutCancelURL      string
	Currency               string
	PaymentTimeout         time.Duration

	// Почта
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	StoreName    string

	// Предел на отправку одного письма вместе с повторами.
	NotifyTimeout time.Duration

	// Повторы внешних вызовов
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	// Сверка неподтверждённых оплат; 0 - выключено.
	ReconcileInterval time.Duration
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.DurationVar(&cfg.TokenExpiration, "t", defaultTokenExpiration, "время жизни токена")
	flag.StringVar(&cfg.StripeAPIURL, "p", "", "адрес API платёжного провайдера (для тестовых стендов)")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}
	if envStripeURL := os.Getenv("STRIPE_API_URL"); envStripeURL != "" {
		cfg.StripeAPIURL = envStripeURL
	}
	cfg.TokenExpiration = envDuration("TOKEN_EXPIRATION", cfg.TokenExpiration)
	if cfg.TokenExpiration <= 0 {
		cfg.TokenExpiration = defaultTokenExpiration
	}

	// JWT секрет
	cfg.JWTSecret = envString("JWT_SECRET", defaultJWTSecret)
	cfg.AdminLogins = envList("ADMIN_LOGINS")
	cfg.LogLevel = envString("LOG_LEVEL", "info")

	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.WebhookSignatureHeader = envString("WEBHOOK_SIGNATURE_HEADER", "Stripe-Signature")
	cfg.WebhookTestEventPrefix = envString("WEBHOOK_TEST_EVENT_PREFIX", "evt_test_")
	cfg.CheckoutSuccessURL = envString("CHECKOUT_SUCCESS_URL", "http://localhost:3000/orders?success=true")
	cfg.CheckoutCancelURL = envString("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout?canceled=true")
	cfg.Currency = strings.ToLower(envString("CURRENCY", "brl"))
	cfg.PaymentTimeout = envDuration("PAYMENT_TIMEOUT", 10*time.Second)

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPPort = envInt("SMTP_PORT", 587)
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.MailFrom = envString("MAIL_FROM", cfg.SMTPUsername)
	cfg.StoreName = envString("STORE_NAME", "Tech Gadgets Store")
	cfg.NotifyTimeout = envDuration("NOTIFY_TIMEOUT", 5*time.Second)

	cfg.RetryMaxAttempts = envInt("RETRY_MAX_ATTEMPTS", 3)
	if cfg.RetryMaxAttempts < 1 {
		cfg.RetryMaxAttempts = 1
	}
	cfg.RetryBaseDelay = envDuration("RETRY_BASE_DELAY", 200*time.Millisecond)
	cfg.ReconcileInterval = envDuration("RECONCILE_INTERVAL", 0)

	return cfg
}

// IsAdminLogin сообщает, должен ли логин получить роль администратора.
func (c *Config) IsAdminLogin(login string) bool {
	for _, l := range c.AdminLogins {
		if strings.EqualFold(l, login) {
			return true
		}
	}
	return false
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration возвращает def, если переменная не задана или не парсится.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
