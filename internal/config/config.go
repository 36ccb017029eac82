// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек приложения.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RabbitURL               string `yaml:"rabbit_url" env:"RABBIT_URL"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Payment                 `yaml:"payment"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"ADDRESS_HTTP" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"ADDRESS_REDIS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Payment выбирает платёжного провайдера и хранит его настройки.
// Провайдеры взаимоисключающие: активен ровно один, указанный в Provider.
type Payment struct {
	Provider string `yaml:"provider" env:"PAYMENT_PROVIDER" env-default:"paypal"`
	PayPal   `yaml:"paypal"`
	Stripe   `yaml:"stripe"`
}

// PayPal настройки провайдера PayPal.
type PayPal struct {
	ClientID     string `yaml:"client_id" env:"PAYPAL_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"PAYPAL_CLIENT_SECRET"`
	Mode         string `yaml:"mode" env:"PAYPAL_MODE" env-default:"sandbox"`
	SilverPlanID string `yaml:"plan_silver" env:"PAYPAL_PLAN_SILVER"`
	GoldPlanID   string `yaml:"plan_gold" env:"PAYPAL_PLAN_GOLD"`
	ReturnURL    string `yaml:"return_url" env-default:"http://localhost:5173/subscription-success"`
	CancelURL    string `yaml:"cancel_url" env-default:"http://localhost:5173/"`
	WebhookID    string `yaml:"webhook_id" env:"PAYPAL_WEBHOOK_ID"`
}

// Stripe настройки провайдера Stripe.
type Stripe struct {
	SecretKey     string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	SilverPriceID string `yaml:"price_silver" env:"STRIPE_PRICE_SILVER"`
	GoldPriceID   string `yaml:"price_gold" env:"STRIPE_PRICE_GOLD"`
	SuccessURL    string `yaml:"success_url" env-default:"http://localhost:5173/subscription-success"`
	CancelURL     string `yaml:"cancel_url" env-default:"http://localhost:5173/"`
	WebhookSecret string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
}

// SMTP настройки почтового транспорта для формы обратной связи.
type SMTP struct {
	SMTPHost         string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort         string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser         string `yaml:"user" env:"SMTP_USER"`
	SMTPPass         string `yaml:"pass" env:"SMTP_PASS"`
	ContactRecipient string `yaml:"contact_recipient" env:"CONTACT_RECIPIENT"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH. Падает, если файл
// отсутствует или не парсится.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
