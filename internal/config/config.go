// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
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
	StorageConnectionString string `yaml:"storage_connection_string" env:"DATABASE_URL"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	SiteOwnerEmail          string `yaml:"site_owner_email" env:"SITE_OWNER_EMAIL"`
	ContactInbox            string `yaml:"contact_inbox" env:"CONTACT_INBOX"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	SMTP                    `yaml:"smtp"`
	RabbitMQ                `yaml:"rabbitmq"`
	Payment                 `yaml:"payment"`
	AI                      `yaml:"ai"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis,
// где хранятся серверные сессии.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном нативных клиентов.
// Срок жизни токена и серверной сессии одинаковый: 30 дней.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
	SessionTTL   time.Duration `yaml:"session_ttl" env-default:"720h"`
}

// SMTP структура для настройки SMTP-транспорта почтовых уведомлений.
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// RabbitMQ структура для настройки подключения к брокеру почтовых заданий.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// Payment структура для настройки платёжного провайдера.
type Payment struct {
	PaymentSecretKey string `yaml:"payment_secret_key" env:"PAYMENT_SECRET_KEY"`
	PaymentAPIURL    string `yaml:"payment_api_url" env-default:"https://api.stripe.com/v1"`
	BasicPriceID     string `yaml:"basic_price_id" env:"BASIC_PRICE_ID"`
	ProPriceID       string `yaml:"pro_price_id" env:"PRO_PRICE_ID"`
	WebhookSecret    string `yaml:"webhook_secret" env:"PAYMENT_WEBHOOK_SECRET"`
}

// AI структура для настройки провайдера языковой модели.
type AI struct {
	AIAPIKey  string `yaml:"ai_api_key" env:"AI_API_KEY"`
	AIBaseURL string `yaml:"ai_base_url" env-default:"https://api.openai.com/v1"`
	AIModel   string `yaml:"ai_model" env-default:"gpt-4o-mini"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
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
