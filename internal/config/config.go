// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env           string `yaml:"env" env:"ENV" env-default:"local"`
	AppName       string `yaml:"app_name" env:"APP_NAME" env-default:"storefront"`
	AppKey        string `yaml:"app_key" env:"APP_KEY"`
	HTTPServer    `yaml:"http_server"`
	Micro         `yaml:"micro"`
	Auth          `yaml:"auth"`
	Tracing       `yaml:"tracing"`
	RabbitMQ      `yaml:"rabbitmq"`
	SMTP          `yaml:"smtp"`
	PasswordReset `yaml:"password_reset"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Micro структура для подключения к удалённому сервису пользователей
type Micro struct {
	APIGateway    string        `yaml:"api_gateway" env:"MICRO_API_GATEWAY"`
	Timeout       time.Duration `yaml:"timeout" env:"MICRO_TIMEOUT" env-default:"5s"`
	JWTKey        string        `yaml:"jwt_key" env:"MICRO_JWT_KEY"`
	JWTAlgorithms string        `yaml:"jwt_algorithms" env:"MICRO_JWT_ALGORITHMS" env-default:"HS256"`
}

// Auth структура для настройки извлечения токена из запроса
type Auth struct {
	InputKey   string        `yaml:"input_key" env-default:"jwt_token"`
	StorageKey string        `yaml:"storage_key" env-default:"jwt_token"`
	CookieTTL  time.Duration `yaml:"cookie_ttl" env-default:"24h"`
}

// CookieName имя cookie с токеном сессии.
func (a Auth) CookieName() string {
	if a.StorageKey == "" {
		return "jwt_token"
	}
	return a.StorageKey
}

// Tracing структура для настройки трассировки
type Tracing struct {
	AgentAddress string  `yaml:"agent_address" env:"TRACING_AGENT_ADDRESS"`
	ServiceName  string  `yaml:"service_name" env:"TRACING_SERVICE_NAME"`
	SampleRatio  float64 `yaml:"sample_ratio" env-default:"1"`
}

// RabbitMQ структура для подключения к брокеру очередей
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP структура для отправки писем
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
	SMTPFrom string `yaml:"from" env:"SMTP_FROM"`
}

// PasswordReset структура для формирования ссылки сброса пароля
type PasswordReset struct {
	LinkBase string `yaml:"link_base" env-default:"http://localhost:8080/password/reset"`
}

// Load читает конфиг из файла по указанному пути.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = cfg.AppName
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"AppName: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Micro:\n"+
			"  APIGateway: %s\n"+
			"  Timeout: %s\n"+
			"  JWTAlgorithms: %s\n"+
			"Tracing:\n"+
			"  AgentAddress: %s\n"+
			"  ServiceName: %s\n"+
			"RabbitMQ:\n"+
			"  MaxRetries: %d\n"+
			"  RetryDelay: %s\n"+
			"SMTP:\n"+
			"  Host: %s\n"+
			"  Port: %s\n",
		c.Env,
		c.AppName,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.APIGateway,
		c.Micro.Timeout,
		c.JWTAlgorithms,
		c.AgentAddress,
		c.ServiceName,
		c.RabbitMQMaxRetries,
		c.RabbitMQRetryDelay,
		c.SMTPHost,
		c.SMTPPort,
	)
}
