package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// AppConfig holds everything the pipeline needs from the environment.
type AppConfig struct {
	// Database connection settings. DBPassword is deliberately not
	// validated; a missing password surfaces as a connection failure.
	DBHost     string `validate:"required"`
	DBPort     int    `validate:"required,min=1,max=65535"`
	DBUser     string `validate:"required"`
	DBPassword string
	DBName     string `validate:"required"`
	DBSchema   string `validate:"required"`

	// Weather source settings.
	WeatherAPIURL string `validate:"required,url"`
	WeatherAPIKey string
	City          string `validate:"required"`

	// FetchInterval controls how often the scheduler runs a full cycle.
	FetchInterval time.Duration `validate:"required"`

	// HTTPTimeout bounds the outbound fetch request.
	HTTPTimeout time.Duration `validate:"required"`

	LogLevel string
	DevMode  bool
}

// Load reads pipeline configuration from environment with the defaults
// the original deployment used.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &AppConfig{
		DBHost:        getenvDefault("DB_HOST", "db"),
		DBPort:        getenvInt("DB_PORT", 5432),
		DBUser:        getenvDefault("DB_USER", "weather_user"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getenvDefault("DB_NAME", "weather_db"),
		DBSchema:      getenvDefault("DB_SCHEMA", "dev"),
		WeatherAPIURL: getenvDefault("WEATHER_API_URL", "http://weather-api:5000/weather"),
		WeatherAPIKey: os.Getenv("WEATHER_API_KEY"),
		City:          getenvDefault("WEATHER_CITY", "London"),
		LogLevel:      getenvDefault("LOG_LEVEL", "info"),
		DevMode:       getenvBool("LOG_DEV_MODE", false),
	}

	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DSN builds a postgres connection URL from the database settings.
func (c *AppConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:   c.DBName,
	}
	q := url.Values{}
	q.Set("connect_timeout", "10")
	// Pin the session timezone so NOW() and TIMESTAMP columns behave
	// the same regardless of the server's locale.
	q.Set("options", "-c timezone=UTC")
	u.RawQuery = q.Encode()
	return u.String()
}

// MockAPIConfig holds configuration for the mock weather responder.
type MockAPIConfig struct {
	// KeysPath points at the JSON whitelist of API keys.
	KeysPath string `validate:"required"`

	// CitiesPath points at the JSON file of known capitals.
	CitiesPath string `validate:"required"`

	Port     string
	LogLevel string
	DevMode  bool
}

// LoadMockAPI reads configuration for the mock weather responder.
func LoadMockAPI() (*MockAPIConfig, error) {
	_ = godotenv.Load()

	cfg := &MockAPIConfig{
		KeysPath:   getenvDefault("API_KEYS_CONFIG", "api_keys_config.json"),
		CitiesPath: os.Getenv("CAPITALS_JSON_PATH"),
		Port:       getenvDefault("PORT", "5000"),
		LogLevel:   getenvDefault("LOG_LEVEL", "info"),
		DevMode:    getenvBool("LOG_DEV_MODE", false),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid mock API configuration: %w", err)
	}
	return cfg, nil
}

// AdminConfig describes the bootstrap admin account.
type AdminConfig struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// LoadAdmin reads the admin account settings. The password default
// matches the original bootstrap script.
func LoadAdmin() *AdminConfig {
	_ = godotenv.Load()
	return &AdminConfig{
		Username:  getenvDefault("ADMIN_USERNAME", "admin"),
		Email:     getenvDefault("ADMIN_EMAIL", "admin@example.com"),
		FirstName: getenvDefault("ADMIN_FIRST_NAME", "Admin"),
		LastName:  getenvDefault("ADMIN_LAST_NAME", "User"),
		Password:  getenvDefault("ADMIN_PASSWORD", "admin123"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
