package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	OTP      OTPConfig
	Reset    ResetConfig
	Security SecurityConfig
	Seed     SeedConfig
}

type AppConfig struct {
	Name            string
	Env             string
	Port            string
	Debug           bool
	LogPath         string
	DefaultLanguage string
	RequestTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
	MongoURI string
	MongoDB  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
	MaxPerDay     int
}

type ResetConfig struct {
	TokenTTLMinutes int
}

type SecurityConfig struct {
	BcryptCost int
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "reader-hub")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3030")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DEFAULT_LANGUAGE", "en")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	// DB_DRIVER=mongo selects the document store backend; postgres adds SQL
	// migrations and is the default.
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "reader_hub_dev")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_TIMEOUT_SECONDS", 15)
	v.SetDefault("EMAIL_FROM", "no-reply@reader-hub.local")
	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("OTP_MAX_PER_DAY", 5)
	v.SetDefault("RESET_TOKEN_TTL_MINUTES", 10)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@admin.com")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin123")

	config := &Config{
		App: AppConfig{
			Name:            v.GetString("APP_NAME"),
			Env:             v.GetString("APP_ENV"),
			Port:            v.GetString("PORT"),
			Debug:           v.GetBool("DEBUG"),
			LogPath:         v.GetString("LOG_PATH"),
			DefaultLanguage: v.GetString("DEFAULT_LANGUAGE"),
			RequestTimeout:  time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			MongoURI: v.GetString("MONGO_URI"),
			MongoDB:  v.GetString("MONGO_DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
			Timeout:  time.Duration(v.GetInt("SMTP_TIMEOUT_SECONDS")) * time.Second,
		},
		OTP: OTPConfig{
			ExpiryMinutes: v.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        v.GetInt("OTP_LENGTH"),
			MaxPerDay:     v.GetInt("OTP_MAX_PER_DAY"),
		},
		Reset: ResetConfig{
			TokenTTLMinutes: v.GetInt("RESET_TOKEN_TTL_MINUTES"),
		},
		Security: SecurityConfig{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Seed: SeedConfig{
			AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
		},
	}

	if config.Database.MongoDB == "" {
		config.Database.MongoDB = config.Database.Name
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks settings that would otherwise fail at the first request.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use %s or %s)", c.Database.Driver, DriverPostgres, DriverMongo)
	}

	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWT.Secret = "dev-secret"
	}

	if c.OTP.Length <= 0 {
		return errors.New("OTP_LENGTH must be positive")
	}
	if c.OTP.ExpiryMinutes <= 0 {
		return errors.New("OTP_EXPIRY_MINUTES must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// DSN builds a postgres:// URL usable by both pgxpool and golang-migrate.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

func (o OTPConfig) Expiry() time.Duration {
	return time.Duration(o.ExpiryMinutes) * time.Minute
}

func (r ResetConfig) TokenTTL() time.Duration {
	if r.TokenTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(r.TokenTTLMinutes) * time.Minute
}

func (j JWTConfig) Expiry() time.Duration {
	if j.ExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(j.ExpiryHours) * time.Hour
}
