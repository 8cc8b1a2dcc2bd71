package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Database configuration
	DBDriver   string `yaml:"DB_DRIVER"`
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	// HTTP server
	AppURL             string `yaml:"APP_URL"`
	Port               string `yaml:"PORT"`
	CORSOrigins        string `yaml:"CORS_ORIGINS"`
	RateLimitPerSecond int    `yaml:"RATE_LIMIT_PER_SECOND"`
	PageSize           int    `yaml:"PAGE_SIZE"`
	ShortLinkLength    int    `yaml:"SHORT_LINK_LENGTH"`

	// Auth tokens
	JWTSecret     string `yaml:"JWT_SECRET"`
	TokenTTLHours int    `yaml:"TOKEN_TTL_HOURS"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// Media storage: "s3" or "local"
	StorageDriver string `yaml:"STORAGE_DRIVER"`
	MediaRoot     string `yaml:"MEDIA_ROOT"`
	AWSS3Bucket   string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region   string `yaml:"AWS_S3_REGION"`
	AWSAccessKey  string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey  string `yaml:"AWS_SECRET_KEY"`

	// Shopping list PDF font (TTF with Cyrillic glyphs); core Helvetica when empty
	PDFFontPath string `yaml:"PDF_FONT_PATH"`

	// Logging
	LogLevel  string `yaml:"LOG_LEVEL"`
	LogFormat string `yaml:"LOG_FORMAT"`
	LogFile   string `yaml:"LOG_FILE"`
}

func DefaultConfig() Config {
	return Config{
		DBDriver:           "postgres",
		DBHost:             "localhost",
		DBPort:             "5432",
		DBSSLMode:          "disable",
		AppURL:             "http://localhost:8000",
		Port:               "8000",
		CORSOrigins:        "*",
		RateLimitPerSecond: 10,
		PageSize:           6,
		ShortLinkLength:    6,
		TokenTTLHours:      24 * 7,
		StorageDriver:      "local",
		MediaRoot:          "./media",
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// LoadConfig layers config.yaml, then .env, then the process environment
// over the defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	file, err := os.ReadFile("config.yaml")
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config.yaml: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return cfg, fmt.Errorf("read config.yaml: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("yaml")
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.Int:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			field.SetInt(int64(n))
		default:
			field.SetString(raw)
		}
	}
	return nil
}
