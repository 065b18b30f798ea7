package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig selects the file store backend.
// Driver is "minio" (S3-compatible) or "local" (filesystem under LocalDir).
type StorageConfig struct {
	Driver   string
	LocalDir string
	MinIO    MinIOConfig
}

// AuthConfig holds token signing and bootstrap account settings.
type AuthConfig struct {
	Secret        string
	TokenTTL      time.Duration
	LoginRate     float64
	LoginBurst    int
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	// FontPath optionally replaces the bundled PDF font with another Unicode TTF file.
	FontPath string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables and, optionally, a YAML file named by CONFIG_FILE.
// Environment variables take precedence over the file.
type AppConfig struct {
	AppHost          string
	Port             string
	Timezone         string
	Locale           string
	BodyLimitMB      int
	CORSAllowOrigins string
	Database         DatabaseConfig
	Storage          StorageConfig
	Auth             AuthConfig
	Report           ReportConfig
}

var defaults = map[string]any{
	"APP_HOST":                 "localhost:8080",
	"PORT":                     "8080",
	"APP_TIMEZONE":             "UTC",
	"APP_LOCALE":               "uk",
	"BODY_LIMIT_MB":            32,
	"CORS_ALLOW_ORIGINS":       "*",
	"DB_PORT":                  "5432",
	"DB_SSLMODE":               "disable",
	"DB_MAX_OPEN_CONNS":        10,
	"DB_MAX_IDLE_CONNS":        5,
	"DB_CONN_MAX_LIFETIME_SEC": 300,
	"STORAGE_DRIVER":           "minio",
	"STORAGE_LOCAL_DIR":        "media",
	"MINIO_USE_SSL":            false,
	"AUTH_TOKEN_TTL_MIN":       720,
	"AUTH_LOGIN_RATE":          1.0,
	"AUTH_LOGIN_BURST":         5,
}

// Load reads configuration from environment variables and the optional CONFIG_FILE.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	v := viper.New()
	v.AutomaticEnv()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return &AppConfig{
		AppHost:          v.GetString("APP_HOST"),
		Port:             v.GetString("PORT"),
		Timezone:         v.GetString("APP_TIMEZONE"),
		Locale:           strings.ToLower(v.GetString("APP_LOCALE")),
		BodyLimitMB:      getInt(v, "BODY_LIMIT_MB"),
		CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       getInt(v, "DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       getInt(v, "DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: getInt(v, "DB_CONN_MAX_LIFETIME_SEC"),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
			LocalDir: v.GetString("STORAGE_LOCAL_DIR"),
			MinIO: MinIOConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				Bucket:    v.GetString("MINIO_BUCKET"),
				UseSSL:    getBool(v, "MINIO_USE_SSL"),
			},
		},
		Auth: AuthConfig{
			Secret:        v.GetString("AUTH_SECRET"),
			TokenTTL:      time.Duration(getInt(v, "AUTH_TOKEN_TTL_MIN")) * time.Minute,
			LoginRate:     getFloat(v, "AUTH_LOGIN_RATE"),
			LoginBurst:    getInt(v, "AUTH_LOGIN_BURST"),
			AdminUsername: v.GetString("ADMIN_USERNAME"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
		},
		Report: ReportConfig{
			FontPath: v.GetString("REPORT_FONT_PATH"),
		},
	}, nil
}

// Location resolves the configured time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getInt parses key as an int, falling back to the registered default on malformed input.
func getInt(v *viper.Viper, key string) int {
	if i, err := strconv.Atoi(strings.TrimSpace(v.GetString(key))); err == nil {
		return i
	}
	def, _ := defaults[key].(int)
	return def
}

func getBool(v *viper.Viper, key string) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key))); err == nil {
		return b
	}
	def, _ := defaults[key].(bool)
	return def
}

func getFloat(v *viper.Viper, key string) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64); err == nil {
		return f
	}
	def, _ := defaults[key].(float64)
	return def
}
