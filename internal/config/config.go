package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrEmptyToken = errors.New(
		"error getting PS_TELEGRAM_TOKEN: variable not specified or contains an empty string")
	ErrEmptyChatID = errors.New("error getting PS_TELEGRAM_CHAT_ID: variable not specified or zero")
	ErrEmptySheet  = errors.New(
		"error getting catalog source: neither PS_CATALOG_URL nor PS_SHEET_ID is specified")
	ErrEmptyDB = errors.New("error getting PS_DB_NAME: variable not specified or contains an empty string")
)

type Config struct {
	Env          string // Env is the current environment: local, dev, prod.
	StoreName    string // StoreName is the display name of the monitored store.
	MinPctChange float64
	Catalog      Catalog
	DB           Database
	Tg           Telegram
	HTTP         HTTPServer
	Scrape       Scrape
}

type Catalog struct {
	SheetID string // SheetID is the Google Sheets document id.
	Tab     string // Tab is the worksheet name inside the document.
	URL     string // URL overrides the CSV export URL built from SheetID/Tab.
}

type Database struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	MigrationsPath string
}

type Telegram struct {
	Token   string        // Token is an unique telegram bot token.
	ChatID  int64         // ChatID is the destination chat for alerts.
	Timeout time.Duration // Timeout is the telegram client timeout.
}

type HTTPServer struct {
	Port        string
	MetricsPort string
	CORSOrigins []string
}

type Scrape struct {
	Timeout time.Duration // Timeout is the per-request scrape timeout.
}

// MustLoad loads the configuration from environment variables and returns a
// Config struct. A .env file in the working directory is applied first when
// present; missing required variables cause a panic.
func MustLoad() *Config {
	// best-effort, the environment may already be populated
	_ = godotenv.Load()

	// Automatically binds environment variables to config keys
	viper.SetEnvPrefix("PS")
	viper.AutomaticEnv()

	// optional args
	viper.SetDefault("ENV", "production")
	viper.SetDefault("STORE_NAME", "JayaGrocer")
	viper.SetDefault("MIN_PCT_CHANGE", 0.01)
	viper.SetDefault("SHEET_TAB", "Sheet1")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_MIGRATIONS", "migrations")
	viper.SetDefault("TELEGRAM_TIMEOUT", "10s")
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("METRICS_PORT", "9090")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5500")
	viper.SetDefault("SCRAPE_TIMEOUT", "30s")

	if viper.GetString("TELEGRAM_TOKEN") == "" {
		panic(ErrEmptyToken)
	}
	if viper.GetInt64("TELEGRAM_CHAT_ID") == 0 {
		panic(ErrEmptyChatID)
	}
	if viper.GetString("CATALOG_URL") == "" && viper.GetString("SHEET_ID") == "" {
		panic(ErrEmptySheet)
	}
	if viper.GetString("DB_NAME") == "" {
		panic(ErrEmptyDB)
	}

	return &Config{
		Env:          viper.GetString("ENV"),
		StoreName:    viper.GetString("STORE_NAME"),
		MinPctChange: viper.GetFloat64("MIN_PCT_CHANGE"),
		Catalog: Catalog{
			SheetID: viper.GetString("SHEET_ID"),
			Tab:     viper.GetString("SHEET_TAB"),
			URL:     viper.GetString("CATALOG_URL"),
		},
		DB: Database{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASSWORD"),
			Name:           viper.GetString("DB_NAME"),
			MigrationsPath: viper.GetString("DB_MIGRATIONS"),
		},
		Tg: Telegram{
			Token:   viper.GetString("TELEGRAM_TOKEN"),
			ChatID:  viper.GetInt64("TELEGRAM_CHAT_ID"),
			Timeout: viper.GetDuration("TELEGRAM_TIMEOUT"),
		},
		HTTP: HTTPServer{
			Port:        viper.GetString("HTTP_PORT"),
			MetricsPort: viper.GetString("METRICS_PORT"),
			CORSOrigins: splitOrigins(viper.GetString("CORS_ORIGINS")),
		},
		Scrape: Scrape{
			Timeout: viper.GetDuration("SCRAPE_TIMEOUT"),
		},
	}
}

// splitOrigins parses the comma-separated PS_CORS_ORIGINS value, dropping
// empty entries.
func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// CatalogURL returns the CSV export URL of the catalog sheet. An explicit
// PS_CATALOG_URL wins over the URL derived from the sheet id and tab.
func (c *Config) CatalogURL() string {
	if c.Catalog.URL != "" {
		return c.Catalog.URL
	}
	return fmt.Sprintf(
		"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.Catalog.SheetID, url.QueryEscape(c.Catalog.Tab),
	)
}
