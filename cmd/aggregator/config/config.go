package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	// SourcesFile replaces source table with YAML file when set.
	SourcesFile string `env:"SOURCES_FILE"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	// Schedule is cron expression of scheduled runs, empty disables scheduling.
	Schedule string `env:"SCHEDULE" envDefault:"0 3,15 * * *"`

	HTTP     HTTP
	Scraper  Scraper
	RabbitMQ RabbitMQ
}

// HTTP holds API server configuration.
type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ScrapeSecret    string        `env:"SCRAPE_SECRET"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimit       float64       `env:"HTTP_RATE_LIMIT" envDefault:"5"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Scraper holds fetching and pacing configuration.
type Scraper struct {
	UserAgent      string `env:"SCRAPER_USER_AGENT" envDefault:"Mozilla/5.0 (compatible; coral-price-aggregator/1.0)"`
	AcceptLanguage string `env:"SCRAPER_ACCEPT_LANGUAGE" envDefault:"en-CA,en;q=0.9,fr-CA;q=0.8"`
	// HTTPTimeout bounds single request, zero means no timeout.
	HTTPTimeout        time.Duration `env:"SCRAPER_HTTP_TIMEOUT" envDefault:"0s"`
	MaxAttempts        int           `env:"SCRAPER_MAX_ATTEMPTS" envDefault:"10"`
	SourceInterval     time.Duration `env:"SCRAPER_SOURCE_INTERVAL" envDefault:"1500ms"`
	LinkInterval       time.Duration `env:"SCRAPER_LINK_INTERVAL" envDefault:"700ms"`
	PageInterval       time.Duration `env:"SCRAPER_PAGE_INTERVAL" envDefault:"500ms"`
	Jitter             time.Duration `env:"SCRAPER_JITTER" envDefault:"400ms"`
	MaxCatalogPages    int           `env:"SCRAPER_MAX_CATALOG_PAGES" envDefault:"200"`
	MaxCrawlPages      int           `env:"SCRAPER_MAX_CRAWL_PAGES" envDefault:"80"`
	ForcedCatalogHosts []string      `env:"SCRAPER_FORCED_CATALOG_HOSTS" envDefault:"reefsolution" envSeparator:","`
}

// RabbitMQ holds RabbitMQ configuration. Consuming is disabled when URL is empty.
type RabbitMQ struct {
	URL        string `env:"RABBITMQ_URL"`
	Exchange   string `env:"RABBITMQ_EXCHANGE" envDefault:"coral-ex"`
	Queue      string `env:"RABBITMQ_QUEUE" envDefault:"coral-aggregator.commands"`
	RoutingKey string `env:"RABBITMQ_ROUTING_KEY" envDefault:"aggregator.run"`
}

// Parse reads Config from environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("can't parse env variables: %w", err)
	}

	return cfg, nil
}
