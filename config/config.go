// Package config maps environment variables onto the runtime defaults the
// CLI starts from. A .env file in the working directory is loaded first if
// present; real environment variables win over it, and CLI flags win over
// both.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/meanrev/screener/stocks"
)

type Config struct {
	MetadataCSV string `envconfig:"METADATA_CSV" default:"data/company_metadata.csv"`
	OutputDir   string `envconfig:"OUTPUT_DIR" default:"output"`

	// Screening defaults.
	MinAgeYears  int `envconfig:"MIN_AGE_YEARS" default:"50"`
	LookbackDays int `envconfig:"LOOKBACK_DAYS" default:"1825"`
	WindowLen    int `envconfig:"WINDOW_LEN" default:"5"`

	// How far back each simulated screening looks. Kept short so the
	// worst window is a recent dip, not a years-old crash.
	ScreenLookbackDays int `envconfig:"SCREEN_LOOKBACK_DAYS" default:"14"`

	// Yahoo client settings.
	YahooDelay    time.Duration `envconfig:"YAHOO_DELAY" default:"500ms"`
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryMinWait  time.Duration `envconfig:"RETRY_MIN_WAIT" default:"2s"`
	RetryMaxWait  time.Duration `envconfig:"RETRY_MAX_WAIT" default:"10s"`

	Verbose bool `envconfig:"VERBOSE" default:"false"`
}

// Load reads the environment into a Config. A missing .env file is not an
// error; it simply means only the process environment applies.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("screener", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StocksOptions converts the fetch settings into client options.
func (c *Config) StocksOptions() stocks.Options {
	return stocks.Options{
		Delay:    c.YahooDelay,
		Attempts: c.RetryAttempts,
		MinWait:  c.RetryMinWait,
		MaxWait:  c.RetryMaxWait,
	}
}

// EnsureOutputDir creates the report directory if it does not exist yet.
func (c *Config) EnsureOutputDir() error {
	return os.MkdirAll(c.OutputDir, 0o755)
}
