package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"barcache/internal/format"
	"barcache/internal/provider"
	"barcache/internal/provider/polygon"
	"barcache/internal/provider/yahoo"
)

// Config holds application configuration. Values come from an optional YAML
// file (CONFIG_FILE) and are then overridden by environment variables.
type Config struct {
	Vendor          string   `yaml:"vendor"`
	Tickers         []string `yaml:"tickers"`
	TickersFile     string   `yaml:"tickers_file"`
	Interval        string   `yaml:"interval"`
	StartDate       string   `yaml:"start_date"`
	EndDate         string   `yaml:"end_date"` // exclusive; empty means today
	DataDir         string   `yaml:"data_dir"`
	SaveFormat      string   `yaml:"save_format"`
	LogLevel        string   `yaml:"log_level"` // debug | info | warn | error
	LogFormat       string   `yaml:"log_format"`
	Workers         int      `yaml:"workers"`
	NegativeCache   bool     `yaml:"negative_cache"`
	ValidateTickers bool     `yaml:"validate_tickers"`

	PolygonAPIKeys           []string `yaml:"polygon_api_keys"`
	PolygonBaseURL           string   `yaml:"polygon_base_url"`
	PolygonRequestsPerMinute int      `yaml:"polygon_requests_per_minute"`
	YahooBaseURL             string   `yaml:"yahoo_base_url"`
}

func defaultConfig() *Config {
	return &Config{
		Vendor:                   yahoo.Name,
		Interval:                 "1d",
		DataDir:                  "data",
		SaveFormat:               "csv",
		LogLevel:                 "info",
		LogFormat:                "text",
		Workers:                  4,
		PolygonRequestsPerMinute: polygon.DefaultRequestsPerMinute,
	}
}

// LoadConfig reads CONFIG_FILE (if set) then applies env overrides.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Vendor = getEnv("VENDOR", c.Vendor)
	if s := os.Getenv("TICKERS"); s != "" {
		c.Tickers = splitList(s)
	}
	c.TickersFile = getEnv("TICKERS_FILE", c.TickersFile)
	c.Interval = getEnv("INTERVAL", c.Interval)
	c.StartDate = getEnv("START_DATE", c.StartDate)
	c.EndDate = getEnv("END_DATE", c.EndDate)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.SaveFormat = getEnv("SAVE_FORMAT", c.SaveFormat)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.PolygonBaseURL = getEnv("POLYGON_BASE_URL", c.PolygonBaseURL)
	c.YahooBaseURL = getEnv("YAHOO_BASE_URL", c.YahooBaseURL)
	if keys := parsePolygonAPIKeys(); keys != nil {
		c.PolygonAPIKeys = keys
	}

	var errs []error
	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("WORKERS: %w", err))
		}
		c.Workers = n
	}
	if v := os.Getenv("POLYGON_REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("POLYGON_REQUESTS_PER_MINUTE: %w", err))
		}
		c.PolygonRequestsPerMinute = n
	}
	for key, dst := range map[string]*bool{"NEGATIVE_CACHE": &c.NegativeCache, "VALIDATE_TICKERS": &c.ValidateTickers} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
			*dst = b
		}
	}
	return errors.Join(errs...)
}

// Validate checks the loaded values and returns every problem at once.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Vendor) {
	case polygon.Name:
		if len(c.PolygonAPIKeys) == 0 {
			errs = append(errs, &provider.ConfigurationError{Vendor: polygon.Name, Reason: "POLYGON_API_KEY is not set"})
		}
	case yahoo.Name:
	default:
		errs = append(errs, fmt.Errorf("unsupported vendor %q (use: %s, %s)", c.Vendor, polygon.Name, yahoo.Name))
	}
	if format.NewCodec(c.SaveFormat) == nil {
		errs = append(errs, fmt.Errorf("unsupported SAVE_FORMAT %q (use: %s)", c.SaveFormat, strings.Join(format.Formats, ", ")))
	}
	if c.StartDate == "" {
		errs = append(errs, errors.New("START_DATE is required"))
	}
	start, end, err := c.Window(time.Now())
	if c.StartDate != "" && err != nil {
		errs = append(errs, err)
	} else if err == nil && !start.Before(end) {
		errs = append(errs, fmt.Errorf("START_DATE %s must be before END_DATE %s", c.StartDate, c.EndDate))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("DATA_DIR must not be empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("WORKERS must be >= 1, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// Window parses StartDate/EndDate. An empty EndDate means the start of the
// day after now, so today's bars are included.
func (c *Config) Window(now time.Time) (time.Time, time.Time, error) {
	start, err := provider.ParseDate(c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("START_DATE: %w", err)
	}
	if c.EndDate == "" {
		n := now.UTC()
		return start, time.Date(n.Year(), n.Month(), n.Day()+1, 0, 0, 0, 0, time.UTC), nil
	}
	end, err := provider.ParseDate(c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("END_DATE: %w", err)
	}
	return start, end, nil
}

// ReportPath returns {data_dir}/.lastrun.json
func (c *Config) ReportPath() string {
	return filepath.Join(c.DataDir, ".lastrun.json")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePolygonAPIKeys() []string {
	s := os.Getenv("POLYGON_API_KEYS")
	if s == "" {
		s = os.Getenv("POLYGON_API_KEY")
	}
	if s == "" {
		return nil
	}
	return splitList(s)
}
