package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/honeycarbs/jobsearch/internal/domain"
)

// Config contains runtime settings for the server
type Config struct {
	LogLevel string `yaml:"log_level"`
	Host     string `yaml:"host"` // default 0.0.0.0
	Port     string `yaml:"port"` // default PORT env or 8080

	SerpAPI struct {
		APIKey  string        `yaml:"-"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"serpapi"`

	Cache struct {
		TTL              time.Duration `yaml:"ttl"`
		RegistryCapacity int           `yaml:"registry_capacity"`
		HotMaxAge        time.Duration `yaml:"hot_max_age"`
	} `yaml:"cache"`

	// Optional backends; empty means an in-memory fallback
	DatabaseURL string `yaml:"-"`
	RedisURL    string `yaml:"-"`
	Neo4j       struct {
		URI      string `yaml:"-"`
		Username string `yaml:"-"`
		Password string `yaml:"-"`
	} `yaml:"-"`

	SheetsCredentialsPath string `yaml:"sheets_credentials_path"`

	Warm struct {
		Schedule string      `yaml:"schedule"` // robfig/cron spec; empty disables warming
		Queries  []WarmQuery `yaml:"queries"`
	} `yaml:"warm"`
}

// WarmQuery is a search re-run on the warm schedule
type WarmQuery struct {
	Query          string   `yaml:"query"`
	Location       string   `yaml:"location"`
	Page           int      `yaml:"page"`
	EmploymentType string   `yaml:"employment_type"`
	Roles          []string `yaml:"roles"`
	Seniority      []string `yaml:"seniority"`
}

// Filters converts the query to search filters; page defaults to 1
func (q WarmQuery) Filters() domain.SearchFilters {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	return domain.SearchFilters{
		Query:          q.Query,
		Location:       q.Location,
		Page:           page,
		EmploymentType: q.EmploymentType,
		Roles:          q.Roles,
		Seniority:      q.Seniority,
	}
}

func defaults() Config {
	cfg := Config{
		LogLevel: "info",
		Host:     "0.0.0.0",
		Port:     "8080",
	}
	cfg.SerpAPI.Timeout = 15 * time.Second
	cfg.Cache.TTL = time.Hour
	cfg.Cache.RegistryCapacity = 10000
	cfg.Cache.HotMaxAge = 6 * time.Hour
	return cfg
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment. Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.validate()
}

func loadYAML(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Host, "HTTP_HOST")
	setString(&cfg.Port, "PORT")

	setString(&cfg.SerpAPI.APIKey, "SERPAPI_API_KEY")
	setString(&cfg.SerpAPI.BaseURL, "SERPAPI_BASE_URL")

	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.Neo4j.URI, "NEO4J_URI")
	setString(&cfg.Neo4j.Username, "NEO4J_USERNAME")
	setString(&cfg.Neo4j.Password, "NEO4J_PASSWORD")
	setString(&cfg.SheetsCredentialsPath, "GOOGLE_SHEETS_CREDENTIALS_PATH")
	setString(&cfg.Warm.Schedule, "WARM_SCHEDULE")

	var errs []error
	errs = append(errs,
		setDuration(&cfg.SerpAPI.Timeout, "SERPAPI_TIMEOUT"),
		setDuration(&cfg.Cache.TTL, "CACHE_TTL"),
		setDuration(&cfg.Cache.HotMaxAge, "HOT_CACHE_MAX_AGE"),
		setInt(&cfg.Cache.RegistryCapacity, "REGISTRY_CAPACITY"),
	)
	return errors.Join(errs...)
}

func (c Config) validate() error {
	var problems []string

	if strings.TrimSpace(c.SerpAPI.APIKey) == "" {
		problems = append(problems, "SERPAPI_API_KEY is not configured")
	}
	if c.Cache.TTL <= 0 {
		problems = append(problems, "CACHE_TTL must be positive")
	}
	if c.Cache.RegistryCapacity <= 0 {
		problems = append(problems, "REGISTRY_CAPACITY must be positive")
	}
	if c.Neo4j.URI != "" && (c.Neo4j.Username == "" || c.Neo4j.Password == "") {
		problems = append(problems, "NEO4J_USERNAME and NEO4J_PASSWORD are required with NEO4J_URI")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, key, err)
	}
	*dst = n
	return nil
}
