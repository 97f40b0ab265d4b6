package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	pkgstrings "medtransit/pkg/platform/strings"
)

const (
	DefaultAddr           = ":8080"
	DefaultTimezone       = "America/Argentina/Cordoba"
	DefaultRequestTimeout = 30 * time.Second
	DefaultGeneratorAt    = "00:01"
	DefaultNATSSubject    = "transfer.status.changed"
	DefaultKafkaTopic     = "transfer-status"
	DefaultDistanceURL    = "https://maps.googleapis.com/maps/api/distancematrix/json"
	DefaultLocality       = "Córdoba, Argentina"
	DefaultTelegramURL    = "https://api.telegram.org"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string        `yaml:"addr"`
	Timezone       string        `yaml:"timezone"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
}

// Database selects the Postgres stores. An empty URL keeps everything in memory.
type Database struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Redis backs the distance cache. An empty URL disables caching.
type Redis struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Generator controls the nightly PENDING record generation.
type Generator struct {
	At         string `yaml:"at"`
	RunOnStart bool   `yaml:"run_on_start"`
}

type Distance struct {
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	DefaultLocality string        `yaml:"default_locality"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	Timeout         time.Duration `yaml:"timeout"`
}

type Notify struct {
	TelegramToken   string `yaml:"telegram_token"`
	TelegramBaseURL string `yaml:"telegram_base_url"`
}

// Events picks the status event sink: NATS wins over Kafka, and neither means no-op.
type Events struct {
	NATSURL      string   `yaml:"nats_url"`
	NATSSubject  string   `yaml:"nats_subject"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

// Directory seeds the in-memory agenda and patient directory when no
// database is configured.
type Directory struct {
	SeedFile string `yaml:"seed_file"`
}

// Auth enables bearer actor tokens when ActorTokenKey is set.
type Auth struct {
	ActorTokenKey string `yaml:"actor_token_key"`
	Issuer        string `yaml:"issuer"`
}

type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Redis     Redis     `yaml:"redis"`
	Generator Generator `yaml:"generator"`
	Distance  Distance  `yaml:"distance"`
	Notify    Notify    `yaml:"notify"`
	Events    Events    `yaml:"events"`
	Auth      Auth      `yaml:"auth"`
	Directory Directory `yaml:"directory"`

	location *time.Location
}

// Load reads .env (if present), the optional YAML file named by CONFIG_FILE,
// then environment overrides, and finally fills defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "ADDR")
	setString(&c.Server.Timezone, "TIMEZONE")
	setString(&c.Server.LogLevel, "LOG_LEVEL")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Generator.At, "GENERATOR_AT")
	setString(&c.Distance.APIKey, "DISTANCE_API_KEY")
	setString(&c.Distance.BaseURL, "DISTANCE_BASE_URL")
	setString(&c.Distance.DefaultLocality, "DISTANCE_DEFAULT_LOCALITY")
	setString(&c.Notify.TelegramToken, "TELEGRAM_TOKEN")
	setString(&c.Notify.TelegramBaseURL, "TELEGRAM_BASE_URL")
	setString(&c.Events.NATSURL, "NATS_URL")
	setString(&c.Events.NATSSubject, "NATS_SUBJECT")
	setString(&c.Events.KafkaTopic, "KAFKA_TOPIC")
	setString(&c.Auth.ActorTokenKey, "ACTOR_TOKEN_KEY")
	setString(&c.Auth.Issuer, "ACTOR_TOKEN_ISSUER")
	setString(&c.Directory.SeedFile, "DIRECTORY_SEED_FILE")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.KafkaBrokers = pkgstrings.SplitList(v, ",")
	}

	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	collect(setDuration(&c.Server.RequestTimeout, "REQUEST_TIMEOUT"))
	collect(setInt(&c.Database.MaxOpenConns, "DATABASE_MAX_OPEN_CONNS"))
	collect(setInt(&c.Database.MaxIdleConns, "DATABASE_MAX_IDLE_CONNS"))
	collect(setDuration(&c.Database.ConnMaxLifetime, "DATABASE_CONN_MAX_LIFETIME"))
	collect(setInt(&c.Redis.PoolSize, "REDIS_POOL_SIZE"))
	collect(setDuration(&c.Distance.CacheTTL, "DISTANCE_CACHE_TTL"))
	collect(setDuration(&c.Distance.Timeout, "DISTANCE_TIMEOUT"))
	collect(setBool(&c.Generator.RunOnStart, "GENERATOR_RUN_ON_START"))
	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Timezone == "" {
		c.Server.Timezone = DefaultTimezone
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 2
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}
	if c.Generator.At == "" {
		c.Generator.At = DefaultGeneratorAt
	}
	if c.Distance.BaseURL == "" {
		c.Distance.BaseURL = DefaultDistanceURL
	}
	if c.Distance.DefaultLocality == "" {
		c.Distance.DefaultLocality = DefaultLocality
	}
	if c.Distance.CacheTTL == 0 {
		c.Distance.CacheTTL = 24 * time.Hour
	}
	if c.Distance.Timeout == 0 {
		c.Distance.Timeout = 5 * time.Second
	}
	if c.Notify.TelegramBaseURL == "" {
		c.Notify.TelegramBaseURL = DefaultTelegramURL
	}
	if c.Events.NATSSubject == "" {
		c.Events.NATSSubject = DefaultNATSSubject
	}
	if c.Events.KafkaTopic == "" {
		c.Events.KafkaTopic = DefaultKafkaTopic
	}
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Server.Timezone, err)
	}
	c.location = loc
	if _, _, err := c.Generator.Clock(); err != nil {
		return err
	}
	return nil
}

// Location is the zone "today" is computed in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Clock splits At into hour and minute.
func (g Generator) Clock() (hour, minute uint, err error) {
	t, err := time.Parse("15:04", g.At)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid generator time %q: expected HH:MM", g.At)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
