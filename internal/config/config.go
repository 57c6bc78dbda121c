package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type HTTPConfig struct {
	Address         string        `yaml:"address" env:"SERVER_ADDRESS" env-default:"0.0.0.0:8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

type PostgresConfig struct {
	Conn            string        `yaml:"conn" env:"POSTGRES_CONN" env-required:"true"`
	Database        string        `yaml:"database" env:"POSTGRES_DATABASE" env-default:"artbid"`
	MigrationsPath  string        `yaml:"migrations_path" env:"POSTGRES_MIGRATIONS_PATH" env-default:"file://migrations"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"POSTGRES_MAX_OPEN_CONNS" env-default:"20"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"POSTGRES_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"POSTGRES_CONN_MAX_LIFETIME" env-default:"30m"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"true"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type NATSConfig struct {
	Enabled bool   `yaml:"enabled" env:"NATS_ENABLED" env-default:"false"`
	URL     string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

type LifecycleConfig struct {
	TickInterval time.Duration `yaml:"tick_interval" env:"LIFECYCLE_TICK_INTERVAL" env-default:"1m"`
	TickTimeout  time.Duration `yaml:"tick_timeout" env:"LIFECYCLE_TICK_TIMEOUT" env-default:"30s"`
}

type AuctionConfig struct {
	Timezone string `yaml:"timezone" env:"AUCTION_TIMEZONE" env-default:"UTC"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path" env:"METRICS_PATH" env-default:"/metrics"`
}

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Logger    LoggerConfig    `yaml:"logger"`
	Auth      AuthConfig      `yaml:"auth"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Auction   AuctionConfig   `yaml:"auction"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Location resolves the timezone auction dates are entered in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Auction.Timezone)
}

func (c *Config) validate() error {
	if c.Lifecycle.TickInterval <= 0 {
		return fmt.Errorf("lifecycle tick interval must be positive, got %s", c.Lifecycle.TickInterval)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("unknown auction timezone %q: %w", c.Auction.Timezone, err)
	}

	return nil
}

// Load reads the YAML file at path when it exists; environment variables
// always override it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}

		return &cfg, cfg.validate()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	}

	return &cfg, cfg.validate()
}

func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(fmt.Sprintf("cannot load config: %v", err))
	}

	return cfg
}
