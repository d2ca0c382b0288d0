package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

const envPrefix = "CANTEEN"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	Migrate  bool   `mapstructure:"migrate"`
}

// RedisConfig with an empty Addr disables the statistics cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	StatsTTL time.Duration `mapstructure:"stats_ttl"`
}

// KafkaConfig with no brokers makes order events go to the log only.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OrdersConfig struct {
	Currency     string `mapstructure:"currency"`
	NumberPrefix string `mapstructure:"number_prefix"`
	TimeZone     string `mapstructure:"time_zone"`
	MaxPageSize  int    `mapstructure:"max_page_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads defaults, then the optional YAML file at path, then CANTEEN_*
// environment variables, e.g. CANTEEN_POSTGRES_DSN.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("v.Unmarshal: %w", err)
	}

	// a comma separated env value arrives as a single element
	if len(cfg.Kafka.Brokers) == 1 {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stats_ttl", time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "canteen.order-events")

	v.SetDefault("orders.currency", "CNY")
	v.SetDefault("orders.number_prefix", "CT")
	v.SetDefault("orders.time_zone", "Asia/Shanghai")
	v.SetDefault("orders.max_page_size", 100)

	v.SetDefault("log.level", "info")
}

func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Postgres.DSN) == "" {
		errs = append(errs, errors.New("postgres.dsn is empty"))
	}
	if c.Postgres.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("postgres.max_conns must be positive, got %d", c.Postgres.MaxConns))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if _, err := c.Orders.CurrencyUnit(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Orders.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Orders.NumberPrefix == "" {
		errs = append(errs, errors.New("orders.number_prefix is empty"))
	}
	if c.Orders.MaxPageSize < 1 {
		errs = append(errs, fmt.Errorf("orders.max_page_size must be positive, got %d", c.Orders.MaxPageSize))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is empty"))
	}

	return errors.Join(errs...)
}

func (o OrdersConfig) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(o.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("orders.currency[%s]: %w", o.Currency, err)
	}
	return unit, nil
}

func (o OrdersConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("orders.time_zone[%s]: %w", o.TimeZone, err)
	}
	return loc, nil
}

func compact(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}
	return result
}
