package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/riverplate/ferryfare-provider/internal/domain/models"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	Jaeger     string           `yaml:"jaeger" env:"JAEGER" env-default:"jaeger"`
	Log        LogConfig        `yaml:"log"`
	HTTP       HTTPConfig       `yaml:"http"`
	Redis      RedisConfig      `yaml:"redis"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Browser    BrowserConfig    `yaml:"browser"`
	Credential CredentialConfig `yaml:"credential"`
	Fares      FaresConfig      `yaml:"fares"`
	Markets    []MarketConfig   `yaml:"markets"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url" env:"UPSTREAM_BASE_URL" env-default:"https://www.buquebus.com"`
	Timeout time.Duration `yaml:"timeout" env:"UPSTREAM_TIMEOUT" env-default:"30s"`
}

type BrowserConfig struct {
	Headless bool          `yaml:"headless" env:"BROWSER_HEADLESS" env-default:"true"`
	Timeout  time.Duration `yaml:"timeout" env:"BROWSER_TIMEOUT" env-default:"60s"`
}

type CredentialConfig struct {
	TTL            time.Duration `yaml:"ttl" env:"CREDENTIAL_TTL" env-default:"10h"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout" env:"CREDENTIAL_ACQUIRE_TIMEOUT" env-default:"90s"`
	OverridePrefix string        `yaml:"override_prefix" env:"CREDENTIAL_OVERRIDE_PREFIX" env-default:"FERRY_STATIC_TOKEN"`
}

type FaresConfig struct {
	Concurrency int `yaml:"concurrency" env:"FARES_CONCURRENCY" env-default:"4"`
}

type MarketConfig struct {
	Code             string `yaml:"code"`
	ProductPath      string `yaml:"product_path"`
	AccountNumber    string `yaml:"account_number"`
	Currency         string `yaml:"currency"`
	DecimalPrecision string `yaml:"decimal_precision"`
}

// MarketContexts resolves the configured markets against the upstream base
// URL. When no markets are configured the two known deployments are used.
func (c *Config) MarketContexts() []models.MarketContext {
	configs := c.Markets
	if len(configs) == 0 {
		configs = defaultMarkets()
	}

	contexts := make([]models.MarketContext, 0, len(configs))
	for _, m := range configs {
		precision := m.DecimalPrecision
		if precision == "" {
			precision = "2"
		}
		contexts = append(contexts, models.MarketContext{
			Code:             models.MarketCode(m.Code),
			BaseURL:          c.Upstream.BaseURL,
			ProductPath:      m.ProductPath,
			AccountNumber:    m.AccountNumber,
			Currency:         m.Currency,
			DecimalPrecision: precision,
		})
	}
	return contexts
}

func defaultMarkets() []MarketConfig {
	return []MarketConfig{
		{Code: "ar", ProductPath: "/ar/product", AccountNumber: "7250", Currency: "ARS"},
		{Code: "uy", ProductPath: "/uy/product", AccountNumber: "7252", Currency: "UYU"},
	}
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exists: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read the config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = "config/local.yaml"
	}

	return res
}
