package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	countryprovider "github.com/lk2023060901/world-explorer/internal/country/provider"
	newsfallback "github.com/lk2023060901/world-explorer/internal/news/fallback"
	newsprovider "github.com/lk2023060901/world-explorer/internal/news/provider"
	"github.com/lk2023060901/world-explorer/internal/news/proxy"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/lk2023060901/world-explorer/internal/pkg/ratelimit"
	"github.com/lk2023060901/world-explorer/internal/pkg/redis"
	"github.com/lk2023060901/world-explorer/internal/summary"
)

// EnvAPIKey names the environment variable holding the news API key
const EnvAPIKey = "NEWSAPI_KEY"

type Config struct {
	Server    ServerConfig           `mapstructure:"server"`
	Countries countryprovider.Config `mapstructure:"countries"`
	Search    SearchConfig           `mapstructure:"search"`
	News      NewsConfig             `mapstructure:"news"`
	Proxy     proxy.Config           `mapstructure:"proxy"`
	Summary   summary.Config         `mapstructure:"summary"`
	RateLimit ratelimit.Config       `mapstructure:"ratelimit"`
	Redis     redis.Config           `mapstructure:"redis"`
	Log       logger.Config          `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SearchConfig struct {
	SuggestionLimit int     `mapstructure:"suggestion_limit"`
	MinFuzzyScore   float64 `mapstructure:"min_fuzzy_score"`
}

// NewsConfig is the news client side: where the proxy lives and how the
// fallback queries are shaped.
type NewsConfig struct {
	Client   newsprovider.Config `mapstructure:",squash"`
	Fallback newsfallback.Config `mapstructure:",squash"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	countries := countryprovider.DefaultConfig()
	v.SetDefault("countries.base_url", countries.BaseURL)
	v.SetDefault("countries.timeout", countries.Timeout)
	v.SetDefault("countries.fields", countries.Fields)
	v.SetDefault("countries.user_agent", countries.UserAgent)

	v.SetDefault("search.suggestion_limit", 5)
	v.SetDefault("search.min_fuzzy_score", 0.4)

	news := newsfallback.DefaultConfig()
	v.SetDefault("news.proxy_base", "")
	v.SetDefault("news.timeout", 15*time.Second)
	v.SetDefault("news.supported_countries", news.SupportedCountries)
	v.SetDefault("news.page_size", news.PageSize)
	v.SetDefault("news.window", news.Window)

	px := proxy.DefaultConfig()
	v.SetDefault("proxy.enabled", px.Enabled)
	v.SetDefault("proxy.upstream_base", px.UpstreamBase)
	v.SetDefault("proxy.api_key", "")
	v.SetDefault("proxy.timeout", px.Timeout)
	v.SetDefault("proxy.cache_max_age", px.CacheMaxAge)

	sum := summary.DefaultConfig()
	v.SetDefault("summary.enabled", sum.Enabled)
	v.SetDefault("summary.base_url", sum.BaseURL)
	v.SetDefault("summary.timeout", sum.Timeout)
	v.SetDefault("summary.user_agent", sum.UserAgent)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.max_requests", 60)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("ratelimit.prefix", "world_explorer:news")
	v.SetDefault("ratelimit.exempt_loopback", true)

	rc := redis.DefaultConfig()
	v.SetDefault("redis.addr", rc.Addr)
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", rc.DB)
	v.SetDefault("redis.pool_size", rc.PoolSize)
	v.SetDefault("redis.min_idle_conns", rc.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rc.DialTimeout)
	v.SetDefault("redis.read_timeout", rc.ReadTimeout)
	v.SetDefault("redis.write_timeout", rc.WriteTimeout)
	v.SetDefault("redis.max_retries", rc.MaxRetries)

	lc := logger.DefaultConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.format", lc.Format)
	v.SetDefault("log.output", lc.Output)
	v.SetDefault("log.stacktrace", lc.Stacktrace)
	v.SetDefault("log.file.filename", lc.File.Filename)
	v.SetDefault("log.file.maxsize", lc.File.MaxSize)
	v.SetDefault("log.file.maxage", lc.File.MaxAge)
	v.SetDefault("log.file.maxbackups", lc.File.MaxBackups)
	v.SetDefault("log.file.compress", lc.File.Compress)
}

// LoadConfig reads path (optional: a missing file means defaults), then a
// .env file next to the working directory, then the environment. Env keys
// are the upper-cased config keys with dots replaced by underscores, e.g.
// SERVER_PORT; the news API key is read from NEWSAPI_KEY.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("proxy.api_key", EnvAPIKey); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvAPIKey, err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.News.Client.ProxyBase == "" {
		host := config.Server.Host
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		}
		config.News.Client.ProxyBase = fmt.Sprintf("http://%s:%d/api/news", host, config.Server.Port)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every section that is switched on
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	if err := c.Countries.Validate(); err != nil {
		return fmt.Errorf("countries: %w", err)
	}
	if err := c.News.Client.Validate(); err != nil {
		return fmt.Errorf("news: %w", err)
	}
	if err := c.Proxy.Validate(); err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	if c.RateLimit.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("ratelimit: %w", err)
		}
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}
