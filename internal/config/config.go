package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Security SecurityConfig `mapstructure:"security"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		PipelineEvents string `mapstructure:"pipeline_events"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	TextModel   string  `mapstructure:"text_model"`
	VisionModel string  `mapstructure:"vision_model"`
	Temperature float32 `mapstructure:"temperature"`
}

type WeatherConfig struct {
	OpenWeatherAPIKey string        `mapstructure:"openweather_api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	GeocodeURL        string        `mapstructure:"geocode_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type ScraperConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	ProxyEndpoint    string        `mapstructure:"proxy_endpoint"`
	MaxConcurrency   int64         `mapstructure:"max_concurrency"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	DefaultRetailers []string      `mapstructure:"default_retailers"`
	LimitPerRetailer int           `mapstructure:"limit_per_retailer"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type PipelineConfig struct {
	ImageFetchTimeout  time.Duration `mapstructure:"image_fetch_timeout"`
	GenerationTimeout  time.Duration `mapstructure:"generation_timeout"`
	EnrichmentTimeout  time.Duration `mapstructure:"enrichment_timeout"`
	RecommendationsTTL time.Duration `mapstructure:"recommendations_ttl"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	viper.SetDefault("auth.token_ttl", "24h")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("gemini.text_model", "gemini-1.5-flash-latest")
	viper.SetDefault("gemini.vision_model", "gemini-1.5-flash-latest")
	viper.SetDefault("gemini.temperature", 0.7)

	viper.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	viper.SetDefault("weather.geocode_url", "https://api.openweathermap.org/geo/1.0")
	viper.SetDefault("weather.timeout", "10s")

	viper.SetDefault("scraper.proxy_endpoint", "http://api.scraperapi.com")
	viper.SetDefault("scraper.max_concurrency", 2)
	viper.SetDefault("scraper.request_timeout", "90s")
	viper.SetDefault("scraper.default_retailers", []string{"Myntra", "Ajio"})
	viper.SetDefault("scraper.limit_per_retailer", 5)

	viper.SetDefault("pipeline.image_fetch_timeout", "15s")
	viper.SetDefault("pipeline.generation_timeout", "60s")
	viper.SetDefault("pipeline.enrichment_timeout", "30s")
	viper.SetDefault("pipeline.recommendations_ttl", "15m")
}
