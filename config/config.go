package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the agent system
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// LLMConfig contains the chat-completion endpoint configuration
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ToolsConfig contains settings for the outbound tool clients
type ToolsConfig struct {
	Screenshot ScreenshotConfig `mapstructure:"screenshot"`
	WebSearch  WebSearchConfig  `mapstructure:"web_search"`
	Automation AutomationConfig `mapstructure:"automation"`
}

// ScreenshotConfig contains preview-service settings
type ScreenshotConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	DefaultWidth  int           `mapstructure:"default_width"`
	DefaultHeight int           `mapstructure:"default_height"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
}

// WebSearchConfig contains search endpoint settings
type WebSearchConfig struct {
	WikipediaEndpoint  string        `mapstructure:"wikipedia_endpoint"`
	DuckDuckGoEndpoint string        `mapstructure:"duckduckgo_endpoint"`
	MaxResults         int           `mapstructure:"max_results"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// AutomationConfig contains URL-automation pacing and retry settings
type AutomationConfig struct {
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	InterRequestDelay time.Duration `mapstructure:"inter_request_delay"`
	MaxURLs           int           `mapstructure:"max_urls"`
}

// StorageConfig contains task store settings
type StorageConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains the optional Redis task-archive settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	CostTracking bool `mapstructure:"cost_tracking"`
}

// LoadConfig loads config from file, falling back to defaults plus
// WEBPILOT_* environment overrides when no config file is present.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("llm.base_url", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("tools.screenshot.base_url", "https://image.thum.io/get")
	viper.SetDefault("tools.screenshot.default_width", 1080)
	viper.SetDefault("tools.screenshot.default_height", 1920)
	viper.SetDefault("tools.screenshot.probe_timeout", 10*time.Second)
	viper.SetDefault("tools.web_search.wikipedia_endpoint", "https://en.wikipedia.org/w/api.php")
	viper.SetDefault("tools.web_search.duckduckgo_endpoint", "https://api.duckduckgo.com/")
	viper.SetDefault("tools.web_search.max_results", 5)
	viper.SetDefault("tools.web_search.timeout", 15*time.Second)
	viper.SetDefault("tools.automation.max_retries", 3)
	viper.SetDefault("tools.automation.retry_delay", time.Second)
	viper.SetDefault("tools.automation.inter_request_delay", 2*time.Second)
	viper.SetDefault("tools.automation.max_urls", 5)
	viper.SetDefault("storage.redis.timeout", 5*time.Second)
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("WEBPILOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// a missing file is fine when no explicit path was given
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &config
}
