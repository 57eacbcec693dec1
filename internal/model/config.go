package model

import "time"

// Config holds the complete ContextCraft configuration
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Rewrite      RewriteConfig      `yaml:"rewrite" mapstructure:"rewrite"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Profiles     ProfilesConfig     `yaml:"profiles" mapstructure:"profiles"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// LLMConfig selects and configures the text-generation provider
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, gemini
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RewriteConfig tunes the fidelity-guarded rewrite loop
type RewriteConfig struct {
	Concurrency   int           `yaml:"concurrency" mapstructure:"concurrency"`       // In-flight generation calls
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"`     // Per generation call, transient retries included
	BaseDelay     time.Duration `yaml:"base_delay" mapstructure:"base_delay"`         // Backoff base, doubled per attempt
	MaxJitter     time.Duration `yaml:"max_jitter" mapstructure:"max_jitter"`         // Uniform jitter upper bound (exclusive)
	StrictRetries int           `yaml:"strict_retries" mapstructure:"strict_retries"` // Strict-mode escalations before fallback
}

// CacheConfig configures the in-memory generation cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// RateLimitingConfig configures the client-side request rate
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// HTTPConfig configures outbound HTTP (source fetching, REST providers)
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HostRate      float64       `yaml:"host_rate" mapstructure:"host_rate"` // Requests per second per source host
}

// ProfilesConfig points at user-supplied audience profiles
type ProfilesConfig struct {
	Dir string `yaml:"dir,omitempty" mapstructure:"dir"` // Overrides embedded profiles when set
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	Debug        bool   `yaml:"debug" mapstructure:"debug"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// OutputConfig controls logging and rendering
type OutputConfig struct {
	Verbose  bool `yaml:"verbose" mapstructure:"verbose"`
	JSONLogs bool `yaml:"json_logs" mapstructure:"json_logs"`
	Debug    bool `yaml:"debug" mapstructure:"debug"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 1000,
		},
		Rewrite: RewriteConfig{
			Concurrency:   1, // Keeps bursts below provider rate limits
			MaxAttempts:   4,
			BaseDelay:     500 * time.Millisecond,
			MaxJitter:     150 * time.Millisecond,
			StrictRetries: 2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 0,
			BurstSize:         1,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "ContextCraft/0.1 (+https://github.com/ppiankov/contextcraft)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
			HostRate:      1,
		},
		Server: ServerConfig{
			Addr:         "0.0.0.0:4000",
			MaxBodyBytes: 2 << 20,
		},
	}
}
