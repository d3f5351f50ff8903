package types

import "time"

// HTTPConfig holds shared HTTP settings used by the source clients.
type HTTPConfig struct {
	// Timeout bounds one fetch, retries included (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-aggregator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourceConfig holds per-source client settings.
type SourceConfig struct {
	// BaseURL overrides the API endpoint. Empty means the built-in default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Delay is the minimum gap between two requests from one client (default 3s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// MaxAttempts bounds retries of transient failures (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`
}

// SSRNConfig adds the dataset cache lifetime to the source settings.
type SSRNConfig struct {
	SourceConfig `yaml:",inline" mapstructure:",squash"`

	// CacheTTL is how long a downloaded SSRN dataset is reused (default 1h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// QueryDefaults holds the default result limits of the two request shapes.
type QueryDefaults struct {
	// SearchMaxResults is the default limit for text search (default 20).
	SearchMaxResults int `json:"search_max_results" yaml:"search_max_results" mapstructure:"search_max_results"`

	// RecentMaxResults is the default limit for recent papers (default 50).
	RecentMaxResults int `json:"recent_max_results" yaml:"recent_max_results" mapstructure:"recent_max_results"`
}

// ServerConfig selects the tool transport.
type ServerConfig struct {
	// Transport is "stdio" or "http".
	Transport string `json:"transport" yaml:"transport" mapstructure:"transport"`

	// Addr is the listen address for the http transport (default 0.0.0.0:3001).
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	JSON  bool   `json:"json" yaml:"json" mapstructure:"json"`
}

// Config groups every setting of the aggregator.
type Config struct {
	HTTP   HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Arxiv  SourceConfig  `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	SSRN   SSRNConfig    `json:"ssrn" yaml:"ssrn" mapstructure:"ssrn"`
	Query  QueryDefaults `json:"query" yaml:"query" mapstructure:"query"`
	Server ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Log    LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "paper-aggregator/dev",
		},
		Arxiv: SourceConfig{Delay: 3 * time.Second, MaxAttempts: 3},
		SSRN: SSRNConfig{
			SourceConfig: SourceConfig{Delay: 3 * time.Second, MaxAttempts: 3},
			CacheTTL:     time.Hour,
		},
		Query: QueryDefaults{SearchMaxResults: 20, RecentMaxResults: 50},
		Server: ServerConfig{
			Transport: "stdio",
			Addr:      "0.0.0.0:3001",
		},
		Log: LogConfig{Level: "info"},
	}
}
