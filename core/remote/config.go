package remote

import "time"

// Config holds connection settings for the remote API.
type Config struct {
	// BaseURL is the API root, without trailing slash.
	BaseURL string `mapstructure:"base_url" default:""`
	// Token is the opaque bearer credential forwarded on every request.
	Token string `mapstructure:"token" default:""`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RequestsPerSecond is the outbound rate limit. Zero disables it.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"20"`
	// CacheSize is the number of field values kept in memory. Zero disables caching.
	CacheSize int `mapstructure:"cache_size" default:"5000"`
	// CacheTTLSeconds is how long a cached field value stays valid.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
	// FetchConcurrency bounds parallel field reads in GetBatchFieldValues.
	FetchConcurrency int `mapstructure:"fetch_concurrency" default:"10"`
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the field cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
