package reconcile

import "time"

// Config holds run tuning shared by every engine.
type Config struct {
	// BatchSize is the number of remote calls between throttle pauses.
	BatchSize int `mapstructure:"batch_size" default:"10"`
	// WriteDelayMs is the pause after each batch of field writes and creates.
	WriteDelayMs int `mapstructure:"write_delay_ms" default:"200"`
	// DeleteDelayMs is the pause after each batch of deletions.
	DeleteDelayMs int `mapstructure:"delete_delay_ms" default:"1000"`
	// FetchConcurrency bounds parallel field reads.
	FetchConcurrency int `mapstructure:"fetch_concurrency" default:"10"`
	// PreviewLimit is the number of items shown in a preview.
	PreviewLimit int `mapstructure:"preview_limit" default:"50"`
	// FailureDisplayLimit is the number of failure messages listed inline.
	FailureDisplayLimit int `mapstructure:"failure_display_limit" default:"10"`
}

// DefaultConfig returns the values used when no configuration is loaded.
func DefaultConfig() Config {
	return Config{
		BatchSize:           10,
		WriteDelayMs:        200,
		DeleteDelayMs:       1000,
		FetchConcurrency:    DefaultFetchConcurrency,
		PreviewLimit:        50,
		FailureDisplayLimit: 10,
	}
}

// WriteDelay returns the throttle pause for writes.
func (c Config) WriteDelay() time.Duration {
	return time.Duration(c.WriteDelayMs) * time.Millisecond
}

// DeleteDelay returns the throttle pause for deletions.
func (c Config) DeleteDelay() time.Duration {
	return time.Duration(c.DeleteDelayMs) * time.Millisecond
}
