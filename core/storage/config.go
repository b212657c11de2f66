package storage

// Config holds the object storage settings used for report archives.
type Config struct {
	// Enabled turns report archiving on. When false reports stay in memory only.
	Enabled bool `mapstructure:"enabled" default:"false"`

	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`

	// Bucket receives one CSV object per run.
	Bucket string `mapstructure:"bucket" default:"bulk-reports"`
	Region string `mapstructure:"region" default:""`

	// TimeoutSeconds bounds connection setup and the first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
