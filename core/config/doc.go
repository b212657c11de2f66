// Package config loads the application configuration.
//
// Defaults come from the `default` struct tags of every section. An optional config.yaml
// in the given directory overrides them, and environment variables (also read from a
// .env file) override both. Nested keys map to upper-case names joined by underscores,
// so remote.token is REMOTE_TOKEN and run.write_delay_ms is RUN_WRITE_DELAY_MS.
//
// # Sections
//
//   - Server: listen port, API key, body limit
//   - Remote: API base URL, bearer token, rate limit and read cache
//   - Run: batch size, throttle delays, fetch concurrency, preview limits
//   - Storage: MinIO/S3 report archive
//   - Log: level and format
//   - Database: migration log datastore (sqlite or mysql)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Remote.BaseURL)
package config
