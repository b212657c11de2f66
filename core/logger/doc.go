// Package logger builds the zap logger shared by the server and the CLI.
//
// A debug level selects zap's development preset; any other level uses the production
// preset at that level. The console format colors the level, json is the default.
//
// HTTP handlers log through WithRayID so every line of a request carries the ray_id set
// by the rayid middleware.
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	logger.WithRayID(log, c).Warn("Preview failed", zap.Error(err))
package logger
