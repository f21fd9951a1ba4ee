package config

import (
    "os"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// SetupLogger configures the global zerolog logger: human-readable
// console output at debug level in development, JSON at info elsewhere.
// LOG_LEVEL overrides the level.
func SetupLogger(cfg Config) {
    zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
    level := zerolog.InfoLevel
    if cfg.Development() {
        log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
        level = zerolog.DebugLevel
    }
    if l, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
        level = l
    }
    zerolog.SetGlobalLevel(level)
}
