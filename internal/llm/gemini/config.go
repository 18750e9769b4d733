package gemini

import (
	"log/slog"
	"time"
)

// Config for the Gemini client. The API key comes from the caller
// (common.Config is the single configuration surface); an empty key
// means the client constructs in disabled mode.
type Config struct {
	APIKey  string
	Model   string        // e.g., "gemini-2.0-flash"
	Timeout time.Duration // per-call deadline
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	if c.Timeout <= 0 {
		c.Timeout = 45 * time.Second
	}
	return c
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
