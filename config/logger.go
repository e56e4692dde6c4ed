// ABOUTME: Builds the root structured logger from the configured level
// ABOUTME: Shared by the web server, MCP handlers and the Google importer
package config

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger returns a logger writing to w. Unknown levels fall back to info.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          AppName,
	})
}
