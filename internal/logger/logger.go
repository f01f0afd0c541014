package logger

import (
	"io"
	stdlog "log"
	"os"

	"github.com/rs/zerolog"
)

// New creates the application logger from file-level configuration.
// Console output always goes to stderr; file output is added when
// LogFile is set.
func New(cfg FileLogConfig) (zerolog.Logger, error) {
	if cfg.MaxLogSizeMB <= 0 {
		cfg.MaxLogSizeMB = DefaultMaxLogSizeMB
	}
	if cfg.MaxLogBackups < 0 {
		cfg.MaxLogBackups = DefaultMaxLogBackups
	}

	level := ParseLevel(cfg.LogLevel)
	format := ParseFormat(cfg.LogFormat)

	writers := []io.Writer{newConsoleWriter(format, os.Stderr)}
	if cfg.LogFile != "" {
		writers = append(writers, newFileWriter(cfg))
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	zl := zerolog.New(multiWriter).
		Level(level).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(level)

	// Route anything that still uses the standard library logger through zerolog.
	stdlog.SetOutput(zl)
	stdlog.SetFlags(0)

	return zl, nil
}
