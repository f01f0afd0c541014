package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newConsoleWriter wraps output according to the configured format.
// JSON output passes through unchanged; console and text use
// zerolog.ConsoleWriter, text without colors.
func newConsoleWriter(format LogFormat, output io.Writer) io.Writer {
	switch format {
	case FormatJSON:
		return output
	case FormatText:
		return zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	default:
		return zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}
}

// newFileWriter creates a rotating file writer. File output never uses
// colors regardless of the console format.
func newFileWriter(cfg FileLogConfig) io.Writer {
	// Best effort; lumberjack surfaces the open error on first write.
	_ = os.MkdirAll(filepath.Dir(cfg.LogFile), 0755)

	rotating := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxLogSizeMB,
		MaxBackups: cfg.MaxLogBackups,
		LocalTime:  true,
	}

	if ParseFormat(cfg.LogFormat) == FormatJSON {
		return rotating
	}
	return zerolog.ConsoleWriter{
		Out:        rotating,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
}
