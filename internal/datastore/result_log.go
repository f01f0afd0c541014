package datastore

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/config"

	"github.com/rs/zerolog"
)

// ResultLog is the append-only newline-delimited JSON log that collects the
// scanner's raw stdout across all targets of a run. It is the durable record:
// the spreadsheet is derived from it and can always be rebuilt.
type ResultLog struct {
	path   string
	file   *os.File
	mu     sync.Mutex
	lines  int
	logger zerolog.Logger
}

// NewResultLog opens the result log for writing. A fresh run truncates any
// previous log unless AppendResults is set.
func NewResultLog(cfg config.OutputConfig, logger zerolog.Logger) (*ResultLog, error) {
	path := cfg.ResultsFile
	if path == "" {
		path = config.DefaultResultsFile
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, common.WrapError(err, "failed to create result log directory: "+dir)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if cfg.AppendResults {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, common.WrapError(err, "failed to open result log: "+path)
	}

	return &ResultLog{
		path:   path,
		file:   file,
		logger: logger.With().Str("component", "ResultLog").Logger(),
	}, nil
}

// Path returns the location of the log on disk.
func (rl *ResultLog) Path() string {
	return rl.path
}

// LinesAppended returns how many non-empty lines this handle has written.
func (rl *ResultLog) LinesAppended() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.lines
}

// Append writes one target's raw scanner output to the log. Interior
// newlines are preserved as-is (one finding per line); the tail is
// normalized to exactly one newline so consecutive targets never glue their
// findings onto a shared line. Empty output is a no-op.
func (rl *ResultLog) Append(raw []byte) error {
	trimmed := bytes.TrimRight(raw, "\r\n \t")
	if len(trimmed) == 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	chunk := make([]byte, 0, len(trimmed)+1)
	chunk = append(chunk, trimmed...)
	chunk = append(chunk, '\n')
	if _, err := rl.file.Write(chunk); err != nil {
		return common.WrapError(err, "failed to append to result log: "+rl.path)
	}
	rl.lines += bytes.Count(trimmed, []byte{'\n'}) + 1
	return nil
}

// Sync flushes the log to disk. The dispatcher calls it after every target
// so an interrupted run keeps everything scanned so far.
func (rl *ResultLog) Sync() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if err := rl.file.Sync(); err != nil {
		return common.WrapError(err, "failed to sync result log: "+rl.path)
	}
	return nil
}

// Close releases the underlying file after a final flush.
func (rl *ResultLog) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if err := rl.file.Sync(); err != nil {
		rl.logger.Warn().Err(err).Msg("Final result log sync failed")
	}
	return rl.file.Close()
}

// ForEachLine streams a result log line by line in file order, calling fn
// with the 1-based line number and the raw line (without its newline).
// A bufio.Reader is used instead of a Scanner so a single oversized finding
// cannot abort the whole pass.
func ForEachLine(path string, fn func(lineNum int, line []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return common.WrapError(err, "failed to open result log: "+path)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	lineNum := 0
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNum++
			trimmed := bytes.TrimRight(line, "\r\n")
			if cbErr := fn(lineNum, trimmed); cbErr != nil {
				return cbErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return common.WrapError(err, "failed to read result log: "+path)
		}
	}
}
