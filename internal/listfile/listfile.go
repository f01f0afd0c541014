package listfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Custom errors for list file operations
var (
	ErrFileNotFound   = errors.New("input file not found")
	ErrFilePermission = errors.New("permission denied reading input file")
	ErrFileEmpty      = errors.New("input file contains no entries")
	ErrReadingFile    = errors.New("error reading input file")
)

// ReadLines reads a newline-delimited list file and returns its non-empty
// trimmed lines in file order. An existing but entry-less file is an error:
// every mode that takes a list file is pointless without at least one entry.
func ReadLines(filePath string, logger zerolog.Logger) ([]string, error) {
	fileLogger := logger.With().Str("filePath", filePath).Logger()

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		fileLogger.Error().Err(err).Msg("Input file not found")
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}
	if err != nil {
		fileLogger.Error().Err(err).Msg("Error checking file stat")
		return nil, fmt.Errorf("error checking file %s: %v", filePath, err)
	}
	if info.IsDir() {
		fileLogger.Error().Msg("Input path is a directory, not a file")
		return nil, fmt.Errorf("input path is a directory, not a file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsPermission(err) {
			fileLogger.Error().Err(err).Msg("Permission denied reading input file")
			return nil, fmt.Errorf("%w: %s", ErrFilePermission, filePath)
		}
		fileLogger.Error().Err(err).Msg("Error opening input file")
		return nil, fmt.Errorf("%w: %s (cause: %v)", ErrReadingFile, filePath, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)

	totalLinesRead := 0
	for scanner.Scan() {
		totalLinesRead++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if scanErr := scanner.Err(); scanErr != nil {
		fileLogger.Error().Err(scanErr).Msg("Error during scanning of file")
		return nil, fmt.Errorf("%w: %s (scan error: %v)", ErrReadingFile, filePath, scanErr)
	}

	if len(lines) == 0 {
		fileLogger.Warn().Int("totalLinesRead", totalLinesRead).Msg("Input file contains no entries")
		return nil, fmt.Errorf("%w: %s", ErrFileEmpty, filePath)
	}

	fileLogger.Debug().
		Int("totalLinesRead", totalLinesRead).
		Int("entryCount", len(lines)).
		Msg("Finished reading list file")

	return lines, nil
}

// WriteLines writes one identifier per line, replacing any previous file.
// Listing files record what a run discovered, so a rerun starts fresh.
func WriteLines(filePath string, lines []string, logger zerolog.Logger) error {
	if dir := filepath.Dir(filePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", filePath, err)
		}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write to %s: %w", filePath, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filePath, err)
	}

	logger.Info().Str("filePath", filePath).Int("entryCount", len(lines)).Msg("Wrote listing file")
	return nil
}
