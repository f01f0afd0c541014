// Package reporter reshapes the raw result log into the findings workbook.
package reporter

import (
	"bytes"
	"encoding/json"

	"github.com/aleister1102/trufflex/internal/datastore"
	"github.com/aleister1102/trufflex/internal/models"

	"github.com/rs/zerolog"
)

// Reporter aggregates the scanner's line-delimited JSON output and renders
// the spreadsheet.
type Reporter struct {
	logger zerolog.Logger
}

// NewReporter creates a Reporter.
func NewReporter(logger zerolog.Logger) *Reporter {
	return &Reporter{
		logger: logger.With().Str("component", "Reporter").Logger(),
	}
}

// Aggregate parses the result log into report rows, in log order. Each line
// is parsed independently: a malformed line is logged and skipped so one
// corrupt record never suppresses the rest of the report.
func (r *Reporter) Aggregate(logPath string) ([]models.ReportRow, error) {
	var rows []models.ReportRow
	totalLines := 0
	malformed := 0

	err := datastore.ForEachLine(logPath, func(lineNum int, line []byte) error {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			return nil
		}
		totalLines++

		var finding models.Finding
		if err := json.Unmarshal(trimmed, &finding); err != nil {
			malformed++
			r.logger.Warn().
				Err(err).
				Int("line", lineNum).
				Str("filePath", logPath).
				Msg("Skipping malformed result line")
			return nil
		}

		rows = append(rows, models.FlattenFinding(finding))
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("filePath", logPath).
		Int("findings", len(rows)).
		Int("malformedLines", malformed).
		Int("totalLines", totalLines).
		Msg("Aggregated result log")
	return rows, nil
}
