package reporter

import (
	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/models"

	"github.com/xuri/excelize/v2"
)

// FindingsSheet is the name of the single sheet every report carries.
const FindingsSheet = "Findings"

// WriteWorkbook renders the rows into an xlsx workbook at path. The fixed
// header row is always written, so a run with zero findings still produces
// a well-formed, recognizable report.
func (r *Reporter) WriteWorkbook(rows []models.ReportRow, path string) error {
	workbook := excelize.NewFile()
	defer func() {
		if err := workbook.Close(); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to release workbook buffer")
		}
	}()

	if err := workbook.SetSheetName("Sheet1", FindingsSheet); err != nil {
		return common.NewOutputError(path, err)
	}

	if err := writeRow(workbook, 1, models.ReportHeader()); err != nil {
		return common.NewOutputError(path, err)
	}
	for i, row := range rows {
		if err := writeRow(workbook, i+2, row.Values()); err != nil {
			return common.NewOutputError(path, err)
		}
	}

	if err := workbook.SaveAs(path); err != nil {
		return common.NewOutputError(path, err)
	}

	r.logger.Info().Str("filePath", path).Int("findings", len(rows)).Msg("Report workbook written")
	return nil
}

func writeRow(workbook *excelize.File, rowNum int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, value := range values {
		cells[i] = value
	}
	anchor, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return workbook.SetSheetRow(FindingsSheet, anchor, &cells)
}
