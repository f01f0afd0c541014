package models

import "time"

// RunStatus is the overall outcome of a run.
type RunStatus string

const (
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusNoTargets   RunStatus = "NO_TARGETS"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
)

// RunSummary aggregates per-phase statistics for the end-of-run report line.
type RunSummary struct {
	SessionID    string        // e.g. YYYYMMDD-HHMMSS timestamp
	Mode         string        // selected scan mode
	TargetSource string        // input file path, or "github_account" for own-account runs
	EnumStats    EnumStats     // statistics from the enumeration phase
	ScanStats    ScanStats     // statistics from the dispatch phase
	FindingRows  int           // data rows written to the spreadsheet
	ReportPath   string        // path of the generated workbook
	Duration     time.Duration // total wall-clock duration
	Status       RunStatus
}

// EnumStats holds statistics from the enumeration phase.
type EnumStats struct {
	Emitted       int      // targets emitted after deduplication
	Duplicates    int      // inputs collapsed into an earlier target
	SkippedInputs []string // accounts/namespaces whose listing failed
}

// ScanStats holds statistics from the dispatch phase.
type ScanStats struct {
	Attempted      int      // targets handed to the scanner
	Succeeded      int      // scans that produced a usable result
	SkippedTargets []string // targets whose scan could not be launched
}

// NewRunSummary creates a summary seeded with the session identity.
func NewRunSummary(sessionID, mode, targetSource string) *RunSummary {
	return &RunSummary{
		SessionID:    sessionID,
		Mode:         mode,
		TargetSource: targetSource,
		Status:       RunStatusCompleted,
	}
}
