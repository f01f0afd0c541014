package models

import "strconv"

// ReportRow is the flattened, spreadsheet-ready form of a Finding.
// Every run uses the same fixed column set; fields a record does not carry
// stay empty.
type ReportRow struct {
	Target              string
	DetectorName        string
	DetectorDescription string
	Verified            string
	Raw                 string
	Redacted            string
	Repository          string
	Commit              string
	File                string
	Line                string
	Link                string
	Email               string
	Timestamp           string
	Image               string
	Tag                 string
	Layer               string
}

// ReportHeader is the fixed header row of the findings sheet, in column order.
func ReportHeader() []string {
	return []string{
		"Target",
		"DetectorName",
		"DetectorDescription",
		"Verified",
		"Raw",
		"Redacted",
		"Repository",
		"Commit",
		"File",
		"Line",
		"Link",
		"Email",
		"Timestamp",
		"Image",
		"Tag",
		"Layer",
	}
}

// Values returns the row's cells in header order.
func (r ReportRow) Values() []string {
	return []string{
		r.Target,
		r.DetectorName,
		r.DetectorDescription,
		r.Verified,
		r.Raw,
		r.Redacted,
		r.Repository,
		r.Commit,
		r.File,
		r.Line,
		r.Link,
		r.Email,
		r.Timestamp,
		r.Image,
		r.Tag,
		r.Layer,
	}
}

// FlattenFinding reshapes one scanner record into a report row. The target
// column prefers the most specific location the record carries: GitHub
// repository, git repository, docker image, then the record's source name.
func FlattenFinding(f Finding) ReportRow {
	row := ReportRow{
		DetectorName:        f.DetectorName,
		DetectorDescription: f.DetectorDescription,
		Verified:            strconv.FormatBool(f.Verified),
		Raw:                 f.Raw,
		Redacted:            f.Redacted,
		Target:              f.SourceName,
	}

	switch {
	case f.SourceMetadata.Data.Github != nil:
		gh := f.SourceMetadata.Data.Github
		row.Target = gh.Repository
		row.Repository = gh.Repository
		row.Commit = gh.Commit
		row.File = gh.File
		row.Line = formatLine(gh.Line)
		row.Link = gh.Link
		row.Email = gh.Email
		row.Timestamp = gh.Timestamp
	case f.SourceMetadata.Data.Git != nil:
		git := f.SourceMetadata.Data.Git
		row.Target = git.Repository
		row.Repository = git.Repository
		row.Commit = git.Commit
		row.File = git.File
		row.Line = formatLine(git.Line)
		row.Email = git.Email
		row.Timestamp = git.Timestamp
	case f.SourceMetadata.Data.Docker != nil:
		d := f.SourceMetadata.Data.Docker
		row.Target = d.Image
		if d.Tag != "" {
			row.Target = d.Image + ":" + d.Tag
		}
		row.Image = d.Image
		row.Tag = d.Tag
		row.Layer = d.Layer
		row.File = d.File
	}

	return row
}

// formatLine renders a line number, leaving the cell empty when the record
// carried none.
func formatLine(line int) string {
	if line <= 0 {
		return ""
	}
	return strconv.Itoa(line)
}
