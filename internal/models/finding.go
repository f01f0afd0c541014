package models

import "encoding/json"

// Finding is one line of the scanner's newline-delimited JSON output.
// The field set follows TruffleHog v3; records with a different shape still
// parse, with unknown fields ignored and absent ones left zero.
type Finding struct {
	SourceMetadata      SourceMetadata  `json:"SourceMetadata"`
	SourceID            int             `json:"SourceID"`
	SourceType          int             `json:"SourceType"`
	SourceName          string          `json:"SourceName"`
	DetectorType        int             `json:"DetectorType"`
	DetectorName        string          `json:"DetectorName"`
	DetectorDescription string          `json:"DetectorDescription"`
	DecoderName         string          `json:"DecoderName"`
	Verified            bool            `json:"Verified"`
	Raw                 string          `json:"Raw"`
	RawV2               string          `json:"RawV2,omitempty"`
	Redacted            string          `json:"Redacted"`
	ExtraData           map[string]any  `json:"ExtraData,omitempty"`
	StructuredData      json.RawMessage `json:"StructuredData,omitempty"`
}

// SourceMetadata wraps the per-source location block.
type SourceMetadata struct {
	Data SourceData `json:"Data"`
}

// SourceData carries at most one location variant per finding.
type SourceData struct {
	Github *GithubMetadata `json:"Github,omitempty"`
	Git    *GitMetadata    `json:"Git,omitempty"`
	Docker *DockerMetadata `json:"Docker,omitempty"`
}

// GithubMetadata locates a finding inside a GitHub repository scan.
type GithubMetadata struct {
	Link       string `json:"link"`
	Repository string `json:"repository"`
	Commit     string `json:"commit"`
	Email      string `json:"email"`
	File       string `json:"file"`
	Timestamp  string `json:"timestamp"`
	Line       int    `json:"line"`
}

// GitMetadata locates a finding inside a plain git scan.
type GitMetadata struct {
	Repository string `json:"repository"`
	Commit     string `json:"commit"`
	Email      string `json:"email"`
	File       string `json:"file"`
	Timestamp  string `json:"timestamp"`
	Line       int    `json:"line"`
}

// DockerMetadata locates a finding inside an image layer.
type DockerMetadata struct {
	Image string `json:"image"`
	Tag   string `json:"tag"`
	Layer string `json:"layer"`
	File  string `json:"file"`
}
