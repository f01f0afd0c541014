package config

// Default artifact names, matching the tool's historical layout.
const (
	DefaultResultsFile       = "results.txt"
	DefaultReportFile        = "output.xlsx"
	DefaultPersonalReposFile = "personal.txt"
	DefaultOrgsFile          = "org.txt"
	DefaultImagesFile        = "image.txt"
)

// OutputConfig holds the paths of every file a run produces: the
// newline-delimited JSON result log, the spreadsheet, and the plain-text
// listing files written for user inspection.
type OutputConfig struct {
	ResultsFile       string `json:"results_file,omitempty" yaml:"results_file,omitempty"`
	ReportFile        string `json:"report_file,omitempty" yaml:"report_file,omitempty"`
	PersonalReposFile string `json:"personal_repos_file,omitempty" yaml:"personal_repos_file,omitempty"`
	OrgsFile          string `json:"orgs_file,omitempty" yaml:"orgs_file,omitempty"`
	ImagesFile        string `json:"images_file,omitempty" yaml:"images_file,omitempty"`

	// AppendResults keeps an existing result log instead of truncating it,
	// so findings from an interrupted run stay in the final spreadsheet.
	AppendResults bool `json:"append_results" yaml:"append_results"`
}

// NewDefaultOutputConfig creates a new OutputConfig with default values
func NewDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		ResultsFile:       DefaultResultsFile,
		ReportFile:        DefaultReportFile,
		PersonalReposFile: DefaultPersonalReposFile,
		OrgsFile:          DefaultOrgsFile,
		ImagesFile:        DefaultImagesFile,
	}
}
