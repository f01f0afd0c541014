package config

// Scanner defaults. The binary is resolved through PATH unless an absolute
// path is configured.
const (
	DefaultScannerBinary         = "trufflehog"
	DefaultScannerTimeoutSeconds = 1800
	DefaultTagScanDelayMS        = 500
)

// ScannerConfig holds settings for the external secret scanner subprocess.
type ScannerConfig struct {
	BinaryPath     string `json:"binary_path,omitempty" yaml:"binary_path,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"omitempty,min=1"`

	// OnlyVerified and NoUpdate are forwarded to docker-mode scans
	// (--only-verified / --no-update).
	OnlyVerified bool `json:"only_verified" yaml:"only_verified"`
	NoUpdate     bool `json:"no_update" yaml:"no_update"`

	// TagScanDelayMS throttles consecutive docker image scans so runs over
	// many tags do not hammer the registry.
	TagScanDelayMS int `json:"tag_scan_delay_ms,omitempty" yaml:"tag_scan_delay_ms,omitempty" validate:"omitempty,min=0"`

	// SystemMemThreshold pauses dispatch while system memory usage is above
	// this fraction. Zero disables the guard.
	SystemMemThreshold float64 `json:"system_mem_threshold,omitempty" yaml:"system_mem_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// NewDefaultScannerConfig creates a new ScannerConfig with default values
func NewDefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		BinaryPath:         DefaultScannerBinary,
		TimeoutSeconds:     DefaultScannerTimeoutSeconds,
		OnlyVerified:       true,
		NoUpdate:           true,
		TagScanDelayMS:     DefaultTagScanDelayMS,
		SystemMemThreshold: 0.9,
	}
}
