// Package config loads and validates bugtrail settings from config files,
// environment variables, and defaults.
package config

import "errors"

// Config is the top-level configuration struct for bugtrail.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Diff   DiffConfig   `mapstructure:"diff"`
	Trace  TraceConfig  `mapstructure:"trace"`
	Data   DataConfig   `mapstructure:"data"`
	Report ReportConfig `mapstructure:"report"`
}

// DiffConfig holds hybrid diff engine knobs.
type DiffConfig struct {
	Threshold     float64 `mapstructure:"threshold"`
	Alpha         float64 `mapstructure:"alpha"`
	ContextWindow int     `mapstructure:"context_window"`
	UseSimilarity bool    `mapstructure:"use_similarity"`
}

// TraceConfig holds lineage tracer knobs.
type TraceConfig struct {
	Threshold        float64 `mapstructure:"threshold"`
	SignatureContext int     `mapstructure:"signature_context"`
}

// DataConfig locates the version and commit history inputs. Dir and
// CommitLog select the snapshot-file backend; GitRepo selects the git
// backend instead.
type DataConfig struct {
	Dir       string `mapstructure:"dir"`
	CommitLog string `mapstructure:"commit_log"`
	GitRepo   string `mapstructure:"git_repo"`
}

// ReportConfig holds output rendering knobs.
type ReportConfig struct {
	Format  string `mapstructure:"format"`
	Color   bool   `mapstructure:"color"`
	Archive bool   `mapstructure:"archive"`
	Plot    string `mapstructure:"plot"`
}

// Default configuration values.
const (
	DefaultDiffThreshold    = 0.6
	DefaultDiffAlpha        = 0.6
	DefaultDiffContext      = 4
	DefaultTraceThreshold   = 0.7
	DefaultSignatureContext = 3
	DefaultReportFormat     = FormatText
)

// Supported report formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Validation errors.
var (
	// ErrInvalidDiffThreshold indicates the diff threshold is out of range.
	ErrInvalidDiffThreshold = errors.New("diff.threshold must be between 0 and 1")
	// ErrInvalidDiffAlpha indicates the content/context blend is out of range.
	ErrInvalidDiffAlpha = errors.New("diff.alpha must be between 0 and 1")
	// ErrInvalidDiffContext indicates the context window is negative.
	ErrInvalidDiffContext = errors.New("diff.context_window must be non-negative")
	// ErrInvalidTraceThreshold indicates the trace threshold is out of range.
	ErrInvalidTraceThreshold = errors.New("trace.threshold must be between 0 and 1")
	// ErrInvalidSignatureContext indicates the signature context is negative.
	ErrInvalidSignatureContext = errors.New("trace.signature_context must be non-negative")
	// ErrInvalidReportFormat indicates an unsupported report format.
	ErrInvalidReportFormat = errors.New(`report.format must be "text" or "yaml"`)
	// ErrConflictingBackends indicates both data backends were configured.
	ErrConflictingBackends = errors.New("data.dir and data.git_repo are mutually exclusive")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Diff.Threshold < 0 || c.Diff.Threshold > 1 {
		return ErrInvalidDiffThreshold
	}

	if c.Diff.Alpha < 0 || c.Diff.Alpha > 1 {
		return ErrInvalidDiffAlpha
	}

	if c.Diff.ContextWindow < 0 {
		return ErrInvalidDiffContext
	}

	if c.Trace.Threshold < 0 || c.Trace.Threshold > 1 {
		return ErrInvalidTraceThreshold
	}

	if c.Trace.SignatureContext < 0 {
		return ErrInvalidSignatureContext
	}

	if c.Report.Format != FormatText && c.Report.Format != FormatYAML {
		return ErrInvalidReportFormat
	}

	if c.Data.Dir != "" && c.Data.GitRepo != "" {
		return ErrConflictingBackends
	}

	return nil
}
