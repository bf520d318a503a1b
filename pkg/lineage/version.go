// Package lineage walks a bug's textual signature backward through file
// version history to locate the version that introduced it.
package lineage

// FileVersion is one historical snapshot of a file. Immutable once
// constructed; providers cache it by version number.
type FileVersion struct {
	Version    int
	Path       string
	Language   string
	Lines      []string
	Normalized []string
}

// CommitInfo describes one commit touching a file, in version order.
type CommitInfo struct {
	Version  int
	Message  string
	File     string
	IsBugFix bool
}

// VersionProvider serves historical versions of a single file.
type VersionProvider interface {
	// Exists reports whether the given version can be loaded.
	Exists(version int) bool

	// Load returns the given version. It fails with ErrVersionNotFound
	// when the version is absent.
	Load(version int) (*FileVersion, error)

	// AvailableVersions returns all loadable version numbers, ascending.
	AvailableVersions() []int
}

// CommitSource serves the ordered commit history of files.
type CommitSource interface {
	// CommitsForFile returns the commits touching name, oldest first.
	CommitsForFile(name string) ([]CommitInfo, error)
}
