package lineage

import "errors"

// Sentinel errors for the tracing workflow. Callers match them with
// errors.Is; batch analysis records them per item and keeps going.
var (
	// ErrVersionNotFound reports that a required file version is absent
	// from the provider. During the backward scan it truncates the search
	// range instead of failing the trace.
	ErrVersionNotFound = errors.New("file version not found")

	// ErrTraceIncomplete reports that the fix version or its immediate
	// predecessor could not be loaded, which makes the single trace
	// impossible.
	ErrTraceIncomplete = errors.New("trace incomplete")

	// ErrNoBugFixFound reports that a file's commit history contains no
	// bug-fix commits, so there is nothing to trace.
	ErrNoBugFixFound = errors.New("no bug-fix commits found")
)
