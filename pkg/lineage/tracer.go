package lineage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/bugtrail/pkg/diff"
)

// tracerName is the OTel tracer name for the lineage package.
const tracerName = "bugtrail"

// VersionSource creates version providers per file path.
type VersionSource interface {
	// ProviderFor returns the provider serving name's versions.
	ProviderFor(name string) (VersionProvider, error)
}

// Config carries the tunables of a Tracer. Zero values select defaults.
type Config struct {
	// Threshold is the minimum window score for the backward search.
	Threshold float64

	// SignatureContext is the context window for signature extraction.
	SignatureContext int

	// Engine is the diff engine used for signature extraction. Nil selects
	// the default hybrid engine.
	Engine *diff.Engine

	// Logger receives progress and per-item failure logs.
	Logger *slog.Logger
}

// Tracer walks bug signatures backward through version history. It owns
// per-file provider and commit-history caches; create one per run and drop
// it (or call Clear) when done. A Tracer is safe for concurrent use.
type Tracer struct {
	engine    *diff.Engine
	versions  VersionSource
	commits   CommitSource
	threshold float64
	sigWindow int
	logger    *slog.Logger

	mu        sync.Mutex
	providers map[string]VersionProvider
	histories map[string][]CommitInfo
}

// NewTracer creates a tracer over the given version and commit sources.
// The commit source may be nil when only TraceSingleBug is used.
func NewTracer(versions VersionSource, commits CommitSource, cfg Config) *Tracer {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultTraceThreshold
	}

	if cfg.SignatureContext == 0 {
		cfg.SignatureContext = DefaultSignatureContext
	}

	if cfg.Engine == nil {
		cfg.Engine = diff.NewEngine()
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Tracer{
		engine:    cfg.Engine,
		versions:  versions,
		commits:   commits,
		threshold: cfg.Threshold,
		sigWindow: cfg.SignatureContext,
		logger:    cfg.Logger,
		providers: make(map[string]VersionProvider),
		histories: make(map[string][]CommitInfo),
	}
}

// Clear drops the cached providers and commit histories.
func (t *Tracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.providers = make(map[string]VersionProvider)
	t.histories = make(map[string][]CommitInfo)
}

// providerFor returns the cached provider for name, creating it on first use.
func (t *Tracer) providerFor(name string) (VersionProvider, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.providers[name]; ok {
		return p, nil
	}

	p, err := t.versions.ProviderFor(name)
	if err != nil {
		return nil, fmt.Errorf("provider for %s: %w", name, err)
	}

	t.providers[name] = p

	return p, nil
}

// historyFor returns the cached commit history for name, loading it on
// first use.
func (t *Tracer) historyFor(name string) ([]CommitInfo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.histories[name]; ok {
		return h, nil
	}

	h, err := t.commits.CommitsForFile(name)
	if err != nil {
		return nil, fmt.Errorf("commit history for %s: %w", name, err)
	}

	t.histories[name] = h

	return h, nil
}

// TraceSingleBug traces the bug fixed at fixVersion of file back to its
// introduction. It always returns a Lineage describing the outcome; the
// error is non-nil only for the fatal per-trace cases (missing or
// unloadable fix pair, no provider).
func (t *Tracer) TraceSingleBug(ctx context.Context, file string, fixVersion int) (*Lineage, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "bugtrail.trace",
		trace.WithAttributes(
			attribute.String("trace.file", file),
			attribute.Int("trace.fix_version", fixVersion),
		))
	defer span.End()

	result := &Lineage{File: file, FixVersion: fixVersion}

	provider, err := t.providerFor(file)
	if err != nil {
		result.ErrorMessage = err.Error()

		return result, err
	}

	if !provider.Exists(fixVersion) || !provider.Exists(fixVersion-1) {
		result.ErrorMessage = "missing required versions"

		return result, fmt.Errorf("versions %d and %d of %s: %w",
			fixVersion-1, fixVersion, file, ErrTraceIncomplete)
	}

	before, after, err := t.loadFixPair(provider, file, fixVersion)
	if err != nil {
		result.ErrorMessage = err.Error()

		return result, err
	}

	sig := ExtractSignature(t.engine, before, after, t.sigWindow)
	result.Signature = sig
	result.FixCommit = t.fixCommit(file, fixVersion)

	if sig.IsEmpty() {
		// Pure-insertion fixes leave nothing to search for. This is a
		// defined terminal outcome, not a failure.
		result.ErrorMessage = "no buggy lines identified"

		t.logger.Debug("empty signature, nothing to trace",
			slog.String("file", file), slog.Int("fix_version", fixVersion),
			slog.String("fix_type", string(sig.FixType)))

		return result, nil
	}

	history := t.loadHistory(provider, fixVersion-1)
	t.scanBackward(ctx, sig, history, result)

	result.Confidence = TraceConfidence(result.Matches, len(sig.BuggyLines), result.IntroductionFound)
	result.TraceComplete = result.IntroductionFound

	if result.IntroductionFound {
		result.CommitsSpanned = fixVersion - result.IntroductionVersion
	}

	span.SetAttributes(
		attribute.Bool("trace.complete", result.TraceComplete),
		attribute.Float64("trace.confidence", result.Confidence),
	)

	t.logger.Info("trace finished",
		slog.String("file", file),
		slog.Int("fix_version", fixVersion),
		slog.Bool("complete", result.TraceComplete),
		slog.Float64("confidence", result.Confidence))

	return result, nil
}

// loadFixPair loads the pre-fix and post-fix versions. Failure here is
// fatal for the trace because the signature cannot be extracted.
func (t *Tracer) loadFixPair(provider VersionProvider, file string, fixVersion int) (before, after *FileVersion, err error) {
	before, err = provider.Load(fixVersion - 1)
	if err != nil {
		return nil, nil, fmt.Errorf("pre-fix version of %s: %w: %w", file, ErrTraceIncomplete, err)
	}

	after, err = provider.Load(fixVersion)
	if err != nil {
		return nil, nil, fmt.Errorf("fix version of %s: %w: %w", file, ErrTraceIncomplete, err)
	}

	return before, after, nil
}

// loadHistory loads versions from newest backward to 0. A missing version
// truncates the range; load failures of existing versions do too.
func (t *Tracer) loadHistory(provider VersionProvider, newest int) []*FileVersion {
	var history []*FileVersion

	for version := newest; version >= 0; version-- {
		if !provider.Exists(version) {
			break
		}

		fv, err := provider.Load(version)
		if err != nil {
			t.logger.Warn("version load failed, truncating search",
				slog.Int("version", version), slog.Any("error", err))

			break
		}

		history = append(history, fv)
	}

	return history
}

// scanBackward runs the sliding-window search newest to oldest, stopping
// at the first version without an accepted match. The sequential order is
// part of the contract; the early exit defines the introduction version.
func (t *Tracer) scanBackward(ctx context.Context, sig *Signature, history []*FileVersion, result *Lineage) {
	scanCtx, span := otel.Tracer(tracerName).Start(ctx, "bugtrail.scan",
		trace.WithAttributes(attribute.Int("scan.versions", len(history))))
	defer span.End()

	missed := false

	for _, version := range history {
		// Per-version span; suppressed unless verbose tracing is on.
		_, versionSpan := otel.Tracer(tracerName).Start(scanCtx, "bugtrail.scan.version",
			trace.WithAttributes(attribute.Int("scan.target_version", version.Version)))

		match, ok := SearchVersion(sig, version, t.threshold)

		versionSpan.End()

		if !ok {
			missed = true

			break
		}

		result.Matches = append(result.Matches, match)
		result.IntroductionVersion = version.Version
		result.IntroductionFound = true

		t.logger.Debug("signature matched",
			slog.Int("version", version.Version),
			slog.Float64("score", match.Confidence))
	}

	// Exhausting the loaded range without a miss conflates "present since
	// the initial version" with "present since the oldest version we could
	// load"; flag the latter so callers can tell them apart.
	if !missed && result.IntroductionFound && result.IntroductionVersion > 0 {
		result.HistoryTruncated = true
	}
}

// fixCommit resolves the commit metadata for the fix version, when a
// commit source is available.
func (t *Tracer) fixCommit(file string, fixVersion int) *CommitInfo {
	if t.commits == nil {
		return nil
	}

	history, err := t.historyFor(file)
	if err != nil {
		t.logger.Warn("commit lookup failed", slog.String("file", file), slog.Any("error", err))

		return nil
	}

	for i := range history {
		if history[i].Version == fixVersion {
			return &history[i]
		}
	}

	return nil
}

// AnalyzeFile traces every bug-fix commit of one file. Per-fix failures
// are recorded on their Lineage and do not abort the remaining fixes.
func (t *Tracer) AnalyzeFile(ctx context.Context, file string) ([]*Lineage, error) {
	history, err := t.historyFor(file)
	if err != nil {
		return nil, err
	}

	var fixes []CommitInfo

	for _, commit := range history {
		if commit.IsBugFix {
			fixes = append(fixes, commit)
		}
	}

	if len(fixes) == 0 {
		return nil, fmt.Errorf("%s: %w", file, ErrNoBugFixFound)
	}

	lineages := make([]*Lineage, 0, len(fixes))

	for _, fix := range fixes {
		l, err := t.TraceSingleBug(ctx, file, fix.Version)
		if err != nil {
			t.logger.Warn("trace failed",
				slog.String("file", file),
				slog.Int("fix_version", fix.Version),
				slog.Any("error", err))
		}

		lineages = append(lineages, l)
	}

	return lineages, nil
}

// BatchResult collects per-file analysis outcomes. One file's failure
// never aborts the others.
type BatchResult struct {
	Lineages map[string][]*Lineage
	Errors   map[string]error
}

// BatchAnalyze runs AnalyzeFile over every file, isolating failures.
func (t *Tracer) BatchAnalyze(ctx context.Context, files []string) *BatchResult {
	result := &BatchResult{
		Lineages: make(map[string][]*Lineage),
		Errors:   make(map[string]error),
	}

	for _, file := range files {
		lineages, err := t.AnalyzeFile(ctx, file)
		if err != nil {
			result.Errors[file] = err

			continue
		}

		result.Lineages[file] = lineages
	}

	return result
}
