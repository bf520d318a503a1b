package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/bugtrail/internal/config"
	"github.com/Sumatoshi-tech/bugtrail/internal/history"
	"github.com/Sumatoshi-tech/bugtrail/internal/report"
	"github.com/Sumatoshi-tech/bugtrail/pkg/lineage"
	"github.com/Sumatoshi-tech/bugtrail/pkg/observability"
	"github.com/Sumatoshi-tech/bugtrail/pkg/version"
)

// ErrNoDataSource is returned when neither a snapshot directory nor a git
// repository is configured.
var ErrNoDataSource = errors.New(
	"no data source configured. Use --data-dir with --commit-log, or --git-repo",
)

// ErrFixVersionBatch is returned when --fix-version is combined with more
// than one file.
var ErrFixVersionBatch = errors.New("--fix-version requires exactly one file")

// archiveSuffix marks report paths that are stored LZ4-compressed.
const archiveSuffix = ".lz4"

// traceSource is the backend serving file versions and commit histories.
// Both backends also expose cache hit/miss counters.
type traceSource interface {
	lineage.VersionSource
	lineage.CommitSource
	observability.CacheStatsProvider
}

// TraceCommand holds configuration and flags for the trace command.
type TraceCommand struct {
	configPath string

	dataDir   string
	commitLog string
	gitRepo   string

	fixVersion int

	format   string
	output   string
	plotPath string
	noColor  bool

	diagAddr string
	debug    bool
}

// NewTraceCommand creates the lineage trace command.
func NewTraceCommand() *cobra.Command {
	tc := &TraceCommand{}

	cmd := &cobra.Command{
		Use:   "trace <file>...",
		Short: "Trace bug fixes backward to their introduction",
		Long: `Trace the bug fixes of one or more files backward through their
version history to the version where each bug was introduced.

With --fix-version the trace covers that single fix; otherwise every
bug-fix commit of the file is traced. Multiple files run as a batch
with per-file failure isolation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: tc.run,
	}

	cmd.Flags().StringVar(&tc.configPath, "config", "", "Config file path (default: .bugtrail.yaml in CWD or $HOME)")
	cmd.Flags().StringVar(&tc.dataDir, "data-dir", "", "Directory of {file}_v{N}.txt version snapshots")
	cmd.Flags().StringVar(&tc.commitLog, "commit-log", "", "Commit log file for the snapshot backend")
	cmd.Flags().StringVar(&tc.gitRepo, "git-repo", "", "Git repository path (alternative to --data-dir)")
	cmd.Flags().IntVar(&tc.fixVersion, "fix-version", 0, "Trace only the fix at this version (0 = all bug fixes)")
	cmd.Flags().StringVar(&tc.format, "format", "", "Output format: text, yaml (default from config)")
	cmd.Flags().StringVar(&tc.output, "output", "", "Write the report to this path (.lz4 suffix compresses)")
	cmd.Flags().StringVar(&tc.plotPath, "plot", "", "Write an HTML confidence chart to this path")
	cmd.Flags().BoolVar(&tc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&tc.diagAddr, "diag-addr", "", "Serve /metrics, /healthz and /readyz on this address")
	cmd.Flags().BoolVar(&tc.debug, "debug", false, "Enable debug logging and verbose tracing")

	return cmd
}

func (tc *TraceCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(tc.configPath)
	if err != nil {
		return err
	}

	err = tc.applyOverrides(cfg)
	if err != nil {
		return err
	}

	if tc.fixVersion > 0 && len(args) != 1 {
		return ErrFixVersionBatch
	}

	providers, err := initTraceObservability(tc.debug)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	source, err := tc.openSource(cfg)
	if err != nil {
		return err
	}

	diag, err := tc.startDiagnostics(providers, source)
	if err != nil {
		return err
	}

	if diag != nil {
		defer func() { _ = diag.Close() }()
	}

	tracer := lineage.NewTracer(source, source, lineage.Config{
		Threshold:        cfg.Trace.Threshold,
		SignatureContext: cfg.Trace.SignatureContext,
		Engine:           engineFromConfig(cfg),
		Logger:           providers.Logger,
	})

	rep, err := tc.execute(cmd.Context(), providers, tracer, args)
	if err != nil {
		return err
	}

	return tc.render(cmd.OutOrStdout(), cfg, rep)
}

// applyOverrides lets flags win over file and env configuration. A backend
// flag displaces the other backend so a configured default does not shadow
// the explicit choice.
func (tc *TraceCommand) applyOverrides(cfg *config.Config) error {
	if tc.dataDir != "" && tc.gitRepo != "" {
		return config.ErrConflictingBackends
	}

	if tc.dataDir != "" {
		cfg.Data.Dir = tc.dataDir
		cfg.Data.GitRepo = ""
	}

	if tc.commitLog != "" {
		cfg.Data.CommitLog = tc.commitLog
	}

	if tc.gitRepo != "" {
		cfg.Data.GitRepo = tc.gitRepo
		cfg.Data.Dir = ""
	}

	if tc.format != "" {
		cfg.Report.Format = tc.format
	}

	if tc.plotPath != "" {
		cfg.Report.Plot = tc.plotPath
	}

	if tc.noColor {
		cfg.Report.Color = false
	}

	return cfg.Validate()
}

func (tc *TraceCommand) openSource(cfg *config.Config) (traceSource, error) {
	if cfg.Data.GitRepo != "" {
		return history.OpenGitSource(cfg.Data.GitRepo)
	}

	if cfg.Data.Dir == "" || cfg.Data.CommitLog == "" {
		return nil, ErrNoDataSource
	}

	return &snapshotSource{
		DirSource:   history.NewDirSource(cfg.Data.Dir),
		CommitStore: history.NewCommitStore(cfg.Data.CommitLog),
	}, nil
}

func (tc *TraceCommand) startDiagnostics(
	providers observability.Providers,
	source traceSource,
) (*observability.DiagnosticsServer, error) {
	if tc.diagAddr == "" {
		return nil, nil
	}

	err := observability.RegisterCacheMetrics(providers.Meter, map[string]observability.CacheStatsProvider{
		"version": source,
	})
	if err != nil {
		return nil, err
	}

	return observability.NewDiagnosticsServer(tc.diagAddr, providers.Tracer)
}

func (tc *TraceCommand) execute(
	ctx context.Context,
	providers observability.Providers,
	tracer *lineage.Tracer,
	files []string,
) (*report.Report, error) {
	commandMetrics, err := observability.NewCommandMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	traceMetrics, err := observability.NewTraceMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	ctx, span := providers.Tracer.Start(ctx, "bugtrail.run",
		trace.WithAttributes(attribute.Int("trace.files", len(files))))
	defer span.End()

	doneInflight := commandMetrics.TrackInflight(ctx, "trace")
	defer doneInflight()

	startedAt := time.Now()

	rep, err := tc.buildReport(ctx, tracer, traceMetrics, files)

	status := "ok"
	if err != nil {
		status = "error"
	}

	commandMetrics.RecordCommand(ctx, "trace", status, time.Since(startedAt))

	return rep, err
}

func (tc *TraceCommand) buildReport(
	ctx context.Context,
	tracer *lineage.Tracer,
	traceMetrics *observability.TraceMetrics,
	files []string,
) (*report.Report, error) {
	if tc.fixVersion > 0 {
		startedAt := time.Now()

		result, err := tracer.TraceSingleBug(ctx, files[0], tc.fixVersion)
		if err != nil {
			return nil, err
		}

		traceMetrics.RecordTrace(ctx, traceStats(result, time.Since(startedAt)))

		return report.FromLineages(files[0], []*lineage.Lineage{result}), nil
	}

	startedAt := time.Now()
	batch := tracer.BatchAnalyze(ctx, files)
	elapsed := time.Since(startedAt)

	for _, lineages := range batch.Lineages {
		for _, result := range lineages {
			traceMetrics.RecordTrace(ctx, traceStats(result, elapsed))
		}
	}

	if len(files) == 1 {
		if err, failed := batch.Errors[files[0]]; failed {
			return nil, err
		}
	}

	return report.FromBatch(batch), nil
}

// traceStats converts one lineage into its metric sample. The scan
// examines every matched version plus, when the search ended on a
// below-threshold miss, the one version that rejected the signature.
func traceStats(result *lineage.Lineage, elapsed time.Duration) observability.TraceStats {
	scanned := len(result.Matches)
	if result.IntroductionFound && !result.HistoryTruncated {
		scanned++
	}

	return observability.TraceStats{
		VersionsScanned: scanned,
		Matches:         len(result.Matches),
		Found:           result.IntroductionFound,
		Confidence:      result.Confidence,
		Duration:        elapsed,
	}
}

func (tc *TraceCommand) render(w io.Writer, cfg *config.Config, rep *report.Report) error {
	switch cfg.Report.Format {
	case config.FormatYAML:
		err := report.WriteYAML(w, rep)
		if err != nil {
			return err
		}
	default:
		formatter := &report.TextFormatter{Color: cfg.Report.Color}

		err := formatter.Write(w, rep)
		if err != nil {
			return err
		}
	}

	if tc.output != "" {
		path := tc.output
		if cfg.Report.Archive && !strings.HasSuffix(path, archiveSuffix) {
			path += archiveSuffix
		}

		err := report.Save(path, rep)
		if err != nil {
			return err
		}
	}

	if cfg.Report.Plot != "" {
		err := writePlotFile(cfg.Report.Plot, rep)
		if err != nil {
			return err
		}
	}

	return nil
}

func writePlotFile(path string, rep *report.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot %s: %w", path, err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
	}()

	return report.WritePlot(f, rep)
}

func initTraceObservability(debug bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeCLI

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
		cfg.TraceVerbose = true
	}

	return observability.Init(cfg)
}

// snapshotSource pairs the snapshot-directory version backend with the
// commit-log history backend under the traceSource interface.
type snapshotSource struct {
	*history.DirSource
	*history.CommitStore
}
