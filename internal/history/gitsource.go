package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/bugtrail/internal/normalize"
	"github.com/Sumatoshi-tech/bugtrail/pkg/alg/lru"
	"github.com/Sumatoshi-tech/bugtrail/pkg/lineage"
)

// gitTracerName is suppressed by the trace filter unless verbose tracing
// is enabled; per-version git loads are hot-path spans.
const gitTracerName = "bugtrail.history"

// GitSource serves file versions and commit histories straight from a git
// repository. Version N of a file is its content after the Nth commit that
// touched it, oldest first; version 0 does not exist because the file is
// born in its first commit. It implements both lineage.VersionSource and
// lineage.CommitSource.
type GitSource struct {
	repo     *git.Repository
	detector Detector

	cacheStats
}

// OpenGitSource opens the repository at path.
func OpenGitSource(path string) (*GitSource, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}

	return &GitSource{repo: repo}, nil
}

// commitsTouching returns the commits that touched file, oldest first.
func (s *GitSource) commitsTouching(file string) ([]*object.Commit, error) {
	head, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := s.repo.Log(&git.LogOptions{
		From:     head.Hash(),
		FileName: &file,
	})
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", file, err)
	}

	var commits []*object.Commit

	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate log of %s: %w", file, err)
	}

	// Log walks newest to oldest; versions count the other way.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}

	return commits, nil
}

// ProviderFor returns a provider serving name's git-backed versions.
func (s *GitSource) ProviderFor(name string) (lineage.VersionProvider, error) {
	commits, err := s.commitsTouching(name)
	if err != nil {
		return nil, err
	}

	return &gitProvider{
		file:    name,
		commits: commits,
		cache:   lru.New(lru.WithMaxEntries[int, *lineage.FileVersion](versionCacheEntries)),
		stats:   &s.cacheStats,
	}, nil
}

// CommitsForFile returns name's commit history, oldest first, classified
// by the bug-fix detector.
func (s *GitSource) CommitsForFile(name string) ([]lineage.CommitInfo, error) {
	commits, err := s.commitsTouching(name)
	if err != nil {
		return nil, err
	}

	infos := make([]lineage.CommitInfo, 0, len(commits))

	for i, c := range commits {
		message := strings.TrimSpace(c.Message)

		infos = append(infos, lineage.CommitInfo{
			Version:  i + 1,
			Message:  message,
			File:     name,
			IsBugFix: s.detector.IsBugFix(message),
		})
	}

	return infos, nil
}

// gitProvider serves one file's versions from an ordered commit list.
type gitProvider struct {
	file    string
	commits []*object.Commit
	cache   *lru.Cache[int, *lineage.FileVersion]
	stats   *cacheStats
}

func (p *gitProvider) Exists(version int) bool {
	return version >= 1 && version <= len(p.commits)
}

func (p *gitProvider) Load(version int) (*lineage.FileVersion, error) {
	if fv, ok := p.cache.Get(version); ok {
		p.stats.hits.Add(1)

		return fv, nil
	}

	p.stats.misses.Add(1)

	_, span := otel.Tracer(gitTracerName).Start(context.Background(), "history.load_version",
		trace.WithAttributes(
			attribute.String("history.file", p.file),
			attribute.Int("history.version", version),
		))
	defer span.End()

	if !p.Exists(version) {
		return nil, fmt.Errorf("version %d of %s: %w", version, p.file, lineage.ErrVersionNotFound)
	}

	commit := p.commits[version-1]

	f, err := commit.File(p.file)
	if err != nil {
		return nil, fmt.Errorf("version %d of %s at %s: %w: %w",
			version, p.file, commit.Hash, lineage.ErrVersionNotFound, err)
	}

	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", p.file, commit.Hash, err)
	}

	lines := splitLines(content)

	fv := &lineage.FileVersion{
		Version:    version,
		Path:       p.file,
		Language:   enry.GetLanguage(p.file, []byte(content)),
		Lines:      lines,
		Normalized: normalize.Lines(lines),
	}

	p.cache.Put(version, fv)

	return fv, nil
}

func (p *gitProvider) AvailableVersions() []int {
	versions := make([]int, len(p.commits))
	for i := range p.commits {
		versions[i] = i + 1
	}

	return versions
}
