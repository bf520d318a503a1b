package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/bugtrail/internal/normalize"
	"github.com/Sumatoshi-tech/bugtrail/pkg/alg/lru"
	"github.com/Sumatoshi-tech/bugtrail/pkg/lineage"
)

// versionCacheEntries bounds the per-file version cache.
const versionCacheEntries = 256

// VersionLoader serves historical versions of one file stored on disk as
// {base}_v{N}.txt snapshots. Loaded versions are cached; the cache is
// bounded, so very deep histories recycle old entries instead of growing
// without limit. It implements lineage.VersionProvider.
type VersionLoader struct {
	dir   string
	base  string
	cache *lru.Cache[int, *lineage.FileVersion]
	stats *cacheStats
}

// NewVersionLoader creates a loader for base's versions under dir.
func NewVersionLoader(dir, base string) *VersionLoader {
	return newVersionLoaderWithStats(dir, base, &cacheStats{})
}

func newVersionLoaderWithStats(dir, base string, stats *cacheStats) *VersionLoader {
	return &VersionLoader{
		dir:   dir,
		base:  base,
		cache: lru.New(lru.WithMaxEntries[int, *lineage.FileVersion](versionCacheEntries)),
		stats: stats,
	}
}

// path returns the snapshot path for a version.
func (l *VersionLoader) path(version int) string {
	return filepath.Join(l.dir, fmt.Sprintf("%s_v%d.txt", l.base, version))
}

// Exists reports whether the snapshot for version is on disk.
func (l *VersionLoader) Exists(version int) bool {
	_, err := os.Stat(l.path(version))

	return err == nil
}

// Load reads, normalizes, and caches one version.
func (l *VersionLoader) Load(version int) (*lineage.FileVersion, error) {
	if fv, ok := l.cache.Get(version); ok {
		l.stats.hits.Add(1)

		return fv, nil
	}

	l.stats.misses.Add(1)

	path := l.path(version)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("version %d of %s: %w", version, l.base, lineage.ErrVersionNotFound)
		}

		return nil, fmt.Errorf("version %d of %s: %w: %w", version, l.base, lineage.ErrVersionNotFound, err)
	}

	lines := splitLines(string(raw))

	fv := &lineage.FileVersion{
		Version:    version,
		Path:       path,
		Language:   enry.GetLanguage(l.base, raw),
		Lines:      lines,
		Normalized: normalize.Lines(lines),
	}

	l.cache.Put(version, fv)

	return fv, nil
}

// AvailableVersions scans the directory for snapshot files, ascending.
func (l *VersionLoader) AvailableVersions() []int {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil
	}

	prefix := l.base + "_v"

	var versions []int

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}

		version, err := strconv.Atoi(name[len(prefix) : len(name)-len(".txt")])
		if err != nil {
			continue
		}

		versions = append(versions, version)
	}

	sort.Ints(versions)

	return versions
}

// LatestVersion returns the newest available version, or -1 when none.
func (l *VersionLoader) LatestVersion() int {
	versions := l.AvailableVersions()
	if len(versions) == 0 {
		return -1
	}

	return versions[len(versions)-1]
}

// LoadRange loads the existing versions in [start, end], ascending.
// Missing versions in the range are skipped, not errors.
func (l *VersionLoader) LoadRange(start, end int) ([]*lineage.FileVersion, error) {
	var out []*lineage.FileVersion

	for v := start; v <= end; v++ {
		if !l.Exists(v) {
			continue
		}

		fv, err := l.Load(v)
		if err != nil {
			return nil, err
		}

		out = append(out, fv)
	}

	return out, nil
}

// PreloadAll warms the cache with every available version. Opt-in: deep
// histories can displace each other in the bounded cache, so callers who
// want full residency should size their histories accordingly.
func (l *VersionLoader) PreloadAll() error {
	for _, v := range l.AvailableVersions() {
		if _, err := l.Load(v); err != nil {
			return err
		}
	}

	return nil
}

// ClearCache drops all cached versions.
func (l *VersionLoader) ClearCache() {
	l.cache = lru.New(lru.WithMaxEntries[int, *lineage.FileVersion](versionCacheEntries))
}

// splitLines splits file content into lines without trailing newlines. A
// trailing newline does not produce a final empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}

	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// DirSource creates VersionLoaders per file base name under one directory.
// All loaders share one hit/miss counter pair. It implements
// lineage.VersionSource.
type DirSource struct {
	dir string

	cacheStats
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// ProviderFor returns the loader serving name's snapshots.
func (s *DirSource) ProviderFor(name string) (lineage.VersionProvider, error) {
	return newVersionLoaderWithStats(s.dir, name, &s.cacheStats), nil
}
