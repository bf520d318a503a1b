package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// archiveSuffix marks LZ4-framed YAML report files.
const archiveSuffix = ".lz4"

// WriteYAML encodes the report as YAML.
func WriteYAML(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)

	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close report encoder: %w", err)
	}

	return nil
}

// ReadYAML decodes a report written by WriteYAML.
func ReadYAML(r io.Reader) (*Report, error) {
	var rep Report

	if err := yaml.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	return &rep, nil
}

// Save writes the report to path. A path ending in .lz4 is stored as an
// LZ4-framed YAML archive; anything else as plain YAML.
func Save(path string, rep *Report) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return fmt.Errorf("create report dir: %w", mkErr)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", closeErr)
		}
	}()

	if strings.HasSuffix(path, archiveSuffix) {
		zw := lz4.NewWriter(f)

		if err = WriteYAML(zw, rep); err != nil {
			return err
		}

		if err = zw.Close(); err != nil {
			return fmt.Errorf("close lz4 writer: %w", err)
		}

		return nil
	}

	return WriteYAML(f, rep)
}

// Load reads a report written by Save, transparently handling archives.
func Load(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, archiveSuffix) {
		return ReadYAML(lz4.NewReader(f))
	}

	return ReadYAML(f)
}
