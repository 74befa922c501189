package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar"

	"github.com/dshills/mythra/internal/analysis"
)

// ErrNoFiles is returned when a target matches no source files.
var ErrNoFiles = errors.New("no Solidity files found to analyze")

// maxFileBytes is the per-file size limit.
const maxFileBytes = 1 << 20 // 1MB

// Options controls discovery.
type Options struct {
	// Extensions lists accepted file suffixes, compared case-insensitively.
	// Empty means ".sol".
	Extensions []string
	// Exclude holds doublestar patterns matched against discovered paths.
	Exclude []string
	// MaxFileBytes caps the size of a single file. Zero means 1MB.
	MaxFileBytes int64
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return []string{".sol"}
	}
	return o.Extensions
}

func (o Options) maxBytes() int64 {
	if o.MaxFileBytes > 0 {
		return o.MaxFileBytes
	}
	return maxFileBytes
}

// Discover resolves target, a file, a directory or a glob pattern, into a
// sorted list of source file paths.
func Discover(target string, opts Options) ([]string, error) {
	var candidates []string
	if hasMeta(target) {
		matches, err := doublestar.Glob(target)
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q: %w", target, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				candidates = append(candidates, m)
			}
		}
	} else {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("input path does not exist: %w", err)
		}
		switch {
		case info.Mode().IsRegular():
			candidates = []string{target}
		case info.IsDir():
			candidates, err = walk(target)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("input path is neither a file nor a directory: %s", target)
		}
	}

	var files []string
	for _, c := range candidates {
		if !HasExtension(c, opts.extensions()) {
			continue
		}
		if MatchesAny(c, opts.Exclude) {
			continue
		}
		files = append(files, c)
	}
	slices.Sort(files)
	files = slices.Compact(files)
	return files, nil
}

func walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// Read loads each path into an artifact. Failures do not stop the batch;
// they are recorded on the artifact so the analyzer can skip it.
func Read(paths []string, opts Options) []analysis.Artifact {
	arts := make([]analysis.Artifact, 0, len(paths))
	for _, p := range paths {
		arts = append(arts, readOne(p, opts.maxBytes()))
	}
	return arts
}

func readOne(path string, limit int64) analysis.Artifact {
	art := analysis.Artifact{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		art.Err = err
		return art
	}
	if info.Size() > limit {
		art.Err = fmt.Errorf("file is %d bytes, exceeds limit of %d", info.Size(), limit)
		return art
	}
	data, err := os.ReadFile(path)
	if err != nil {
		art.Err = err
		return art
	}
	if !utf8.Valid(data) {
		art.Err = errors.New("file is not valid UTF-8")
		return art
	}
	art.Content = string(data)
	return art
}

// Collect discovers and reads the files selected by target. It returns
// ErrNoFiles when nothing matches.
func Collect(target string, opts Options) ([]analysis.Artifact, error) {
	paths, err := Discover(target, opts)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, target)
	}
	return Read(paths, opts), nil
}

// HasExtension reports whether path ends in one of exts, ignoring case.
func HasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether path matches any of the doublestar patterns.
// A pattern also matches when it matches the base name alone.
func MatchesAny(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
