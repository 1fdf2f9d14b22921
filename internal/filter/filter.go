// Package filter expands the command line arguments into the list of files to process.
//
// Files named explicitly are taken as they are. Directories are walked
// recursively and their files are selected with include and exclude globs;
// excludes always win and no includes means everything.
package filter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrPattern is returned for malformed globs.
	ErrPattern = errors.New("invalid pattern")
	// ErrNoFiles is returned when the arguments expand to nothing.
	ErrNoFiles = errors.New("no files matched")
)

// TempPrefix marks in-progress outputs, which are never selected from a directory.
const TempPrefix = ".obxr-"

// Options control how directories are expanded.
type Options struct {
	Includes []string
	Excludes []string
	// Require keeps only walked files ending in this extension.
	Require string
	// Skip drops walked files ending in this extension.
	Skip string
}

// Filter selects files below directory arguments.
type Filter struct {
	includes Patterns
	excludes Patterns
	require  string
	skip     string
}

// New compiles the include and exclude patterns.
func New(opts Options) (*Filter, error) {
	includes, err := CompileAll(opts.Includes)
	if err != nil {
		return nil, fmt.Errorf("compiling include patterns: %w", err)
	}

	excludes, err := CompileAll(opts.Excludes)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{
		includes: includes,
		excludes: excludes,
		require:  opts.Require,
		skip:     opts.Skip,
	}, nil
}

// Match reports whether a file found while walking is selected.
// name is the path as produced by the walk.
func (f *Filter) Match(name string) bool {
	slashed := filepath.ToSlash(filepath.Clean(name))
	base := filepath.Base(name)

	switch {
	case strings.HasPrefix(base, TempPrefix):
		return false
	case f.require != "" && !strings.HasSuffix(base, f.require):
		return false
	case f.skip != "" && strings.HasSuffix(base, f.skip):
		return false
	case len(f.includes) > 0 && !f.includes.Any(slashed):
		return false
	}

	return !f.excludes.Any(slashed)
}

// Resolve expands args into a deduplicated list of files, keeping argument order.
// It also returns how many files were considered.
func (f *Filter) Resolve(args []string) (files []string, scanned int, err error) {
	seen := make(map[string]struct{})

	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}

		seen[name] = struct{}{}
		files = append(files, name)
	}

	for _, arg := range args {
		arg = filepath.Clean(arg)

		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files are passed through and reported per file.
			scanned++

			add(arg)

			continue
		}

		err = filepath.WalkDir(arg, func(name string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.Type().IsRegular() {
				return nil
			}

			scanned++

			if f.Match(name) {
				add(name)
			}

			return nil
		})
		if err != nil {
			return nil, scanned, fmt.Errorf("walking %q: %w", arg, err)
		}
	}

	if len(files) == 0 {
		return nil, scanned, fmt.Errorf("%w: %v", ErrNoFiles, args)
	}

	return files, scanned, nil
}
