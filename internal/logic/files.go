package logic

import (
	"github.com/idelchi/obxr/internal/config"
	"github.com/idelchi/obxr/internal/filter"
)

// Files expands the configured arguments into the files to process.
// Directory walks skip containers when boxing and keep only containers when unboxing.
func Files(cfg *config.Config) (files []string, scanned int, err error) {
	opts := filter.Options{
		Includes: append([]string(nil), cfg.Include...),
		Excludes: append([]string(nil), cfg.Exclude...),
	}

	if cfg.IncludeFile != "" {
		patterns, err := filter.LoadPatterns(cfg.IncludeFile)
		if err != nil {
			return nil, 0, err
		}

		opts.Includes = append(opts.Includes, patterns...)
	}

	if cfg.ExcludeFile != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFile)
		if err != nil {
			return nil, 0, err
		}

		opts.Excludes = append(opts.Excludes, patterns...)
	}

	if cfg.Unbox {
		opts.Require = cfg.Suffixes.Box
	} else {
		opts.Skip = cfg.Suffixes.Box
	}

	flt, err := filter.New(opts)
	if err != nil {
		return nil, 0, err
	}

	return flt.Resolve(cfg.Files)
}
