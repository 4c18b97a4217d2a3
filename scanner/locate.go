package scanner

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/grovetools/toolchange/errors"
	"github.com/moby/patternmatcher"
)

// LocateOptions filters the files considered by LatestFile.
type LocateOptions struct {
	Extensions []string
	// Include and Exclude are patternmatcher globs relative to the directory.
	// An empty Include accepts every file.
	Include []string
	Exclude []string
}

// LatestFile returns the most recently modified G-code file under dir.
// Hidden directories are skipped. Ties on modification time go to the
// lexically smaller path.
func LatestFile(dir string, opts LocateOptions) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", errors.SourceNotFound(dir, err)
	}
	if !info.IsDir() {
		return "", errors.InvalidArgument("G-code directory is not a directory").WithDetail("path", dir)
	}

	include, err := newPatternMatcher(opts.Include)
	if err != nil {
		return "", err
	}
	exclude, err := newPatternMatcher(opts.Exclude)
	if err != nil {
		return "", err
	}

	var (
		latest     string
		latestTime int64
	)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped rather than failing the lookup
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if CheckExtension(path, opts.Extensions) != nil {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		if include != nil {
			if ok, _ := include.MatchesOrParentMatches(rel); !ok {
				return nil
			}
		}
		if exclude != nil {
			if ok, _ := exclude.MatchesOrParentMatches(rel); ok {
				return nil
			}
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		mod := fi.ModTime().UnixNano()
		if latest == "" || mod > latestTime || (mod == latestTime && path < latest) {
			latest, latestTime = path, mod
		}
		return nil
	})
	if walkErr != nil {
		return "", errors.SourceNotFound(dir, walkErr)
	}

	if latest == "" {
		return "", errors.NoGcodeFiles(dir)
	}
	return latest, nil
}

func newPatternMatcher(patterns []string) (*patternmatcher.PatternMatcher, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid scan include/exclude pattern")
	}
	return pm, nil
}
