package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/zig-whatwg/zoop/internal/engine"
)

// matcher holds the compiled include/exclude patterns of a config.
type matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

func newMatcher(cfg Config) (*matcher, error) {
	include, err := compileGlobs(cfg.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileGlobs(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &matcher{include: include, exclude: exclude}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// match reports whether a root-relative path is an input unit. Exclude
// patterns win over include patterns.
func (m *matcher) match(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range m.exclude {
		if g.Match(rel) {
			return false
		}
	}
	for _, g := range m.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Discover walks the project root and loads every source unit matching the
// configured patterns. The output directory is always skipped so generated
// files never feed back into generation. Units come back sorted by path.
func Discover(root string, cfg Config) ([]engine.UnitSource, error) {
	m, err := newMatcher(cfg)
	if err != nil {
		return nil, err
	}
	outDir := filepath.Clean(filepath.Join(root, cfg.OutDir))

	var units []engine.UnitSource
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filepath.Clean(path) == outDir {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !m.match(rel) {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading unit %s: %w", rel, err)
		}
		units = append(units, engine.UnitSource{
			Name:   unitName(path),
			Path:   rel,
			Source: string(src),
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })
	return units, nil
}

// unitName derives the unit name from a source path: the file stem.
func unitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
