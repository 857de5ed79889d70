package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceSuffixes are the file name endings recognised as spec sources.
var SourceSuffixes = []string{".spec.js", ".spec.yaml", ".spec.yml"}

// IsSource reports whether name looks like a spec source.
func IsSource(name string) bool {
	for _, suffix := range SourceSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Scanner finds spec sources on disk
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all spec sources under root, sorted by path
func (s *Scanner) Scan(root string) ([]string, error) {
	var sources []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("spec path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spec path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if path != root && strings.HasPrefix(name, ".") && name != "." && name != ".." {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if IsSource(d.Name()) {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(sources)
	return sources, nil
}

// Resolve expands command line arguments into spec sources. An argument
// may name a source file, a directory to scan, or a glob pattern. Results
// keep argument order; duplicates are dropped.
func (s *Scanner) Resolve(args []string) ([]string, error) {
	var sources []string
	seen := make(map[string]bool)
	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				sources = append(sources, p)
			}
		}
	}

	for _, arg := range args {
		matches := []string{arg}
		if strings.ContainsAny(arg, "*?[") {
			var err error
			matches, err = filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no spec sources match %q", arg)
			}
			sort.Strings(matches)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("spec path does not exist: %s", match)
			}
			if info.IsDir() {
				found, err := s.Scan(match)
				if err != nil {
					return nil, err
				}
				add(found...)
				continue
			}
			if !IsSource(match) {
				if match == arg {
					return nil, fmt.Errorf("not a spec source: %s (want %s)", match, strings.Join(SourceSuffixes, ", "))
				}
				continue
			}
			add(filepath.Clean(match))
		}
	}

	return sources, nil
}
