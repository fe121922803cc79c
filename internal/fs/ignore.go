package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-site ignore file read from the source root.
const IgnoreFileName = ".ftlignore"

// defaultIgnorePatterns are always applied before config and .ftlignore
// patterns, so either can re-include one with '!'.
var defaultIgnorePatterns = []string{
	"/" + IgnoreFileName,
	"/ftl.toml",
	".git/",
	".ftl/",
	".DS_Store",
	"*~",
	"*.swp",
}

// ignorePattern is one parsed line of an ignore file.
type ignorePattern struct {
	raw      string
	segments []string // slash separated glob segments; "**" spans directories
	anchored bool     // matched against the whole path, not any basename
	dirOnly  bool
	negate   bool
}

// IgnoreMatcher checks source paths against gitignore-style patterns:
//
//   - a pattern without '/' matches a file or directory name at any depth
//   - a leading or inner '/' anchors the pattern to the source root
//   - a trailing '/' matches directories only
//   - '**' matches any number of directories
//   - a leading '!' re-includes what an earlier pattern ignored
//
// The last matching pattern decides. Ignored directories are pruned, so a
// file below one cannot be re-included.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		if p, ok := parsePattern(raw); ok {
			patterns = append(patterns, p)
		}
	}
	return &IgnoreMatcher{patterns: patterns}
}

func parsePattern(raw string) (ignorePattern, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignorePattern{}, false
	}
	p := ignorePattern{raw: line}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = strings.TrimLeft(line, "/")
	}
	if line == "" {
		return ignorePattern{}, false
	}
	if strings.Contains(line, "/") {
		p.anchored = true
	}
	// Malformed globs never match.
	for _, seg := range strings.Split(line, "/") {
		if _, err := path.Match(seg, ""); err != nil {
			return ignorePattern{}, false
		}
		p.segments = append(p.segments, seg)
	}
	return p, true
}

// Match reports whether the relative path of a file, or of a directory when
// isDir is set, is ignored.
func (m *IgnoreMatcher) Match(relativePath string, isDir bool) bool {
	rel := strings.Trim(filepath.ToSlash(relativePath), "/")
	if rel == "" || len(m.patterns) == 0 {
		return false
	}
	parts := strings.Split(rel, "/")

	ignored := false
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.matches(parts) {
			ignored = !p.negate
		}
	}
	return ignored
}

func (p ignorePattern) matches(parts []string) bool {
	if !p.anchored {
		ok, _ := path.Match(p.segments[0], parts[len(parts)-1])
		return ok
	}
	return matchSegments(p.segments, parts)
}

func matchSegments(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(parts); i++ {
				if matchSegments(rest, parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], parts[0]); !ok {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
