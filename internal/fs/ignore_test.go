package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("skips blank lines, comments and bad globs", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"", "  ", "# comment", "*.log", "[", "/", "!"})
		if len(m.patterns) != 1 {
			t.Fatalf("expected 1 pattern, got %d", len(m.patterns))
		}
		if m.patterns[0].raw != "*.log" {
			t.Errorf("expected *.log, got %s", m.patterns[0].raw)
		}
	})

	t.Run("parses pattern flags", func(t *testing.T) {
		t.Parallel()
		m := NewIgnoreMatcher([]string{"*.log", "build/output", "/drafts/", "!keep.log"})
		want := []ignorePattern{
			{raw: "*.log", segments: []string{"*.log"}},
			{raw: "build/output", segments: []string{"build", "output"}, anchored: true},
			{raw: "/drafts/", segments: []string{"drafts"}, anchored: true, dirOnly: true},
			{raw: "!keep.log", segments: []string{"keep.log"}, negate: true},
		}
		for i, w := range want {
			got := m.patterns[i]
			if got.raw != w.raw || got.anchored != w.anchored || got.dirOnly != w.dirOnly ||
				got.negate != w.negate || len(got.segments) != len(w.segments) {
				t.Errorf("pattern %d = %+v, want %+v", i, got, w)
			}
		}
	})
}

func TestIgnoreMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		dir      bool
		want     bool
	}{
		{"basename glob in root", []string{"*.log"}, "app.log", false, true},
		{"basename glob in subdirectory", []string{"*.log"}, "sub/app.log", false, true},
		{"basename glob other extension", []string{"*.log"}, "app.txt", false, false},
		{"basename matches directory", []string{"drafts"}, "content/drafts", true, true},
		{"os separators are accepted", []string{"build/output"}, filepath.Join("build", "output"), false, true},
		{"anchored path", []string{"build/output"}, "src/build/output", false, false},
		{"leading slash anchors a name", []string{"/ftl.toml"}, "content/ftl.toml", false, false},
		{"leading slash matches at root", []string{"/ftl.toml"}, "ftl.toml", false, true},
		{"path pattern with glob", []string{"static/*.map"}, "static/app.map", false, true},
		{"glob does not cross directories", []string{"static/*.map"}, "static/js/app.map", false, false},
		{"double star spans directories", []string{"static/**/*.map"}, "static/js/vendor/app.map", false, true},
		{"double star matches zero directories", []string{"static/**/*.map"}, "static/app.map", false, true},
		{"leading double star", []string{"**/node_modules"}, "themes/a/node_modules", true, true},
		{"directory pattern skips files", []string{"cache/"}, "cache", false, false},
		{"directory pattern matches directories", []string{"cache/"}, "cache", true, true},
		{"negation re-includes", []string{"*.log", "!keep.log"}, "keep.log", false, false},
		{"negation leaves others ignored", []string{"*.log", "!keep.log"}, "other.log", false, true},
		{"last match wins", []string{"!keep.log", "*.log"}, "keep.log", false, true},
		{"question mark wildcard", []string{"?.txt"}, "a.txt", false, true},
		{"question mark single char", []string{"?.txt"}, "ab.txt", false, false},
		{"character class", []string{"*.[oa]"}, "main.o", false, true},
		{"no patterns", nil, "anything.txt", false, false},
		{"empty path", []string{"*"}, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewIgnoreMatcher(tt.patterns)
			if got := m.Match(tt.path, tt.dir); got != tt.want {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.path, tt.dir, got, tt.want)
			}
		})
	}
}

func TestIgnoreMatcher_Defaults(t *testing.T) {
	m := NewIgnoreMatcher(defaultIgnorePatterns)
	for _, p := range []struct {
		path string
		dir  bool
		want bool
	}{
		{".git", true, true},
		{".ftl", true, true},
		{"ftl.toml", false, true},
		{".ftlignore", false, true},
		{"content/post.md~", false, true},
		{"content/post.md", false, false},
		{"static/ftl.toml", false, false},
	} {
		if got := m.Match(p.path, p.dir); got != p.want {
			t.Errorf("Match(%q) = %v, want %v", p.path, got, p.want)
		}
	}
}

func TestParseIgnoreFile(t *testing.T) {
	t.Run("reads patterns from file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, ".ftlignore")
		content := "*.log\n# comment\n\n!keep.log\nbuild/output\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}

		patterns, err := ParseIgnoreFile(path)
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		// Filtering is NewIgnoreMatcher's job.
		if len(patterns) != 5 {
			t.Fatalf("expected 5 raw lines, got %d", len(patterns))
		}
		if m := NewIgnoreMatcher(patterns); len(m.patterns) != 3 {
			t.Errorf("expected 3 parsed patterns, got %d", len(m.patterns))
		}
	})

	t.Run("returns nil for missing file", func(t *testing.T) {
		t.Parallel()
		patterns, err := ParseIgnoreFile("/nonexistent/.ftlignore")
		if err != nil {
			t.Fatalf("ParseIgnoreFile() error = %v", err)
		}
		if patterns != nil {
			t.Errorf("expected nil patterns, got %v", patterns)
		}
	})
}
