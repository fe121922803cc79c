// Package parse extracts page metadata from content documents and template
// references from templates.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"ftl-go/internal/ftl"
	"ftl-go/internal/model"
)

// ErrNoFrontmatter is returned for documents that do not open with a
// frontmatter block.
var ErrNoFrontmatter = errors.New("no frontmatter")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type delimiter struct {
	fence  string
	decode func([]byte, *map[string]any) error
}

var delimiters = []delimiter{
	{fence: "+++", decode: func(b []byte, m *map[string]any) error {
		_, err := toml.Decode(string(b), m)
		return err
	}},
	{fence: "---", decode: func(b []byte, m *map[string]any) error {
		return yaml.Unmarshal(b, m)
	}},
}

// Parser is the default frontmatter and template parser.
type Parser struct{}

var _ ftl.Parser = Parser{}

// ParsePage reads the TOML (+++) or YAML (---) frontmatter at the top of a
// document. Known keys fill the page fields; everything else, together with
// the [extra] table, lands in Page.Extra.
func (Parser) ParsePage(f *model.InputFile) (*model.Page, error) {
	raw, offset, decode, err := split([]byte(f.Contents))
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if err := decode(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding frontmatter: %w", err)
	}

	p := &model.Page{BodyOffset: int64(offset)}
	if err := apply(p, f.Path, fields); err != nil {
		return nil, err
	}
	return p, nil
}

// split locates the frontmatter block. The returned offset is the first byte
// of the body.
func split(doc []byte) ([]byte, int, func([]byte, *map[string]any) error, error) {
	bom := 0
	if bytes.HasPrefix(doc, utf8BOM) {
		doc = doc[len(utf8BOM):]
		bom = len(utf8BOM)
	}

	for _, d := range delimiters {
		first, rest, ok := cutLine(doc)
		if !ok || strings.TrimRight(string(first), " \t\r") != d.fence {
			continue
		}
		start := len(doc) - len(rest)
		pos := start
		for len(rest) > 0 {
			line, next, _ := cutLine(rest)
			if strings.TrimRight(string(line), " \t\r") == d.fence {
				body := len(doc) - len(next)
				return doc[start:pos], body + bom, d.decode, nil
			}
			pos += len(rest) - len(next)
			rest = next
		}
		return nil, 0, nil, fmt.Errorf("unterminated %s frontmatter", d.fence)
	}
	return nil, 0, nil, ErrNoFrontmatter
}

// cutLine splits b after the first newline. ok is false when b is empty.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	if len(b) == 0 {
		return nil, nil, false
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:], true
	}
	return b, nil, true
}

func apply(p *model.Page, docPath string, fields map[string]any) error {
	extra := map[string]any{}
	var err error
	for key, v := range fields {
		switch strings.ToLower(key) {
		case "title":
			p.Title, err = str(key, v)
		case "description":
			p.Description, err = str(key, v)
		case "summary":
			p.Summary, err = str(key, v)
		case "template":
			p.Template, err = str(key, v)
		case "route":
			p.Route, err = str(key, v)
		case "slug":
			var slug string
			if slug, err = str(key, v); err == nil && p.Route == "" {
				p.Route = slugRoute(docPath, slug)
			}
		case "date":
			p.Date, err = date(key, v)
		case "publish_date", "publishdate":
			p.PublishDate, err = date(key, v)
		case "expire_date", "expirydate", "expiredate":
			p.ExpireDate, err = date(key, v)
		case "draft":
			p.Draft, err = boolean(key, v)
		case "dynamic":
			p.Dynamic, err = boolean(key, v)
		case "paginate_by", "paginate":
			p.PaginateBy, err = integer(key, v)
			if err == nil && p.PaginateBy < 0 {
				err = fmt.Errorf("%s must not be negative", key)
			}
		case "tags":
			p.Tags, err = list(key, v)
		case "aliases":
			p.Aliases, err = list(key, v)
		case "collections":
			p.Collections, err = list(key, v)
		case "dependencies", "assets":
			p.Dependencies, err = list(key, v)
		case "extra":
			m, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("extra must be a table, got %T", v)
			}
			for k, val := range m {
				extra[k] = normalize(val)
			}
		default:
			extra[key] = normalize(v)
		}
		if err != nil {
			return err
		}
	}
	if len(extra) > 0 {
		p.Extra = extra
	}
	return nil
}

// slugRoute replaces the last segment of the route derived from docPath.
func slugRoute(docPath, slug string) string {
	derived := ftl.PageRoute(&model.Page{Path: docPath})
	parent := ftl.ParentRoute(derived)
	if parent == "" {
		parent = "/"
	}
	return path.Join(parent, strings.Trim(slug, "/"))
}

func str(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}

func boolean(key string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", key, v)
	}
	return b, nil
}

func integer(key string, v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%s must be an integer, got %T", key, v)
	}
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func date(key string, v any) (*time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		u := d.UTC()
		return &u, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				u := t.UTC()
				return &u, nil
			}
		}
		return nil, fmt.Errorf("%s: unrecognized date %q", key, d)
	default:
		return nil, fmt.Errorf("%s must be a date, got %T", key, v)
	}
}

// list accepts a single string or a list of strings. The result is sorted
// and deduplicated so equal frontmatter produces equal attribute rows.
func list(key string, v any) ([]string, error) {
	var out []string
	switch l := v.(type) {
	case string:
		out = []string{l}
	case []any:
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s entries must be strings, got %T", key, item)
			}
			out = append(out, s)
		}
	case []string:
		out = append(out, l...)
	default:
		return nil, fmt.Errorf("%s must be a list of strings, got %T", key, v)
	}
	sort.Strings(out)
	return compact(out), nil
}

func compact(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if v == "" || (i > 0 && v == s[i-1]) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalize converts decoder-specific values into types that survive a
// CBOR round trip unchanged in meaning.
func normalize(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case int:
		return int64(x)
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = normalize(val)
		}
		return m
	case []any:
		l := make([]any, len(x))
		for i, val := range x {
			l[i] = normalize(val)
		}
		return l
	case []map[string]any:
		l := make([]any, len(x))
		for i, val := range x {
			l[i] = normalize(val)
		}
		return l
	default:
		return v
	}
}
