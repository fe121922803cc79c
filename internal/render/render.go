// Package render is the default page renderer: GFM markdown through goldmark,
// laid out with html/template.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"ftl-go/internal/ftl"
	"ftl-go/internal/model"
)

// fallbackLayout is used when a page's template cannot be found.
const fallbackLayout = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{ .Page.Title }}</title></head>
<body>{{ .Content }}</body></html>
`

// Options configures a Renderer.
type Options struct {
	// DefaultTemplate is used by pages that name no template.
	DefaultTemplate string
	// RootURL is prefixed to routes by the absURL template function.
	RootURL string
	// UnsafeHTML passes raw HTML in markdown through unescaped.
	UnsafeHTML bool
}

// Renderer implements ftl.Renderer.
type Renderer struct {
	opts Options
	md   goldmark.Markdown
}

var _ ftl.Renderer = (*Renderer)(nil)

func New(opts Options) *Renderer {
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = "page.html"
	}
	return &Renderer{opts: opts, md: newMarkdown(opts.UnsafeHTML)}
}

// Link is a page as seen from a template.
type Link struct {
	Route       string
	Title       string
	Date        *time.Time
	Description string
	Summary     string
	Tags        []string
	Extra       map[string]any
}

// Paginator describes one page of a paginated section listing.
type Paginator struct {
	Index int // 1-based
	Total int
	Items []*Link
	Prev  string
	Next  string
}

// Data is the dot value of every page template.
type Data struct {
	Page      *Link
	Route     string
	Content   template.HTML
	Section   []*Link
	Paginator *Paginator
	Revision  string
}

// Render produces one artifact per page route. Paginated pages get one
// artifact per chunk of their section.
func (r *Renderer) Render(ctx context.Context, job *ftl.RenderJob) ([]*ftl.Rendered, error) {
	if len(job.Routes) == 0 {
		return nil, nil
	}
	p := job.Page

	body := job.Input.Contents
	if p.BodyOffset > 0 && int(p.BodyOffset) <= len(body) {
		body = body[p.BodyOffset:]
	}
	html, firstParagraph, err := convert(r.md, []byte(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}

	tmpl, name, err := r.load(job.Source, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}

	self := r.link(job.Source, p)
	if self.Summary == "" {
		self.Summary = firstParagraph
	}
	canonical := job.Routes[0].Route

	var section []*Link
	for _, member := range job.Source.Section(canonical) {
		section = append(section, r.link(job.Source, member))
	}

	out := make([]*ftl.Rendered, 0, len(job.Routes))
	for i, route := range job.Routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data := &Data{
			Page:     self,
			Route:    route.Route,
			Content:  template.HTML(html),
			Section:  section,
			Revision: job.Revision,
		}
		if p.PaginateBy > 0 {
			data.Paginator = paginate(section, job.Routes, i, int(p.PaginateBy))
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			return nil, fmt.Errorf("%s: executing %s: %w", p.Path, name, err)
		}
		out = append(out, &ftl.Rendered{Route: route.Route, Content: buf.Bytes()})
	}
	return out, nil
}

// load parses the page's template together with everything it references.
// Referenced templates are parsed first so the page template's own define
// blocks win over their defaults.
func (r *Renderer) load(src ftl.Source, p *model.Page) (*template.Template, string, error) {
	name := p.Template
	if name == "" {
		name = r.opts.DefaultTemplate
	}

	set := src.TemplateSet(name)
	root := template.New(name).Funcs(r.funcs(src))
	if len(set) == 0 {
		t, err := root.Parse(fallbackLayout)
		return t, name, err
	}

	for i := len(set) - 1; i >= 0; i-- {
		entry := set[i]
		f := src.InputFile(entry.ID)
		if f == nil {
			return nil, "", fmt.Errorf("template %s has no input", entry.Name)
		}
		t := root
		if entry.Name != name {
			t = root.New(entry.Name)
		}
		if _, err := t.Parse(f.Contents); err != nil {
			return nil, "", fmt.Errorf("parsing template %s: %w", entry.Name, err)
		}
	}
	return root, name, nil
}

func (r *Renderer) link(src ftl.Source, p *model.Page) *Link {
	return &Link{
		Route:       src.CanonicalRoute(p.ID),
		Title:       p.Title,
		Date:        p.Date,
		Description: p.Description,
		Summary:     p.Summary,
		Tags:        p.Tags,
		Extra:       p.Extra,
	}
}

func (r *Renderer) funcs(src ftl.Source) template.FuncMap {
	return template.FuncMap{
		"absURL": func(route string) string { return r.absURL(route) },
		"section": func(route string) []*Link {
			var links []*Link
			for _, p := range src.Section(route) {
				links = append(links, r.link(src, p))
			}
			return links
		},
		"pages": func() []*Link {
			var links []*Link
			for _, p := range src.Pages() {
				links = append(links, r.link(src, p))
			}
			return links
		},
		"tagged": func(tag string) []*Link {
			var links []*Link
			for _, p := range src.Pages() {
				if slices.Contains(p.Tags, tag) {
					links = append(links, r.link(src, p))
				}
			}
			return links
		},
		"date": func(layout string, t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format(layout)
		},
		"markdown": func(s string) (template.HTML, error) {
			html, _, err := convert(r.md, []byte(s))
			return template.HTML(html), err
		},
	}
}

func (r *Renderer) absURL(route string) string {
	if r.opts.RootURL == "" {
		return route
	}
	u, err := url.Parse(r.opts.RootURL)
	if err != nil {
		return route
	}
	u.Path = path.Join("/", u.Path, route)
	if strings.HasSuffix(route, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// paginate returns the i-th chunk of section. routes are the page's own
// routes, canonical first.
func paginate(section []*Link, routes []*model.Route, i, per int) *Paginator {
	start := min(i*per, len(section))
	end := min(start+per, len(section))
	pg := &Paginator{
		Index: i + 1,
		Total: len(routes),
		Items: section[start:end],
	}
	if i > 0 {
		pg.Prev = routes[i-1].Route
	}
	if i+1 < len(routes) {
		pg.Next = routes[i+1].Route
	}
	return pg
}
