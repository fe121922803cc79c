package render

import (
	"context"
	"strings"
	"testing"

	"ftl-go/internal/ftl"
	"ftl-go/internal/model"
)

// fakeSource is a fixed revision view for renderer tests.
type fakeSource struct {
	inputs    map[string]*model.InputFile
	pages     []*model.Page
	routes    map[string]string
	templates map[string][]string // name -> names in TemplateSet order
}

func (s *fakeSource) InputFile(id string) *model.InputFile { return s.inputs[id] }

func (s *fakeSource) Page(id string) *model.Page {
	for _, p := range s.pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *fakeSource) Pages() []*model.Page { return s.pages }

func (s *fakeSource) Section(route string) []*model.Page {
	var out []*model.Page
	for _, p := range s.pages {
		r := s.routes[p.ID]
		if r != route && ftl.ParentRoute(r) == route {
			out = append(out, p)
		}
	}
	return out
}

func (s *fakeSource) CanonicalRoute(id string) string { return s.routes[id] }

func (s *fakeSource) Template(name string) *model.InputFile { return s.inputs["tpl:"+name] }

func (s *fakeSource) TemplateSet(name string) []*model.Template {
	var set []*model.Template
	for _, n := range s.templates[name] {
		set = append(set, &model.Template{Name: n, ID: "tpl:" + n})
	}
	return set
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		inputs:    map[string]*model.InputFile{},
		routes:    map[string]string{},
		templates: map[string][]string{},
	}
}

func (s *fakeSource) addTemplate(name, contents string, deps ...string) {
	s.inputs["tpl:"+name] = &model.InputFile{ID: "tpl:" + name, Path: "templates/" + name, Contents: contents, Inline: true}
	s.templates[name] = append([]string{name}, deps...)
}

func (s *fakeSource) addPage(id, route string, p *model.Page, contents string) *ftl.RenderJob {
	p.ID = id
	s.pages = append(s.pages, p)
	s.routes[id] = route
	in := &model.InputFile{ID: id, Path: p.Path, Contents: contents, Inline: true}
	s.inputs[id] = in
	return &ftl.RenderJob{
		Revision: "rev",
		Page:     p,
		Input:    in,
		Routes:   []*model.Route{{ID: id, Route: route, Kind: model.RoutePage}},
		Source:   s,
	}
}

func TestRender_MarkdownInTemplate(t *testing.T) {
	src := newFakeSource()
	src.addTemplate("page.html", `<h1>{{ .Page.Title }}</h1><main>{{ .Content }}</main><p>{{ .Page.Summary }}</p>`)
	contents := "+++\ntitle = 'x'\n+++\nHello *world*.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	job := src.addPage("p1", "/hello", &model.Page{Path: "content/hello.md", Title: "Hi & bye", BodyOffset: int64(len("+++\ntitle = 'x'\n+++\n"))}, contents)

	out, err := New(Options{}).Render(context.Background(), job)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(out) != 1 || out[0].Route != "/hello" {
		t.Fatalf("Render() = %v", out)
	}
	html := string(out[0].Content)
	for _, want := range []string{"<h1>Hi &amp; bye</h1>", "<em>world</em>", "<table>", "<p>Hello world.</p>"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "title = ") {
		t.Error("frontmatter leaked into output")
	}
}

func TestRender_TemplateInheritance(t *testing.T) {
	src := newFakeSource()
	src.addTemplate("base.html", `<body>{{ block "content" . }}default{{ end }}</body>`)
	src.addTemplate("post.html", `{{ define "content" }}post: {{ .Page.Title }}{{ end }}{{ template "base.html" . }}`, "base.html")
	job := src.addPage("p1", "/a", &model.Page{Path: "content/a.md", Title: "A", Template: "post.html"}, "")

	out, err := New(Options{}).Render(context.Background(), job)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := string(out[0].Content); got != "<body>post: A</body>" {
		t.Errorf("output = %q", got)
	}
}

func TestRender_FallbackLayout(t *testing.T) {
	src := newFakeSource()
	job := src.addPage("p1", "/a", &model.Page{Path: "content/a.md", Title: "A"}, "text")

	out, err := New(Options{DefaultTemplate: "missing.html"}).Render(context.Background(), job)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(out[0].Content), "<title>A</title>") {
		t.Errorf("output = %s", out[0].Content)
	}
}

func TestRender_Pagination(t *testing.T) {
	src := newFakeSource()
	src.addTemplate("list.html", `{{ with .Paginator }}{{ .Index }}/{{ .Total }}:{{ range .Items }}[{{ .Title }}]{{ end }}({{ .Prev }}|{{ .Next }}){{ end }}`)
	job := src.addPage("idx", "/blog", &model.Page{Path: "content/blog/index.md", Template: "list.html", PaginateBy: 2}, "")
	for _, n := range []string{"a", "b", "c"} {
		src.addPage(n, "/blog/"+n, &model.Page{Path: "content/blog/" + n + ".md", Title: strings.ToUpper(n)}, "")
	}
	job.Routes = []*model.Route{
		{ID: "idx", Route: "/blog", Kind: model.RoutePage, PageIndex: 1},
		{ID: "idx", Route: "/blog/page/2", Kind: model.RoutePage, PageIndex: 2},
	}

	out, err := New(Options{}).Render(context.Background(), job)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := map[string]string{
		"/blog":        "1/2:[A][B](|/blog/page/2)",
		"/blog/page/2": "2/2:[C](/blog|)",
	}
	if len(out) != len(want) {
		t.Fatalf("got %d artifacts, want %d", len(out), len(want))
	}
	for _, a := range out {
		if string(a.Content) != want[a.Route] {
			t.Errorf("%s = %q, want %q", a.Route, a.Content, want[a.Route])
		}
	}
}

func TestRender_TemplateErrors(t *testing.T) {
	src := newFakeSource()
	src.addTemplate("bad.html", `{{ .Page.Title `)
	job := src.addPage("p1", "/a", &model.Page{Path: "content/a.md", Template: "bad.html"}, "")

	if _, err := New(Options{}).Render(context.Background(), job); err == nil {
		t.Error("Render() with broken template should fail")
	}
}

func TestRender_Deterministic(t *testing.T) {
	src := newFakeSource()
	src.addTemplate("page.html", `{{ .Content }}{{ range pages }}{{ .Route }}{{ end }}`)
	job := src.addPage("p1", "/a", &model.Page{Path: "content/a.md"}, "# Title\n")

	r := New(Options{})
	first, err := r.Render(context.Background(), job)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := r.Render(context.Background(), job)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(first[0].Content) != string(second[0].Content) {
		t.Error("rendering the same job twice differs")
	}
}

func TestAbsURL(t *testing.T) {
	tests := []struct {
		root, route, want string
	}{
		{"", "/a", "/a"},
		{"https://example.com", "/a/b", "https://example.com/a/b"},
		{"https://example.com/site/", "/a/", "https://example.com/site/a/"},
	}
	for _, tt := range tests {
		r := New(Options{RootURL: tt.root})
		if got := r.absURL(tt.route); got != tt.want {
			t.Errorf("absURL(%q) with root %q = %q, want %q", tt.route, tt.root, got, tt.want)
		}
	}
}
