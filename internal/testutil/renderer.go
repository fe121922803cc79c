package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"ftl-go/internal/ftl"
)

// RecordingRenderer renders each route as its route, the page title and the
// contents of every template in the page's template set, and records which
// page paths it rendered. Output therefore changes exactly when one of those
// inputs changes.
type RecordingRenderer struct {
	DefaultTemplate string

	mu       sync.Mutex
	rendered []string
	failures map[string]error
}

var _ ftl.Renderer = (*RecordingRenderer)(nil)

func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{DefaultTemplate: "page.html", failures: make(map[string]error)}
}

// FailOn makes rendering the page at path fail with err.
func (r *RecordingRenderer) FailOn(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[path] = err
}

// Rendered returns the sorted paths rendered since the last Reset.
func (r *RecordingRenderer) Rendered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.rendered)
	slices.Sort(out)
	return out
}

func (r *RecordingRenderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = nil
}

func (r *RecordingRenderer) Render(ctx context.Context, job *ftl.RenderJob) ([]*ftl.Rendered, error) {
	r.mu.Lock()
	err := r.failures[job.Page.Path]
	r.rendered = append(r.rendered, job.Page.Path)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	name := job.Page.Template
	if name == "" {
		name = r.DefaultTemplate
	}
	var layout strings.Builder
	for _, t := range job.Source.TemplateSet(name) {
		if f := job.Source.InputFile(t.ID); f != nil {
			layout.WriteString(f.Contents)
		}
	}

	out := make([]*ftl.Rendered, 0, len(job.Routes))
	for _, route := range job.Routes {
		out = append(out, &ftl.Rendered{
			Route:   route.Route,
			Content: []byte(fmt.Sprintf("%s|%s|%s", route.Route, job.Page.Title, layout.String())),
		})
	}
	return out, nil
}
