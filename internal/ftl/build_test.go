package ftl_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"ftl-go/internal/ftl"
	"ftl-go/internal/testutil"
)

// doc returns a content document with TOML frontmatter.
func doc(title string, fields ...string) string {
	var b strings.Builder
	b.WriteString("+++\n")
	fmt.Fprintf(&b, "title = %q\n", title)
	for _, f := range fields {
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("+++\n")
	b.WriteString("Body of " + title + ".\n")
	return b.String()
}

var logo = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0xff, 0x00}

func site() *testutil.MemorySourceTree {
	tree := testutil.NewMemorySourceTree(map[string]string{
		"templates/page.html":   "P",
		"templates/post.html":   `{{ template "base.html" . }}`,
		"templates/base.html":   "B1",
		"content/index.md":      doc("Home"),
		"content/about.md":      doc("About", `dependencies = ["/img/logo.png"]`),
		"content/blog/hello.md": doc("Hello", `template = "post.html"`),
		"content/blog/world.md": doc("World", `template = "post.html"`, `aliases = ["/old/world"]`),
	})
	tree.SetBytes("static/img/logo.png", logo)
	return tree
}

// build runs a build that must succeed without warnings. The clock moves
// forward first so every build and revision gets a distinct time.
func build(t *testing.T, env *testutil.Env, tree ftl.SourceTree) *ftl.BuildResult {
	t.Helper()
	env.Renderer.Reset()
	env.Clock.Advance(time.Minute)
	res, err := env.Engine.Build(context.Background(), tree, ftl.BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return res
}

func resolve(t *testing.T, env *testutil.Env, route string) string {
	t.Helper()
	a, err := env.Engine.Resolve(context.Background(), route, "")
	if err != nil {
		t.Fatalf("Resolve(%s) error = %v", route, err)
	}
	return string(a.Content)
}

func inputID(t *testing.T, tree ftl.SourceTree, path string) string {
	t.Helper()
	data, err := tree.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return ftl.InputFileID(path, ftl.ContentHash(data))
}

func assertRendered(t *testing.T, env *testutil.Env, want ...string) {
	t.Helper()
	got := env.Renderer.Rendered()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rendered %v, want %v", got, want)
	}
}

func TestEngine_Build(t *testing.T) {
	t.Run("first build renders every page", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		res := build(t, env, site())

		assertRendered(t, env, "content/about.md", "content/blog/hello.md", "content/blog/world.md", "content/index.md")
		if res.Changes != nil {
			t.Errorf("Changes = %+v, want nil for the first build", res.Changes)
		}
		if !res.Revision.Stable || res.Revision.StabilizedAt == nil {
			t.Errorf("revision not stable: %+v", res.Revision)
		}
		if res.Rendered != 4 {
			t.Errorf("Rendered = %d, want 4", res.Rendered)
		}

		current, err := env.Engine.LookupRevision("")
		if err != nil {
			t.Fatalf("LookupRevision() error = %v", err)
		}
		if current.ID != res.Revision.ID {
			t.Errorf("current = %s, want %s", current.ID, res.Revision.ID)
		}

		if got := resolve(t, env, "/about"); got != "/about|About|P" {
			t.Errorf("/about = %q", got)
		}
		if got := resolve(t, env, "/"); got != "/|Home|P" {
			t.Errorf("/ = %q", got)
		}
		if got := resolve(t, env, "/blog/hello"); got != `/blog/hello|Hello|{{ template "base.html" . }}B1` {
			t.Errorf("/blog/hello = %q", got)
		}
	})

	t.Run("binary assets go to the blob store", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		build(t, env, site())

		if !env.Blobs.Has(ftl.ContentHash(logo)) {
			t.Error("logo blob not stored")
		}
		a, err := env.Engine.Resolve(context.Background(), "/img/logo.png", "")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if string(a.Content) != string(logo) {
			t.Errorf("asset content = %v", a.Content)
		}
	})

	t.Run("identical tree reuses the revision", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		first := build(t, env, site())
		second := build(t, env, site())

		if !second.Reused {
			t.Error("Reused = false")
		}
		if second.Revision.ID != first.Revision.ID {
			t.Errorf("revision = %s, want %s", second.Revision.ID, first.Revision.ID)
		}
		assertRendered(t, env)
	})

	t.Run("template change renders only pages using it", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		build(t, env, tree)
		about := resolve(t, env, "/about")

		tree.Set("templates/base.html", "B2")
		res := build(t, env, tree)

		assertRendered(t, env, "content/blog/hello.md", "content/blog/world.md")
		if res.Carried != 2 {
			t.Errorf("Carried = %d, want 2", res.Carried)
		}
		if len(res.Changes.Modified) != 1 || res.Changes.Modified[0].New.Path != "templates/base.html" {
			t.Errorf("Modified = %+v", res.Changes.Modified)
		}
		if got := resolve(t, env, "/about"); got != about {
			t.Errorf("/about changed to %q", got)
		}
		if got := resolve(t, env, "/blog/world"); !strings.HasSuffix(got, "B2") {
			t.Errorf("/blog/world = %q, want new base layout", got)
		}
	})

	t.Run("content edit renders only that page", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		build(t, env, tree)

		tree.Set("content/blog/hello.md", doc("Hello again", `template = "post.html"`))
		build(t, env, tree)

		assertRendered(t, env, "content/blog/hello.md")
		if got := resolve(t, env, "/blog/hello"); !strings.Contains(got, "Hello again") {
			t.Errorf("/blog/hello = %q", got)
		}
	})

	t.Run("asset change renders pages depending on it", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		build(t, env, tree)

		tree.SetBytes("static/img/logo.png", append(slices.Clone(logo), 0x01))
		build(t, env, tree)

		assertRendered(t, env, "content/about.md")
	})

	t.Run("removed template renders its former users", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		build(t, env, tree)

		tree.Remove("templates/page.html")
		res := build(t, env, tree)

		assertRendered(t, env, "content/about.md", "content/index.md")
		if len(res.Changes.Removed) != 1 {
			t.Errorf("Removed = %+v", res.Changes.Removed)
		}
		if got := resolve(t, env, "/about"); got != "/about|About|" {
			t.Errorf("/about = %q", got)
		}
	})

	t.Run("new section member renders the paginated index", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		tree.Set("content/blog/index.md", doc("Blog", "paginate_by = 2"))
		build(t, env, tree)

		if _, err := env.Engine.Resolve(context.Background(), "/blog/page/2", ""); !errors.Is(err, ftl.ErrNotFound) {
			t.Fatalf("/blog/page/2 before third post: error = %v, want ErrNotFound", err)
		}

		tree.Set("content/blog/third.md", doc("Third", `template = "post.html"`))
		build(t, env, tree)

		assertRendered(t, env, "content/blog/index.md", "content/blog/third.md")
		if got := resolve(t, env, "/blog/page/2"); got != "/blog/page/2|Blog|P" {
			t.Errorf("/blog/page/2 = %q", got)
		}
	})

	t.Run("dynamic pages render in every new revision", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		tree.Set("content/feed.md", doc("Feed", "dynamic = true"))
		build(t, env, tree)

		tree.Set("static/robots.txt", "User-agent: *\n")
		build(t, env, tree)

		assertRendered(t, env, "content/feed.md")
	})

	t.Run("aliases resolve to the canonical output", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		build(t, env, site())

		a, err := env.Engine.Resolve(context.Background(), "/old/world/", "")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if a.Redirect != "/blog/world" {
			t.Errorf("Redirect = %q, want /blog/world", a.Redirect)
		}
		if !strings.HasPrefix(string(a.Content), "/blog/world|World|") {
			t.Errorf("content = %q", a.Content)
		}
	})

	t.Run("name option names the revision", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		res, err := env.Engine.Build(context.Background(), site(), ftl.BuildOptions{Name: "launch"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Revision.Name != "launch" {
			t.Errorf("Name = %q", res.Revision.Name)
		}
		rev, err := env.Engine.LookupRevision("launch")
		if err != nil || rev.ID != res.Revision.ID {
			t.Errorf("LookupRevision(launch) = %v, %v", rev, err)
		}
	})

	t.Run("rejected name on a reused revision keeps the current one", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		ctx := context.Background()
		tree := site()
		first, err := env.Engine.Build(ctx, tree, ftl.BuildOptions{Name: "one"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		about := doc("About", `dependencies = ["/img/logo.png"]`)
		tree.Set("content/about.md", doc("About v2"))
		second := build(t, env, tree)

		tree.Set("content/about.md", about)
		if _, err := env.Engine.Build(ctx, tree, ftl.BuildOptions{Name: "two"}); err == nil {
			t.Fatal("Build() renamed a named revision")
		}
		current, err := env.Engine.LookupRevision("")
		if err != nil || current.ID != second.Revision.ID {
			t.Errorf("current = %v, %v, want %s", current, err, second.Revision.ID)
		}

		res, err := env.Engine.Build(ctx, tree, ftl.BuildOptions{Name: "one"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !res.Reused || res.Revision.ID != first.Revision.ID {
			t.Errorf("result = %+v, want reuse of %s", res.Revision, first.Revision.ID)
		}
	})
}

func TestEngine_Build_Drafts(t *testing.T) {
	tree := site()
	tree.Set("content/wip.md", doc("WIP", "draft = true"))

	t.Run("drafts are not routed by default", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		build(t, env, tree)
		if _, err := env.Engine.Resolve(context.Background(), "/wip", ""); !errors.Is(err, ftl.ErrNotFound) {
			t.Errorf("Resolve(/wip) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("drafts option routes them", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{Drafts: true})
		build(t, env, tree)
		if got := resolve(t, env, "/wip"); got != "/wip|WIP|P" {
			t.Errorf("/wip = %q", got)
		}
	})

	t.Run("toggling drafts on an unchanged tree", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		first := build(t, env, tree)

		env.Reopen(ftl.Options{Drafts: true})
		withDrafts := build(t, env, tree)
		if withDrafts.Reused || withDrafts.Revision.ID == first.Revision.ID {
			t.Fatalf("drafts build reused %s", first.Revision.ID)
		}
		assertRendered(t, env, "content/wip.md")
		if got := resolve(t, env, "/wip"); got != "/wip|WIP|P" {
			t.Errorf("/wip = %q", got)
		}

		env.Reopen(ftl.Options{})
		again := build(t, env, tree)
		if !again.Reused || again.Revision.ID != first.Revision.ID {
			t.Errorf("revision = %s, want reuse of %s", again.Revision.ID, first.Revision.ID)
		}
		if _, err := env.Engine.Resolve(context.Background(), "/wip", ""); !errors.Is(err, ftl.ErrNotFound) {
			t.Errorf("Resolve(/wip) error = %v, want ErrNotFound", err)
		}
	})
}

func TestEngine_Build_PublishWindow(t *testing.T) {
	// The test clock starts at 2024-01-15 10:30 UTC.
	later := doc("Later", `template = "post.html"`,
		"publish_date = 2024-01-15T12:00:00Z",
		"expire_date = 2024-01-15T14:00:00Z")

	t.Run("unchanged tree routes a page once it is published", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		tree.Set("content/blog/later.md", later)
		first := build(t, env, tree)
		if _, err := env.Engine.Resolve(context.Background(), "/blog/later", ""); !errors.Is(err, ftl.ErrNotFound) {
			t.Fatalf("Resolve(/blog/later) error = %v, want ErrNotFound", err)
		}

		env.Clock.Advance(2 * time.Hour)
		second := build(t, env, tree)
		if second.Reused || second.Revision.ID == first.Revision.ID {
			t.Fatalf("build after publish date reused %s", first.Revision.ID)
		}
		assertRendered(t, env, "content/blog/later.md")
		if got := resolve(t, env, "/blog/later"); !strings.HasPrefix(got, "/blog/later|Later|") {
			t.Errorf("/blog/later = %q", got)
		}

		third := build(t, env, tree)
		if !third.Reused || third.Revision.ID != second.Revision.ID {
			t.Errorf("revision = %s, want reuse of %s", third.Revision.ID, second.Revision.ID)
		}
	})

	t.Run("section listing follows pages entering and leaving", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		tree.Set("content/blog/index.md", doc("Blog", "paginate_by = 2"))
		tree.Set("content/blog/later.md", later)
		build(t, env, tree)
		if _, err := env.Engine.Resolve(context.Background(), "/blog/page/2", ""); !errors.Is(err, ftl.ErrNotFound) {
			t.Fatalf("/blog/page/2 before publishing: error = %v, want ErrNotFound", err)
		}

		// An unrelated edit in the same build must not carry the old listing.
		env.Clock.Advance(2 * time.Hour)
		tree.Set("static/robots.txt", "User-agent: *\n")
		build(t, env, tree)
		assertRendered(t, env, "content/blog/index.md", "content/blog/later.md")
		if got := resolve(t, env, "/blog/page/2"); got != "/blog/page/2|Blog|P" {
			t.Errorf("/blog/page/2 = %q", got)
		}

		env.Clock.Advance(2 * time.Hour)
		build(t, env, tree)
		assertRendered(t, env, "content/blog/index.md")
		for _, route := range []string{"/blog/page/2", "/blog/later"} {
			if _, err := env.Engine.Resolve(context.Background(), route, ""); !errors.Is(err, ftl.ErrNotFound) {
				t.Errorf("Resolve(%s) after expiry error = %v, want ErrNotFound", route, err)
			}
		}
	})
}

func TestEngine_Build_Failures(t *testing.T) {
	t.Run("render failure leaves the current revision in place", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		first := build(t, env, tree)

		tree.Set("content/about.md", doc("About us"))
		env.Renderer.FailOn("content/about.md", errors.New("template exploded"))
		env.Clock.Advance(time.Minute)
		res, err := env.Engine.Build(context.Background(), tree, ftl.BuildOptions{})
		if err == nil || !ftl.IsFatal(err) {
			t.Fatalf("Build() error = %v, want fatal error", err)
		}
		if res != nil {
			t.Errorf("result = %+v, want nil", res)
		}

		current, err := env.Engine.LookupRevision("")
		if err != nil {
			t.Fatalf("LookupRevision() error = %v", err)
		}
		if current.ID != first.Revision.ID {
			t.Errorf("current = %s, want %s", current.ID, first.Revision.ID)
		}
		if got := resolve(t, env, "/about"); got != "/about|About|P" {
			t.Errorf("/about = %q", got)
		}

		history, err := env.Engine.History(1)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if history[0].Status != ftl.BuildError {
			t.Errorf("last build status = %s, want %s", history[0].Status, ftl.BuildError)
		}
		if _, err := env.Engine.Resolve(context.Background(), "/about", history[0].Revision); !errors.Is(err, ftl.ErrNotStable) {
			t.Errorf("Resolve() in failed revision error = %v, want ErrNotStable", err)
		}

		// The abandoned revision is replaced once the failure is fixed.
		env.Renderer.FailOn("content/about.md", nil)
		fixed := build(t, env, tree)
		if fixed.Revision.ID != history[0].Revision || !fixed.Revision.Stable {
			t.Errorf("rebuilt revision = %+v", fixed.Revision)
		}
		if got := resolve(t, env, "/about"); got != "/about|About us|P" {
			t.Errorf("/about = %q", got)
		}
	})

	t.Run("collect removes the outputs of a failed build", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		build(t, env, tree)
		before, err := env.Engine.Stats()
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		served := map[string]string{}
		for _, route := range []string{"/", "/about", "/blog/hello", "/blog/world"} {
			served[route] = resolve(t, env, route)
		}

		tree.Set("templates/base.html", "B2")
		tree.Set("content/about.md", doc("About us"))
		env.Renderer.FailOn("content/about.md", errors.New("template exploded"))
		env.Clock.Advance(time.Minute)
		if _, err := env.Engine.Build(context.Background(), tree, ftl.BuildOptions{}); !ftl.IsFatal(err) {
			t.Fatalf("Build() error = %v, want fatal error", err)
		}
		partial, err := env.Engine.Stats()
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if partial.Outputs <= before.Outputs {
			t.Errorf("Outputs = %d after the failed build, want more than %d", partial.Outputs, before.Outputs)
		}

		if _, err := env.Engine.Collect(context.Background()); err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		after, err := env.Engine.Stats()
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if after.Outputs != before.Outputs || after.Revisions != before.Revisions {
			t.Errorf("Stats after collect = %+v, want %+v", after, before)
		}
		for route, want := range served {
			if got := resolve(t, env, route); got != want {
				t.Errorf("%s = %q, want %q", route, got, want)
			}
		}
	})

	t.Run("template cycle is rejected", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		tree.Set("templates/a.html", `{{ template "b.html" }}`)
		tree.Set("templates/b.html", `{{ template "a.html" }}`)

		_, err := env.Engine.Build(context.Background(), tree, ftl.BuildOptions{})
		var cycle *ftl.DependencyCycleError
		if !errors.As(err, &cycle) {
			t.Fatalf("Build() error = %v, want DependencyCycleError", err)
		}
		if !strings.Contains(cycle.Error(), "templates/a.html") || !strings.Contains(cycle.Error(), "templates/b.html") {
			t.Errorf("cycle error %q does not name the templates", cycle.Error())
		}
		if _, err := env.Engine.LookupRevision(""); !errors.Is(err, ftl.ErrNotFound) {
			t.Errorf("LookupRevision() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("route conflict is rejected", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		tree.Set("content/news.md", doc("News", `aliases = ["/about"]`))

		_, err := env.Engine.Build(context.Background(), tree, ftl.BuildOptions{})
		var conflict *ftl.RouteConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("Build() error = %v, want RouteConflictError", err)
		}
		aboutID := inputID(t, tree, "content/about.md")
		newsID := inputID(t, tree, "content/news.md")
		if conflict.Route != "/about" || conflict.First != aboutID || conflict.Second != newsID {
			t.Errorf("conflict = %+v, want ids %s and %s", conflict, aboutID, newsID)
		}
		if conflict.FirstPath != "content/about.md" || conflict.SecondPath != "content/news.md" {
			t.Errorf("conflict paths = %q, %q", conflict.FirstPath, conflict.SecondPath)
		}
		if msg := conflict.Error(); !strings.Contains(msg, "content/about.md") || !strings.Contains(msg, ftl.ShortID(newsID)) {
			t.Errorf("Error() = %q", msg)
		}
	})

	t.Run("unreadable and unparsable files are warnings", func(t *testing.T) {
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		tree.Set("content/notes.md", "no frontmatter here\n")
		tree.Set("content/secret.md", doc("Secret"))
		tree.Unreadable("content/secret.md")

		res, err := env.Engine.Build(context.Background(), tree, ftl.BuildOptions{})
		if ftl.IsFatal(err) {
			t.Fatalf("Build() error = %v, want warnings only", err)
		}
		var warnings ftl.IngestErrors
		if !errors.As(err, &warnings) || len(warnings) != 2 {
			t.Fatalf("Build() error = %v, want 2 warnings", err)
		}
		if res == nil || !res.Revision.Stable {
			t.Fatalf("result = %+v, want stable revision", res)
		}
		if _, err := env.Engine.Resolve(context.Background(), "/notes", ""); !errors.Is(err, ftl.ErrNotFound) {
			t.Errorf("Resolve(/notes) error = %v, want ErrNotFound", err)
		}
	})
}

func TestEngine_Revisions(t *testing.T) {
	setup := func(t *testing.T) (*testutil.Env, *ftl.BuildResult, *ftl.BuildResult) {
		t.Helper()
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		first := build(t, env, tree)
		tree.Set("content/about.md", doc("About v2"))
		second := build(t, env, tree)
		return env, first, second
	}

	t.Run("list is newest first and marks the current revision", func(t *testing.T) {
		env, first, second := setup(t)
		infos, err := env.Engine.ListRevisions()
		if err != nil {
			t.Fatalf("ListRevisions() error = %v", err)
		}
		if len(infos) != 2 {
			t.Fatalf("got %d revisions, want 2", len(infos))
		}
		if infos[0].Revision.ID != second.Revision.ID || !infos[0].Current {
			t.Errorf("infos[0] = %+v", infos[0])
		}
		if infos[1].Revision.ID != first.Revision.ID || infos[1].Current {
			t.Errorf("infos[1] = %+v", infos[1])
		}
	})

	t.Run("inspect counts rows", func(t *testing.T) {
		env, _, second := setup(t)
		info, err := env.Engine.InspectRevision(ftl.ShortID(second.Revision.ID))
		if err != nil {
			t.Fatalf("InspectRevision() error = %v", err)
		}
		// 4 documents, 3 templates, 1 asset.
		if info.Stats.Files != 8 || info.Stats.Pages != 4 {
			t.Errorf("Stats = %+v", info.Stats)
		}
		// 4 pages, 1 alias, 1 asset.
		if info.Stats.Routes != 6 || info.Stats.Outputs != 4 {
			t.Errorf("Stats = %+v", info.Stats)
		}
	})

	t.Run("rollback serves an older revision", func(t *testing.T) {
		env, first, _ := setup(t)
		if _, err := env.Engine.Rollback(first.Revision.ID); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if got := resolve(t, env, "/about"); got != "/about|About|P" {
			t.Errorf("/about = %q", got)
		}
	})

	t.Run("names are unique and write-once", func(t *testing.T) {
		env, first, second := setup(t)
		if _, err := env.Engine.Name(first.Revision.ID, "v1"); err != nil {
			t.Fatalf("Name() error = %v", err)
		}
		if _, err := env.Engine.Name(second.Revision.ID, "v1"); !errors.Is(err, ftl.ErrNameTaken) {
			t.Errorf("Name() duplicate error = %v, want ErrNameTaken", err)
		}
		if _, err := env.Engine.Name("v1", "v1"); err != nil {
			t.Errorf("Name() same name error = %v", err)
		}
		if _, err := env.Engine.Name("v1", "other"); err == nil {
			t.Error("Name() renamed a named revision")
		}
		rev, err := env.Engine.LookupRevision("v1")
		if err != nil || rev.ID != first.Revision.ID {
			t.Errorf("LookupRevision(v1) = %v, %v", rev, err)
		}
	})

	t.Run("unknown references are not found", func(t *testing.T) {
		env, _, _ := setup(t)
		for _, ref := range []string{"nope", "0000000000000000"} {
			if _, err := env.Engine.LookupRevision(ref); !errors.Is(err, ftl.ErrNotFound) {
				t.Errorf("LookupRevision(%q) error = %v, want ErrNotFound", ref, err)
			}
		}
	})
}

func TestEngine_Collect(t *testing.T) {
	setup := func(t *testing.T) (*testutil.Env, *ftl.BuildResult, *ftl.BuildResult) {
		t.Helper()
		env := testutil.NewTestEngine(t, ftl.Options{})
		tree := site()
		first := build(t, env, tree)
		tree.SetBytes("static/img/logo.png", []byte{0x00, 0xff, 0xfe})
		second := build(t, env, tree)
		return env, first, second
	}

	t.Run("removes revisions that are neither current nor pinned", func(t *testing.T) {
		env, first, second := setup(t)

		stats, err := env.Engine.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if !reflect.DeepEqual(stats.Revisions, []string{first.Revision.ID}) {
			t.Errorf("Revisions = %v, want [%s]", stats.Revisions, first.Revision.ID)
		}
		if stats.InputFiles != 1 || stats.Blobs != 1 {
			t.Errorf("stats = %+v, want the old logo only", stats)
		}
		if env.Blobs.Has(ftl.ContentHash(logo)) {
			t.Error("old logo blob still present")
		}
		if !env.Blobs.Has(ftl.ContentHash([]byte{0x00, 0xff, 0xfe})) {
			t.Error("current logo blob removed")
		}
		if _, err := env.Engine.LookupRevision(first.Revision.ID); !errors.Is(err, ftl.ErrNotFound) {
			t.Errorf("collected revision lookup error = %v", err)
		}
		current, err := env.Engine.LookupRevision("")
		if err != nil || current.ID != second.Revision.ID {
			t.Errorf("current = %v, %v", current, err)
		}
		if got := resolve(t, env, "/blog/hello"); !strings.HasPrefix(got, "/blog/hello|Hello|") {
			t.Errorf("/blog/hello = %q", got)
		}
	})

	t.Run("keeps the latest stable revision after a rollback", func(t *testing.T) {
		env, first, second := setup(t)
		if _, err := env.Engine.Rollback(first.Revision.ID); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}

		stats, err := env.Engine.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if len(stats.Revisions) != 0 || stats.Blobs != 0 {
			t.Errorf("stats = %+v, want nothing collected", stats)
		}
		for _, rev := range []*ftl.BuildResult{first, second} {
			if _, err := env.Engine.LookupRevision(rev.Revision.ID); err != nil {
				t.Errorf("LookupRevision(%s) error = %v", ftl.ShortID(rev.Revision.ID), err)
			}
		}
		current, err := env.Engine.LookupRevision("")
		if err != nil || current.ID != first.Revision.ID {
			t.Errorf("current = %v, %v, want %s", current, err, first.Revision.ID)
		}
	})

	t.Run("keeps pinned revisions", func(t *testing.T) {
		env, first, _ := setup(t)
		if _, err := env.Engine.Pin(first.Revision.ID); err != nil {
			t.Fatalf("Pin() error = %v", err)
		}

		stats, err := env.Engine.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if len(stats.Revisions) != 0 || stats.Blobs != 0 {
			t.Errorf("stats = %+v, want nothing collected", stats)
		}
		if !env.Blobs.Has(ftl.ContentHash(logo)) {
			t.Error("pinned revision's blob removed")
		}

		if _, err := env.Engine.Unpin(first.Revision.ID); err != nil {
			t.Fatalf("Unpin() error = %v", err)
		}
		stats, err = env.Engine.Collect(context.Background())
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if len(stats.Revisions) != 1 {
			t.Errorf("Revisions = %v, want 1 after unpin", stats.Revisions)
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		env, _, _ := setup(t)
		if err := env.Engine.Clear(context.Background()); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, err := env.Engine.LookupRevision(""); !errors.Is(err, ftl.ErrNotFound) {
			t.Errorf("LookupRevision() error = %v, want ErrNotFound", err)
		}
		stats, err := env.Engine.Stats()
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.InputFiles != 0 || stats.Revisions != 0 || stats.Outputs != 0 {
			t.Errorf("Stats = %+v", stats)
		}
	})
}
