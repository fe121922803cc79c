package database

import (
	"errors"
	"testing"
	"time"

	"ftl-go/internal/ftl"
	"ftl-go/internal/model"
)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if _, err := db.db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

var epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func newInput(path, content string, inline bool) *model.InputFile {
	hash := ftl.ContentHash([]byte(content))
	f := &model.InputFile{
		ID:        ftl.InputFileID(path, hash),
		Path:      path,
		Hash:      hash,
		Extension: ftl.Extension(path),
		Inline:    inline,
		Size:      int64(len(content)),
		CreatedAt: epoch,
	}
	if inline {
		f.Contents = content
	}
	return f
}

func mustCreateInput(t *testing.T, db *SQLiteDatabase, f *model.InputFile) *model.InputFile {
	t.Helper()
	if _, err := db.CreateInputFile(f); err != nil {
		t.Fatalf("CreateInputFile(%s) error = %v", f.Path, err)
	}
	return f
}

// mustCreateRevision creates a revision over files with one page route per
// file path given in pages.
func mustCreateRevision(t *testing.T, db *SQLiteDatabase, files []*model.InputFile, routes map[string]string) *model.Revision {
	t.Helper()
	var ids []string
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	rev := &model.Revision{ID: ftl.RevisionID(ids), CreatedAt: epoch}
	if err := db.CreateRevision(rev, ids); err != nil {
		t.Fatalf("CreateRevision() error = %v", err)
	}

	meta := &ftl.RevisionMetadata{}
	for _, f := range files {
		if route, ok := routes[f.Path]; ok {
			meta.Routes = append(meta.Routes, &model.Route{ID: f.ID, Route: route, ParentRoute: ftl.ParentRoute(route), Kind: model.RoutePage})
		}
	}
	if err := db.SaveRevisionMetadata(rev.ID, meta); err != nil {
		t.Fatalf("SaveRevisionMetadata() error = %v", err)
	}
	return rev
}

func TestSQLiteDatabase_InputFiles(t *testing.T) {
	t.Run("returns nil when input not found", func(t *testing.T) {
		db := newTestDB(t)

		f, err := db.FindInputFile("missing")
		if err != nil {
			t.Fatalf("FindInputFile() error = %v", err)
		}
		if f != nil {
			t.Errorf("FindInputFile() = %v, want nil", f)
		}
	})

	t.Run("identical input is stored once", func(t *testing.T) {
		db := newTestDB(t)
		f := newInput("content/a.md", "# A", true)

		created, err := db.CreateInputFile(f)
		if err != nil || !created {
			t.Fatalf("first CreateInputFile() = %v, %v; want true, nil", created, err)
		}
		created, err = db.CreateInputFile(f)
		if err != nil || created {
			t.Fatalf("second CreateInputFile() = %v, %v; want false, nil", created, err)
		}

		got, err := db.FindInputFileByPathAndHash(f.Path, f.Hash)
		if err != nil {
			t.Fatalf("FindInputFileByPathAndHash() error = %v", err)
		}
		if got == nil || got.ID != f.ID {
			t.Fatalf("FindInputFileByPathAndHash() = %v, want id %s", got, f.ID)
		}
		if got.Contents != "# A" || !got.Inline {
			t.Errorf("Contents = %q inline %v, want inline %q", got.Contents, got.Inline, "# A")
		}
		if !got.CreatedAt.Equal(epoch) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, epoch)
		}
	})

	t.Run("binary input has no contents", func(t *testing.T) {
		db := newTestDB(t)
		f := mustCreateInput(t, db, newInput("static/logo.png", "\x89PNG", false))

		got, err := db.FindInputFile(f.ID)
		if err != nil {
			t.Fatalf("FindInputFile() error = %v", err)
		}
		if got.Inline || got.Contents != "" {
			t.Errorf("got inline %v contents %q, want binary without contents", got.Inline, got.Contents)
		}
	})

	t.Run("versions of a path are listed", func(t *testing.T) {
		db := newTestDB(t)
		v1 := newInput("content/a.md", "one", true)
		v2 := newInput("content/a.md", "two", true)
		v2.CreatedAt = epoch.Add(time.Hour)
		mustCreateInput(t, db, v1)
		mustCreateInput(t, db, v2)
		mustCreateInput(t, db, newInput("content/b.md", "other", true))

		got, err := db.FindInputFilesByPath("content/a.md")
		if err != nil {
			t.Fatalf("FindInputFilesByPath() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d versions, want 2", len(got))
		}
		if got[0].ID != v2.ID {
			t.Errorf("first version = %s, want newest %s", got[0].ID, v2.ID)
		}
	})
}

func TestSQLiteDatabase_Revisions(t *testing.T) {
	t.Run("members are listed by path", func(t *testing.T) {
		db := newTestDB(t)
		b := mustCreateInput(t, db, newInput("content/b.md", "b", true))
		a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
		rev := mustCreateRevision(t, db, []*model.InputFile{b, a}, nil)

		files, err := db.FindInputFilesForRevision(rev.ID)
		if err != nil {
			t.Fatalf("FindInputFilesForRevision() error = %v", err)
		}
		if len(files) != 2 || files[0].Path != "content/a.md" || files[1].Path != "content/b.md" {
			t.Errorf("members = %v, want a.md then b.md", files)
		}

		revs, err := db.FindRevisionsContainingInputFile(a.ID)
		if err != nil {
			t.Fatalf("FindRevisionsContainingInputFile() error = %v", err)
		}
		if len(revs) != 1 || revs[0] != rev.ID {
			t.Errorf("revisions containing a = %v, want [%s]", revs, rev.ID)
		}
	})

	t.Run("new revisions are unstable", func(t *testing.T) {
		db := newTestDB(t)
		a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
		rev := mustCreateRevision(t, db, []*model.InputFile{a}, nil)

		got, err := db.FindRevision(rev.ID)
		if err != nil {
			t.Fatalf("FindRevision() error = %v", err)
		}
		if got.Stable || got.Pinned || got.StabilizedAt != nil {
			t.Errorf("got %+v, want unstable unpinned revision", got)
		}
	})

	t.Run("prefix lookup", func(t *testing.T) {
		db := newTestDB(t)
		a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
		rev := mustCreateRevision(t, db, []*model.InputFile{a}, nil)

		got, err := db.FindRevisionsByIDPrefix(rev.ID[:8])
		if err != nil {
			t.Fatalf("FindRevisionsByIDPrefix() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != rev.ID {
			t.Errorf("FindRevisionsByIDPrefix() = %v, want [%s]", got, rev.ID)
		}

		got, err = db.FindRevisionsByIDPrefix("%")
		if err != nil || len(got) != 0 {
			t.Errorf("wildcard prefix = %v, %v; want nothing", got, err)
		}
	})

	t.Run("names are unique", func(t *testing.T) {
		db := newTestDB(t)
		a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
		b := mustCreateInput(t, db, newInput("content/b.md", "b", true))
		r1 := mustCreateRevision(t, db, []*model.InputFile{a}, nil)
		r2 := mustCreateRevision(t, db, []*model.InputFile{b}, nil)

		if err := db.SetRevisionName(r1.ID, "launch"); err != nil {
			t.Fatalf("SetRevisionName() error = %v", err)
		}
		err := db.SetRevisionName(r2.ID, "launch")
		if !errors.Is(err, ftl.ErrNameTaken) {
			t.Errorf("SetRevisionName() duplicate error = %v, want ErrNameTaken", err)
		}

		got, err := db.FindRevisionByName("launch")
		if err != nil {
			t.Fatalf("FindRevisionByName() error = %v", err)
		}
		if got == nil || got.ID != r1.ID {
			t.Errorf("FindRevisionByName() = %v, want %s", got, r1.ID)
		}
	})
}

func TestSQLiteDatabase_Stabilize(t *testing.T) {
	t.Run("fails while a page route lacks output", func(t *testing.T) {
		db := newTestDB(t)
		a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
		rev := mustCreateRevision(t, db, []*model.InputFile{a}, map[string]string{"content/a.md": "/a"})

		err := db.StabilizeRevision(rev.ID, epoch)
		if !errors.Is(err, ftl.ErrPagesPending) {
			t.Fatalf("StabilizeRevision() error = %v, want ErrPagesPending", err)
		}
		current, err := db.CurrentRevision()
		if err != nil {
			t.Fatalf("CurrentRevision() error = %v", err)
		}
		if current != nil {
			t.Errorf("CurrentRevision() = %v, want nil", current)
		}
	})

	t.Run("last output stabilizes in the same commit", func(t *testing.T) {
		db := newTestDB(t)
		a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
		b := mustCreateInput(t, db, newInput("content/b.md", "b", true))
		rev := mustCreateRevision(t, db, []*model.InputFile{a, b}, map[string]string{
			"content/a.md": "/a",
			"content/b.md": "/b",
		})

		stable, err := db.CommitOutput(&model.Output{Revision: rev.ID, Route: "/a", ID: a.ID, Content: []byte("<p>a</p>")}, epoch)
		if err != nil || stable {
			t.Fatalf("first CommitOutput() = %v, %v; want false, nil", stable, err)
		}
		stable, err = db.CommitOutput(&model.Output{Revision: rev.ID, Route: "/b", ID: b.ID, Content: []byte("<p>b</p>")}, epoch)
		if err != nil || !stable {
			t.Fatalf("last CommitOutput() = %v, %v; want true, nil", stable, err)
		}

		current, err := db.CurrentRevision()
		if err != nil {
			t.Fatalf("CurrentRevision() error = %v", err)
		}
		if current == nil || current.ID != rev.ID || !current.Stable {
			t.Fatalf("CurrentRevision() = %+v, want stable %s", current, rev.ID)
		}
		if current.StabilizedAt == nil || !current.StabilizedAt.Equal(epoch) {
			t.Errorf("StabilizedAt = %v, want %v", current.StabilizedAt, epoch)
		}

		_, err = db.CommitOutput(&model.Output{Revision: rev.ID, Route: "/a", ID: a.ID, Content: []byte("x")}, epoch)
		if !errors.Is(err, ftl.ErrImmutable) {
			t.Errorf("CommitOutput() on stable revision error = %v, want ErrImmutable", err)
		}
	})

	t.Run("revision without pages stabilizes directly", func(t *testing.T) {
		db := newTestDB(t)
		css := mustCreateInput(t, db, newInput("static/site.css", "body{}", true))
		rev := mustCreateRevision(t, db, []*model.InputFile{css}, nil)

		if err := db.StabilizeRevision(rev.ID, epoch); err != nil {
			t.Fatalf("StabilizeRevision() error = %v", err)
		}
		if err := db.StabilizeRevision(rev.ID, epoch.Add(time.Hour)); err != nil {
			t.Errorf("second StabilizeRevision() error = %v, want nil", err)
		}
		got, _ := db.FindRevision(rev.ID)
		if !got.StabilizedAt.Equal(epoch) {
			t.Errorf("StabilizedAt = %v, want the first stabilization %v", got.StabilizedAt, epoch)
		}
	})
}

func TestSQLiteDatabase_Outputs(t *testing.T) {
	t.Run("content survives compression", func(t *testing.T) {
		db := newTestDB(t)
		a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
		rev := mustCreateRevision(t, db, []*model.InputFile{a}, map[string]string{"content/a.md": "/a"})

		body := []byte("<html><body>hello hello hello hello</body></html>")
		if _, err := db.CommitOutput(&model.Output{Revision: rev.ID, Route: "/a", ID: a.ID, Content: body}, epoch); err != nil {
			t.Fatalf("CommitOutput() error = %v", err)
		}

		out, err := db.FindOutput(rev.ID, "/a")
		if err != nil {
			t.Fatalf("FindOutput() error = %v", err)
		}
		if string(out.Content) != string(body) {
			t.Errorf("Content = %q, want %q", out.Content, body)
		}
		if out.Size != int64(len(body)) {
			t.Errorf("Size = %d, want %d", out.Size, len(body))
		}

		missing, err := db.FindOutput(rev.ID, "/nope")
		if err != nil || missing != nil {
			t.Errorf("FindOutput(missing) = %v, %v; want nil, nil", missing, err)
		}
	})

	t.Run("carry forward copies only routes that still exist", func(t *testing.T) {
		db := newTestDB(t)
		a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
		b := mustCreateInput(t, db, newInput("content/b.md", "b", true))
		old := mustCreateRevision(t, db, []*model.InputFile{a, b}, map[string]string{
			"content/a.md": "/a",
			"content/b.md": "/b",
		})
		for _, out := range []*model.Output{
			{Revision: old.ID, Route: "/a", ID: a.ID, Content: []byte("A")},
			{Revision: old.ID, Route: "/b", ID: b.ID, Content: []byte("B")},
		} {
			if _, err := db.CommitOutput(out, epoch); err != nil {
				t.Fatalf("CommitOutput() error = %v", err)
			}
		}

		c := mustCreateInput(t, db, newInput("content/c.md", "c", true))
		// b moved to a new route in the new revision.
		next := mustCreateRevision(t, db, []*model.InputFile{a, b, c}, map[string]string{
			"content/a.md": "/a",
			"content/b.md": "/b-moved",
			"content/c.md": "/c",
		})

		n, err := db.CarryForwardOutputs(old.ID, next.ID, []string{a.ID, b.ID})
		if err != nil {
			t.Fatalf("CarryForwardOutputs() error = %v", err)
		}
		if n != 1 {
			t.Errorf("CarryForwardOutputs() = %d, want 1", n)
		}

		pending, err := db.FindPendingRoutes(next.ID)
		if err != nil {
			t.Fatalf("FindPendingRoutes() error = %v", err)
		}
		var got []string
		for _, r := range pending {
			got = append(got, r.Route)
		}
		if len(got) != 2 || got[0] != "/b-moved" || got[1] != "/c" {
			t.Errorf("pending routes = %v, want [/b-moved /c]", got)
		}
	})
}

func TestSQLiteDatabase_Metadata(t *testing.T) {
	db := newTestDB(t)
	page := mustCreateInput(t, db, newInput("content/post.md", "+++\ntitle = 'Post'\n+++\nbody", true))
	tmpl := mustCreateInput(t, db, newInput("templates/page.html", "{{ .Body }}", true))

	ids := []string{page.ID, tmpl.ID}
	rev := &model.Revision{ID: ftl.RevisionID(ids), CreatedAt: epoch}
	if err := db.CreateRevision(rev, ids); err != nil {
		t.Fatalf("CreateRevision() error = %v", err)
	}

	date := epoch.Add(-24 * time.Hour)
	p := &model.Page{
		ID:         page.ID,
		Path:       page.Path,
		Title:      "Post",
		Date:       &date,
		BodyOffset: 23,
		PaginateBy: 5,
		Extra:      map[string]any{"author": "ann"},
		Tags:       []string{"go", "web"},
		Aliases:    []string{"/old-post"},
	}
	meta := &ftl.RevisionMetadata{
		Pages:     []*model.Page{p},
		Templates: []*model.Template{{Name: "page.html", ID: tmpl.ID}},
		Routes: []*model.Route{
			{ID: page.ID, Route: "/post", ParentRoute: "/", Kind: model.RoutePage, PageIndex: 1},
			{ID: page.ID, Route: "/old-post", ParentRoute: "/", Kind: model.RouteAlias},
		},
		Dependencies: []*model.Dependency{
			{Parent: page.ID, Child: tmpl.ID, Relation: model.RelationPageTemplate},
		},
	}
	if err := db.SaveRevisionMetadata(rev.ID, meta); err != nil {
		t.Fatalf("SaveRevisionMetadata() error = %v", err)
	}

	t.Run("page round trip", func(t *testing.T) {
		got, err := db.FindPage(page.ID)
		if err != nil {
			t.Fatalf("FindPage() error = %v", err)
		}
		if got.Title != "Post" || got.BodyOffset != 23 || got.PaginateBy != 5 {
			t.Errorf("FindPage() = %+v", got)
		}
		if got.Date == nil || !got.Date.Equal(date) {
			t.Errorf("Date = %v, want %v", got.Date, date)
		}
		if got.Extra["author"] != "ann" {
			t.Errorf("Extra = %v, want author ann", got.Extra)
		}
		if len(got.Tags) != 2 || len(got.Aliases) != 1 {
			t.Errorf("Tags = %v Aliases = %v", got.Tags, got.Aliases)
		}

		pages, err := db.FindPagesForRevision(rev.ID)
		if err != nil {
			t.Fatalf("FindPagesForRevision() error = %v", err)
		}
		if len(pages) != 1 || len(pages[0].Tags) != 2 {
			t.Errorf("FindPagesForRevision() = %v, want the one page with tags", pages)
		}
	})

	t.Run("one input may own several routes", func(t *testing.T) {
		routes, err := db.FindRoutesForInput(rev.ID, page.ID)
		if err != nil {
			t.Fatalf("FindRoutesForInput() error = %v", err)
		}
		if len(routes) != 2 {
			t.Fatalf("got %d routes, want 2", len(routes))
		}

		alias, err := db.FindRoute(rev.ID, "/old-post")
		if err != nil {
			t.Fatalf("FindRoute() error = %v", err)
		}
		if alias.Kind != model.RouteAlias || alias.ID != page.ID {
			t.Errorf("FindRoute() = %+v, want alias of %s", alias, page.ID)
		}
	})

	t.Run("templates and dependencies", func(t *testing.T) {
		templates, err := db.FindTemplatesForRevision(rev.ID)
		if err != nil {
			t.Fatalf("FindTemplatesForRevision() error = %v", err)
		}
		if len(templates) != 1 || templates[0].Name != "page.html" {
			t.Errorf("templates = %v", templates)
		}

		deps, err := db.FindDependenciesForRevision(rev.ID)
		if err != nil {
			t.Fatalf("FindDependenciesForRevision() error = %v", err)
		}
		if len(deps) != 1 || deps[0].Relation != model.RelationPageTemplate {
			t.Errorf("dependencies = %v", deps)
		}
	})

	t.Run("revision stats", func(t *testing.T) {
		stats, err := db.RevisionStats(rev.ID)
		if err != nil {
			t.Fatalf("RevisionStats() error = %v", err)
		}
		if stats.Files != 2 || stats.Pages != 1 || stats.Routes != 2 || stats.Outputs != 0 {
			t.Errorf("RevisionStats() = %+v", stats)
		}
	})
}

func TestSQLiteDatabase_Collect(t *testing.T) {
	db := newTestDB(t)
	logo := mustCreateInput(t, db, newInput("static/logo.png", "\x89PNG-1", false))
	a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
	b := mustCreateInput(t, db, newInput("content/b.md", "b", true))
	c := mustCreateInput(t, db, newInput("content/c.md", "c", true))

	old := mustCreateRevision(t, db, []*model.InputFile{logo, a}, nil)
	pinned := mustCreateRevision(t, db, []*model.InputFile{b}, nil)
	current := mustCreateRevision(t, db, []*model.InputFile{c}, nil)
	for i, rev := range []*model.Revision{old, pinned, current} {
		if err := db.StabilizeRevision(rev.ID, epoch.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("StabilizeRevision() error = %v", err)
		}
	}
	if err := db.SetRevisionPinned(pinned.ID, true); err != nil {
		t.Fatalf("SetRevisionPinned() error = %v", err)
	}
	if err := db.SetCurrentRevision(current.ID); err != nil {
		t.Fatalf("SetCurrentRevision() error = %v", err)
	}
	unstable := mustCreateRevision(t, db, []*model.InputFile{a, c}, map[string]string{"content/a.md": "/a"})
	// Pinning protects even a revision that is neither stable nor current.
	pinnedUnstable := mustCreateRevision(t, db, []*model.InputFile{b, c}, nil)
	if err := db.SetRevisionPinned(pinnedUnstable.ID, true); err != nil {
		t.Fatalf("SetRevisionPinned() error = %v", err)
	}

	res, err := db.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	deleted := map[string]bool{}
	for _, id := range res.Revisions {
		deleted[id] = true
	}
	if len(deleted) != 2 || !deleted[old.ID] || !deleted[unstable.ID] {
		t.Errorf("deleted revisions = %v, want old and unstable", res.Revisions)
	}
	if res.InputFiles != 2 {
		t.Errorf("InputFiles = %d, want 2 (logo and a)", res.InputFiles)
	}
	if len(res.OrphanBlobs) != 1 || res.OrphanBlobs[0] != logo.Hash {
		t.Errorf("OrphanBlobs = %v, want [%s]", res.OrphanBlobs, logo.Hash)
	}

	for _, rev := range []*model.Revision{pinned, current, pinnedUnstable} {
		got, err := db.FindRevision(rev.ID)
		if err != nil || got == nil {
			t.Errorf("revision %s was collected: %v", rev.ID, err)
		}
	}
	if err := db.Compact(); err != nil {
		t.Errorf("Compact() error = %v", err)
	}
}

func TestSQLiteDatabase_Collect_AfterRollback(t *testing.T) {
	db := newTestDB(t)
	a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
	b := mustCreateInput(t, db, newInput("content/b.md", "b", true))
	c := mustCreateInput(t, db, newInput("content/c.md", "c", true))

	first := mustCreateRevision(t, db, []*model.InputFile{a}, nil)
	middle := mustCreateRevision(t, db, []*model.InputFile{b}, nil)
	latest := mustCreateRevision(t, db, []*model.InputFile{c}, nil)
	for i, rev := range []*model.Revision{first, middle, latest} {
		if err := db.StabilizeRevision(rev.ID, epoch.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("StabilizeRevision() error = %v", err)
		}
	}
	if err := db.SetCurrentRevision(first.ID); err != nil {
		t.Fatalf("SetCurrentRevision() error = %v", err)
	}

	res, err := db.Collect()
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(res.Revisions) != 1 || res.Revisions[0] != middle.ID {
		t.Errorf("deleted revisions = %v, want [%s]", res.Revisions, middle.ID)
	}
	for _, rev := range []*model.Revision{first, latest} {
		got, err := db.FindRevision(rev.ID)
		if err != nil || got == nil {
			t.Errorf("revision %s was collected: %v", rev.ID, err)
		}
	}
}

func TestSQLiteDatabase_Builds(t *testing.T) {
	db := newTestDB(t)

	for i, id := range []string{"b1", "b2", "b3"} {
		b := &model.Build{ID: id, StartedAt: epoch.Add(time.Duration(i) * time.Minute), Status: ftl.BuildRunning}
		if err := db.CreateBuild(b); err != nil {
			t.Fatalf("CreateBuild() error = %v", err)
		}
		finished := b.StartedAt.Add(time.Second)
		b.FinishedAt = &finished
		b.Status = ftl.BuildSuccess
		b.Rendered = int64(i)
		if err := db.FinishBuild(b); err != nil {
			t.Fatalf("FinishBuild() error = %v", err)
		}
	}

	builds, err := db.ListBuilds(2)
	if err != nil {
		t.Fatalf("ListBuilds() error = %v", err)
	}
	if len(builds) != 2 {
		t.Fatalf("got %d builds, want 2", len(builds))
	}
	if builds[0].ID != "b3" || builds[1].ID != "b2" {
		t.Errorf("builds = %s, %s; want newest first", builds[0].ID, builds[1].ID)
	}
	if builds[0].Status != ftl.BuildSuccess || builds[0].FinishedAt == nil {
		t.Errorf("latest build = %+v, want finished success", builds[0])
	}
}

func TestSQLiteDatabase_ClearAndStats(t *testing.T) {
	db := newTestDB(t)
	a := mustCreateInput(t, db, newInput("content/a.md", "a", true))
	mustCreateRevision(t, db, []*model.InputFile{a}, map[string]string{"content/a.md": "/a"})

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.InputFiles != 1 || stats.Revisions != 1 || stats.Routes != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.SizeBytes <= 0 {
		t.Errorf("SizeBytes = %d, want positive", stats.SizeBytes)
	}

	if err := db.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	stats, err = db.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.InputFiles != 0 || stats.Revisions != 0 || stats.Routes != 0 {
		t.Errorf("Stats() after Clear = %+v, want empty", stats)
	}
}
