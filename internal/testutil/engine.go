package testutil

import (
	"testing"

	"ftl-go/internal/blobstore"
	"ftl-go/internal/database"
	"ftl-go/internal/ftl"
	"ftl-go/internal/parse"
)

// Env is an engine over in-memory collaborators.
type Env struct {
	Engine   *ftl.Engine
	DB       *database.SQLiteDatabase
	Blobs    *blobstore.MemoryStore
	Renderer *RecordingRenderer
	Clock    *StubClock
	IDs      *StubIDGenerator
}

// NewTestEngine wires an engine to an in-memory database and blob store,
// the frontmatter parser and a RecordingRenderer.
func NewTestEngine(t *testing.T, opts ftl.Options) *Env {
	t.Helper()
	env := &Env{
		DB:       NewTestDatabase(t),
		Blobs:    blobstore.NewMemoryStore(),
		Renderer: NewRecordingRenderer(),
		Clock:    FixedClock(),
		IDs:      NewStubIDGenerator(),
	}
	env.Reopen(opts)
	return env
}

// Reopen replaces Engine with one configured by opts over the same store,
// as a later CLI run with different flags would see it.
func (env *Env) Reopen(opts ftl.Options) *ftl.Engine {
	if opts.DefaultTemplate != "" {
		env.Renderer.DefaultTemplate = opts.DefaultTemplate
	}
	env.Engine = ftl.NewEngine(env.DB, env.Blobs, parse.Parser{}, env.Renderer,
		ftl.NewNopLogger(), env.Clock, env.IDs, opts)
	return env.Engine
}
