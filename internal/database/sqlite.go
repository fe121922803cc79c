package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ftl-go/internal/database/migrations"
	"ftl-go/internal/database/sqlc"
	"ftl-go/internal/ftl"
	"ftl-go/internal/model"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDatabase implements the Database interface using SQLite.
// Readers run concurrently; every mutating transaction holds writeMu.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
	writeMu sync.Mutex
}

var _ ftl.Database = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		path:    "",
	}
}

// OpenConnection opens and configures a SQLite database connection.
// The pragmas are passed in the DSN so every pooled connection gets them.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	if path != ":memory:" {
		dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ftl.ErrStorage, op, err)
}

// write runs fn in a transaction while holding the writer lock.
func (s *SQLiteDatabase) write(op string, fn func(ctx context.Context, qtx *sqlc.Queries) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("starting transaction", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, s.queries.WithTx(tx)); err != nil {
		if errors.Is(err, ftl.ErrStorage) || isDomainError(err) {
			return err
		}
		return storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("committing "+op, err)
	}
	return nil
}

// isDomainError reports whether err is one of the engine sentinels rather
// than a store failure.
func isDomainError(err error) bool {
	for _, sentinel := range []error{ftl.ErrNotFound, ftl.ErrNotStable, ftl.ErrPagesPending, ftl.ErrImmutable, ftl.ErrNameTaken} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Input files

func (s *SQLiteDatabase) FindInputFile(id string) (*model.InputFile, error) {
	row, err := s.queries.GetInputFileByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("finding input file", err)
	}
	return toInputFile(row), nil
}

func (s *SQLiteDatabase) FindInputFileByPathAndHash(path, hash string) (*model.InputFile, error) {
	row, err := s.queries.GetInputFileByPathAndHash(context.Background(), sqlc.GetInputFileByPathAndHashParams{
		Path: path,
		Hash: hash,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("finding input file by path and hash", err)
	}
	return toInputFile(row), nil
}

func (s *SQLiteDatabase) CreateInputFile(f *model.InputFile) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	contents := sql.NullString{}
	if f.Inline {
		contents = sql.NullString{String: f.Contents, Valid: true}
	}
	n, err := s.queries.InsertInputFile(context.Background(), sqlc.InsertInputFileParams{
		ID:        f.ID,
		Path:      f.Path,
		Hash:      f.Hash,
		Extension: f.Extension,
		Contents:  contents,
		Inline:    f.Inline,
		Size:      f.Size,
		CreatedAt: f.CreatedAt.UTC(),
	})
	if err != nil {
		return false, storageErr("creating input file", err)
	}
	return n == 1, nil
}

func (s *SQLiteDatabase) FindInputFilesForRevision(revision string) ([]*model.InputFile, error) {
	rows, err := s.queries.GetInputFilesByRevision(context.Background(), revision)
	if err != nil {
		return nil, storageErr("finding revision input files", err)
	}
	return toInputFiles(rows), nil
}

func (s *SQLiteDatabase) FindInputFilesByPath(path string) ([]*model.InputFile, error) {
	rows, err := s.queries.GetInputFilesByPath(context.Background(), path)
	if err != nil {
		return nil, storageErr("finding input files by path", err)
	}
	return toInputFiles(rows), nil
}

func (s *SQLiteDatabase) FindRevisionsContainingInputFile(id string) ([]string, error) {
	ids, err := s.queries.GetRevisionsContainingInputFile(context.Background(), id)
	if err != nil {
		return nil, storageErr("finding revisions for input file", err)
	}
	return ids, nil
}

// Revisions

func (s *SQLiteDatabase) FindRevision(id string) (*model.Revision, error) {
	row, err := s.queries.GetRevisionByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("finding revision", err)
	}
	return toRevision(row), nil
}

func (s *SQLiteDatabase) FindRevisionByName(name string) (*model.Revision, error) {
	row, err := s.queries.GetRevisionByName(context.Background(), nullString(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("finding revision by name", err)
	}
	return toRevision(row), nil
}

func (s *SQLiteDatabase) FindRevisionsByIDPrefix(prefix string) ([]*model.Revision, error) {
	// Ids are hex, so LIKE wildcards in the prefix can only be user error.
	if strings.ContainsAny(prefix, "%_") {
		return nil, nil
	}
	rows, err := s.queries.GetRevisionsByIDPrefix(context.Background(), prefix)
	if err != nil {
		return nil, storageErr("finding revisions by prefix", err)
	}
	return toRevisions(rows), nil
}

func (s *SQLiteDatabase) ListRevisions() ([]*model.Revision, error) {
	rows, err := s.queries.ListRevisions(context.Background())
	if err != nil {
		return nil, storageErr("listing revisions", err)
	}
	return toRevisions(rows), nil
}

func (s *SQLiteDatabase) CreateRevision(rev *model.Revision, memberIDs []string) error {
	return s.write("creating revision", func(ctx context.Context, qtx *sqlc.Queries) error {
		if err := qtx.InsertRevision(ctx, sqlc.InsertRevisionParams{
			ID:        rev.ID,
			Name:      nullString(rev.Name),
			CreatedAt: rev.CreatedAt.UTC(),
		}); err != nil {
			return storageErr("inserting revision", err)
		}
		for _, id := range memberIDs {
			if err := qtx.InsertRevisionFile(ctx, sqlc.InsertRevisionFileParams{
				Revision: rev.ID,
				ID:       id,
			}); err != nil {
				return storageErr("inserting revision file", err)
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) DeleteRevision(id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.queries.DeleteRevision(context.Background(), id); err != nil {
		return storageErr("deleting revision", err)
	}
	return nil
}

func (s *SQLiteDatabase) SetRevisionPinned(id string, pinned bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.queries.UpdateRevisionPinned(context.Background(), sqlc.UpdateRevisionPinnedParams{
		Pinned: pinned,
		ID:     id,
	}); err != nil {
		return storageErr("updating revision pin", err)
	}
	return nil
}

func (s *SQLiteDatabase) SetRevisionName(id string, name string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.queries.UpdateRevisionName(context.Background(), sqlc.UpdateRevisionNameParams{
		Name: nullString(name),
		ID:   id,
	}); err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("name %q: %w", name, ftl.ErrNameTaken)
		}
		return storageErr("naming revision", err)
	}
	return nil
}

func (s *SQLiteDatabase) StabilizeRevision(id string, at time.Time) error {
	return s.write("stabilizing revision", func(ctx context.Context, qtx *sqlc.Queries) error {
		return stabilize(ctx, qtx, id, at)
	})
}

// stabilize flips the stable flag of a revision with no pending page routes
// and makes it current. Already stable revisions are left unchanged.
func stabilize(ctx context.Context, qtx *sqlc.Queries, id string, at time.Time) error {
	pending, err := qtx.CountPendingRoutes(ctx, id)
	if err != nil {
		return storageErr("counting pending routes", err)
	}
	if pending > 0 {
		return fmt.Errorf("%d routes: %w", pending, ftl.ErrPagesPending)
	}
	n, err := qtx.StabilizeRevision(ctx, sqlc.StabilizeRevisionParams{
		StabilizedAt: sql.NullTime{Time: at.UTC(), Valid: true},
		ID:           id,
	})
	if err != nil {
		return storageErr("marking revision stable", err)
	}
	if n == 0 {
		return nil
	}
	if err := qtx.SetCurrentRevision(ctx, nullString(id)); err != nil {
		return storageErr("setting current revision", err)
	}
	return nil
}

func (s *SQLiteDatabase) CurrentRevision() (*model.Revision, error) {
	ctx := context.Background()
	id, err := s.queries.GetCurrentRevisionID(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("reading current revision", err)
	}
	if id.Valid {
		return s.FindRevision(id.String)
	}

	// No pointer yet, or its revision was deleted.
	row, err := s.queries.GetLatestStableRevision(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("finding latest stable revision", err)
	}
	return toRevision(row), nil
}

func (s *SQLiteDatabase) SetCurrentRevision(id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.queries.SetCurrentRevision(context.Background(), nullString(id)); err != nil {
		return storageErr("setting current revision", err)
	}
	return nil
}

func (s *SQLiteDatabase) RevisionStats(id string) (*ftl.RevisionStats, error) {
	row, err := s.queries.GetRevisionStats(context.Background(), id)
	if err != nil {
		return nil, storageErr("counting revision rows", err)
	}
	return &ftl.RevisionStats{
		Files:   row.Files,
		Pages:   row.Pages,
		Routes:  row.Routes,
		Outputs: row.Outputs,
	}, nil
}

// Revision metadata

func (s *SQLiteDatabase) FindPage(id string) (*model.Page, error) {
	ctx := context.Background()
	row, err := s.queries.GetPageByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("finding page", err)
	}
	attrs, err := s.queries.GetPageAttributesByID(ctx, id)
	if err != nil {
		return nil, storageErr("finding page attributes", err)
	}
	return toPage(row, attrs)
}

func (s *SQLiteDatabase) FindPagesForRevision(revision string) ([]*model.Page, error) {
	ctx := context.Background()
	rows, err := s.queries.GetPagesByRevision(ctx, revision)
	if err != nil {
		return nil, storageErr("finding revision pages", err)
	}
	attrRows, err := s.queries.GetPageAttributesByRevision(ctx, revision)
	if err != nil {
		return nil, storageErr("finding revision page attributes", err)
	}
	attrs := make(map[string][]sqlc.PageAttribute)
	for _, a := range attrRows {
		attrs[a.ID] = append(attrs[a.ID], a)
	}

	pages := make([]*model.Page, 0, len(rows))
	for _, row := range rows {
		p, err := toPage(row, attrs[row.ID])
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (s *SQLiteDatabase) SaveRevisionMetadata(revision string, meta *ftl.RevisionMetadata) error {
	// Encoding happens outside the writer lock.
	extras := make([][]byte, len(meta.Pages))
	for i, p := range meta.Pages {
		data, err := encodeExtra(p.Extra)
		if err != nil {
			return err
		}
		extras[i] = data
	}

	return s.write("saving revision metadata", func(ctx context.Context, qtx *sqlc.Queries) error {
		for i, p := range meta.Pages {
			n, err := qtx.InsertPage(ctx, sqlc.InsertPageParams{
				ID:          p.ID,
				Path:        p.Path,
				Route:       p.Route,
				BodyOffset:  p.BodyOffset,
				Title:       p.Title,
				Date:        nullTime(p.Date),
				PublishDate: nullTime(p.PublishDate),
				ExpireDate:  nullTime(p.ExpireDate),
				Description: p.Description,
				Summary:     p.Summary,
				Template:    p.Template,
				Draft:       p.Draft,
				Dynamic:     p.Dynamic,
				PaginateBy:  p.PaginateBy,
				Extra:       extras[i],
			})
			if err != nil {
				return storageErr("inserting page", err)
			}
			if n == 0 {
				// Parsed concurrently by an earlier build; attributes exist too.
				continue
			}
			for _, a := range p.Attributes() {
				if err := qtx.InsertPageAttribute(ctx, sqlc.InsertPageAttributeParams{
					ID:    a.ID,
					Kind:  string(a.Kind),
					Value: a.Value,
				}); err != nil {
					return storageErr("inserting page attribute", err)
				}
			}
		}

		for _, t := range meta.Templates {
			if err := qtx.InsertTemplate(ctx, sqlc.InsertTemplateParams{
				Revision: revision,
				Name:     t.Name,
				ID:       t.ID,
			}); err != nil {
				return storageErr("inserting template", err)
			}
		}

		for _, r := range meta.Routes {
			if err := qtx.InsertRoute(ctx, sqlc.InsertRouteParams{
				Revision:    revision,
				ID:          r.ID,
				Route:       r.Route,
				ParentRoute: r.ParentRoute,
				Kind:        int64(r.Kind),
				PageIndex:   r.PageIndex,
			}); err != nil {
				return storageErr("inserting route "+r.Route, err)
			}
		}

		for _, d := range meta.Dependencies {
			if err := qtx.InsertDependency(ctx, sqlc.InsertDependencyParams{
				Revision: revision,
				Parent:   d.Parent,
				Child:    d.Child,
				Relation: int64(d.Relation),
			}); err != nil {
				return storageErr("inserting dependency", err)
			}
		}
		return nil
	})
}

func (s *SQLiteDatabase) FindRoutesForRevision(revision string) ([]*model.Route, error) {
	rows, err := s.queries.GetRoutesByRevision(context.Background(), revision)
	if err != nil {
		return nil, storageErr("finding revision routes", err)
	}
	return toRoutes(rows), nil
}

func (s *SQLiteDatabase) FindRoute(revision, route string) (*model.Route, error) {
	row, err := s.queries.GetRouteByRevisionAndRoute(context.Background(), sqlc.GetRouteByRevisionAndRouteParams{
		Revision: revision,
		Route:    route,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("finding route", err)
	}
	return toRoute(row), nil
}

func (s *SQLiteDatabase) FindRoutesForInput(revision, id string) ([]*model.Route, error) {
	rows, err := s.queries.GetRoutesByRevisionAndID(context.Background(), sqlc.GetRoutesByRevisionAndIDParams{
		Revision: revision,
		ID:       id,
	})
	if err != nil {
		return nil, storageErr("finding routes for input", err)
	}
	return toRoutes(rows), nil
}

func (s *SQLiteDatabase) FindTemplatesForRevision(revision string) ([]*model.Template, error) {
	rows, err := s.queries.GetTemplatesByRevision(context.Background(), revision)
	if err != nil {
		return nil, storageErr("finding revision templates", err)
	}
	templates := make([]*model.Template, len(rows))
	for i, row := range rows {
		templates[i] = &model.Template{Revision: row.Revision, Name: row.Name, ID: row.ID}
	}
	return templates, nil
}

func (s *SQLiteDatabase) FindDependenciesForRevision(revision string) ([]*model.Dependency, error) {
	rows, err := s.queries.GetDependenciesByRevision(context.Background(), revision)
	if err != nil {
		return nil, storageErr("finding revision dependencies", err)
	}
	deps := make([]*model.Dependency, len(rows))
	for i, row := range rows {
		deps[i] = &model.Dependency{
			Revision: row.Revision,
			Parent:   row.Parent,
			Child:    row.Child,
			Relation: model.Relation(row.Relation),
		}
	}
	return deps, nil
}

// Outputs

func (s *SQLiteDatabase) CarryForwardOutputs(from, to string, ids []string) (int64, error) {
	var total int64
	err := s.write("carrying outputs forward", func(ctx context.Context, qtx *sqlc.Queries) error {
		for _, id := range ids {
			n, err := qtx.CopyOutputsForID(ctx, sqlc.CopyOutputsForIDParams{
				ToRevision:   to,
				FromRevision: from,
				ID:           id,
			})
			if err != nil {
				return storageErr("copying outputs", err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *SQLiteDatabase) CommitOutput(out *model.Output, at time.Time) (bool, error) {
	content := compress(out.Content)

	var stabilized bool
	err := s.write("committing output", func(ctx context.Context, qtx *sqlc.Queries) error {
		rev, err := qtx.GetRevisionByID(ctx, out.Revision)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("revision %s: %w", out.Revision, ftl.ErrNotFound)
			}
			return storageErr("finding revision", err)
		}
		if rev.Stable {
			return fmt.Errorf("revision %s: %w", out.Revision, ftl.ErrImmutable)
		}

		if err := qtx.UpsertOutput(ctx, sqlc.UpsertOutputParams{
			Revision: out.Revision,
			Route:    out.Route,
			ID:       out.ID,
			Content:  content,
			Size:     int64(len(out.Content)),
		}); err != nil {
			return storageErr("writing output", err)
		}

		err = stabilize(ctx, qtx, out.Revision, at)
		switch {
		case err == nil:
			stabilized = true
			return nil
		case errors.Is(err, ftl.ErrPagesPending):
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return false, err
	}
	return stabilized, nil
}

func (s *SQLiteDatabase) FindOutput(revision, route string) (*model.Output, error) {
	row, err := s.queries.GetOutputByRevisionAndRoute(context.Background(), sqlc.GetOutputByRevisionAndRouteParams{
		Revision: revision,
		Route:    route,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("finding output", err)
	}
	return toOutput(row)
}

func (s *SQLiteDatabase) FindOutputsForRevision(revision string) ([]*model.Output, error) {
	rows, err := s.queries.GetOutputsByRevision(context.Background(), revision)
	if err != nil {
		return nil, storageErr("finding revision outputs", err)
	}
	outputs := make([]*model.Output, 0, len(rows))
	for _, row := range rows {
		out, err := toOutput(row)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (s *SQLiteDatabase) FindPendingRoutes(revision string) ([]*model.Route, error) {
	rows, err := s.queries.GetPendingRoutes(context.Background(), revision)
	if err != nil {
		return nil, storageErr("finding pending routes", err)
	}
	return toRoutes(rows), nil
}

// Garbage collection

func (s *SQLiteDatabase) Collect() (*ftl.CollectResult, error) {
	res := &ftl.CollectResult{}
	err := s.write("collecting garbage", func(ctx context.Context, qtx *sqlc.Queries) error {
		// The latest stable revision and the one served after a rollback
		// both survive.
		var keep sqlc.DeleteCollectableRevisionsParams
		latest, err := qtx.GetLatestStableRevision(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return storageErr("finding latest stable revision", err)
		}
		keep.Latest = latest.ID
		current, err := qtx.GetCurrentRevisionID(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return storageErr("reading current revision", err)
		}
		keep.Current = current.String

		res.Revisions, err = qtx.DeleteCollectableRevisions(ctx, keep)
		if err != nil {
			return storageErr("deleting revisions", err)
		}

		rows, err := qtx.DeleteUnreferencedInputFiles(ctx)
		if err != nil {
			return storageErr("deleting input files", err)
		}
		res.InputFiles = int64(len(rows))

		seen := make(map[string]bool)
		for _, row := range rows {
			if row.Inline || seen[row.Hash] {
				continue
			}
			seen[row.Hash] = true
			refs, err := qtx.CountBlobReferences(ctx, row.Hash)
			if err != nil {
				return storageErr("counting blob references", err)
			}
			if refs == 0 {
				res.OrphanBlobs = append(res.OrphanBlobs, row.Hash)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Compact checkpoints the WAL and rebuilds the database file.
func (s *SQLiteDatabase) Compact() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return storageErr("checkpointing", err)
	}
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return storageErr("vacuuming", err)
	}
	return nil
}

func (s *SQLiteDatabase) Clear() error {
	return s.write("clearing database", func(ctx context.Context, qtx *sqlc.Queries) error {
		if err := qtx.DeleteAllRevisions(ctx); err != nil {
			return storageErr("deleting revisions", err)
		}
		if err := qtx.DeleteAllInputFiles(ctx); err != nil {
			return storageErr("deleting input files", err)
		}
		if err := qtx.DeleteAllBuilds(ctx); err != nil {
			return storageErr("deleting builds", err)
		}
		return nil
	})
}

// Build history

func (s *SQLiteDatabase) CreateBuild(b *model.Build) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.queries.InsertBuild(context.Background(), sqlc.InsertBuildParams{
		ID:        b.ID,
		StartedAt: b.StartedAt.UTC(),
		Status:    b.Status,
	}); err != nil {
		return storageErr("creating build", err)
	}
	return nil
}

func (s *SQLiteDatabase) FinishBuild(b *model.Build) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.queries.UpdateBuildFinished(context.Background(), sqlc.UpdateBuildFinishedParams{
		FinishedAt: nullTime(b.FinishedAt),
		Status:     b.Status,
		Revision:   b.Revision,
		Rendered:   b.Rendered,
		Reused:     b.Reused,
		Warnings:   b.Warnings,
		ID:         b.ID,
	}); err != nil {
		return storageErr("finishing build", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListBuilds(limit int) ([]*model.Build, error) {
	rows, err := s.queries.GetBuilds(context.Background(), int64(limit))
	if err != nil {
		return nil, storageErr("listing builds", err)
	}
	builds := make([]*model.Build, len(rows))
	for i, row := range rows {
		builds[i] = toBuild(row)
	}
	return builds, nil
}

// Maintenance

func (s *SQLiteDatabase) Stats() (*ftl.DatabaseStats, error) {
	ctx := context.Background()
	row, err := s.queries.GetDatabaseStats(ctx)
	if err != nil {
		return nil, storageErr("reading database stats", err)
	}
	var size int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()",
	).Scan(&size); err != nil {
		return nil, storageErr("reading database size", err)
	}
	return &ftl.DatabaseStats{
		InputFiles:  row.InputFiles,
		Revisions:   row.Revisions,
		Pinned:      row.Pinned,
		Pages:       row.Pages,
		Routes:      row.Routes,
		Outputs:     row.Outputs,
		OutputBytes: row.OutputBytes,
		SizeBytes:   size,
	}, nil
}

func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate applies pending migrations.
func (s *SQLiteDatabase) Migrate() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return storageErr("backing up database", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
