package database

import (
	"database/sql"
	"time"

	"ftl-go/internal/database/sqlc"
	"ftl-go/internal/model"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}

func toInputFile(row sqlc.InputFile) *model.InputFile {
	return &model.InputFile{
		ID:        row.ID,
		Path:      row.Path,
		Hash:      row.Hash,
		Extension: row.Extension,
		Contents:  row.Contents.String,
		Inline:    row.Inline,
		Size:      row.Size,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func toInputFiles(rows []sqlc.InputFile) []*model.InputFile {
	files := make([]*model.InputFile, len(rows))
	for i, row := range rows {
		files[i] = toInputFile(row)
	}
	return files
}

func toRevision(row sqlc.Revision) *model.Revision {
	return &model.Revision{
		ID:           row.ID,
		Name:         row.Name.String,
		CreatedAt:    row.CreatedAt.UTC(),
		StabilizedAt: timePtr(row.StabilizedAt),
		Pinned:       row.Pinned,
		Stable:       row.Stable,
	}
}

func toRevisions(rows []sqlc.Revision) []*model.Revision {
	revs := make([]*model.Revision, len(rows))
	for i, row := range rows {
		revs[i] = toRevision(row)
	}
	return revs
}

func toPage(row sqlc.Page, attrs []sqlc.PageAttribute) (*model.Page, error) {
	extra, err := decodeExtra(row.Extra)
	if err != nil {
		return nil, err
	}
	p := &model.Page{
		ID:          row.ID,
		Path:        row.Path,
		Route:       row.Route,
		BodyOffset:  row.BodyOffset,
		Title:       row.Title,
		Date:        timePtr(row.Date),
		PublishDate: timePtr(row.PublishDate),
		ExpireDate:  timePtr(row.ExpireDate),
		Description: row.Description,
		Summary:     row.Summary,
		Template:    row.Template,
		Draft:       row.Draft,
		Dynamic:     row.Dynamic,
		PaginateBy:  row.PaginateBy,
		Extra:       extra,
	}
	for _, a := range attrs {
		p.SetAttribute(model.AttributeKind(a.Kind), a.Value)
	}
	return p, nil
}

func toRoute(row sqlc.Route) *model.Route {
	return &model.Route{
		Revision:    row.Revision,
		ID:          row.ID,
		Route:       row.Route,
		ParentRoute: row.ParentRoute,
		Kind:        model.RouteKind(row.Kind),
		PageIndex:   row.PageIndex,
	}
}

func toRoutes(rows []sqlc.Route) []*model.Route {
	routes := make([]*model.Route, len(rows))
	for i, row := range rows {
		routes[i] = toRoute(row)
	}
	return routes
}

func toOutput(row sqlc.Output) (*model.Output, error) {
	content, err := decompress(row.Content)
	if err != nil {
		return nil, err
	}
	return &model.Output{
		Revision: row.Revision,
		Route:    row.Route,
		ID:       row.ID,
		Content:  content,
		Size:     row.Size,
	}, nil
}

func toBuild(row sqlc.Build) *model.Build {
	return &model.Build{
		ID:         row.ID,
		Revision:   row.Revision,
		StartedAt:  row.StartedAt.UTC(),
		FinishedAt: timePtr(row.FinishedAt),
		Status:     row.Status,
		Rendered:   row.Rendered,
		Reused:     row.Reused,
		Warnings:   row.Warnings,
	}
}
