package model

import "time"

// InputFile is a single ingested source file.
// The ID is derived from the path and the content hash, so the same bytes at a
// different path are a different input.
type InputFile struct {
	ID        string // H(path, hash)
	Path      string // slash separated, relative to the source root
	Hash      string // H(content)
	Extension string
	Contents  string // only set when Inline
	Inline    bool
	Size      int64
	CreatedAt time.Time
}

// Revision is a content-identified snapshot of a full input set.
type Revision struct {
	ID           string // H(sorted member ids)
	Name         string // optional, unique
	CreatedAt    time.Time
	StabilizedAt *time.Time
	Pinned       bool
	Stable       bool
}

// Page holds the parsed frontmatter of a content document.
// One-to-one with the InputFile it was parsed from.
type Page struct {
	ID          string // InputFile ID
	Path        string
	Route       string // route/slug override, empty when derived from the path
	BodyOffset  int64
	Title       string
	Date        *time.Time
	PublishDate *time.Time
	ExpireDate  *time.Time
	Description string
	Summary     string
	Template    string
	Draft       bool
	Dynamic     bool
	PaginateBy  int64
	Extra       map[string]any

	Tags         []string
	Aliases      []string
	Collections  []string
	Dependencies []string
}

// AttributeKind names a multi-valued page attribute.
type AttributeKind string

const (
	AttributeTag        AttributeKind = "tag"
	AttributeAlias      AttributeKind = "alias"
	AttributeCollection AttributeKind = "collection"
	AttributeDependency AttributeKind = "dependency"
)

// PageAttribute is one value of a multi-valued page attribute.
type PageAttribute struct {
	ID    string // Page ID
	Kind  AttributeKind
	Value string
}

// Attributes flattens the multi-valued fields of p into attribute rows.
func (p *Page) Attributes() []PageAttribute {
	var attrs []PageAttribute
	add := func(kind AttributeKind, values []string) {
		for _, v := range values {
			attrs = append(attrs, PageAttribute{ID: p.ID, Kind: kind, Value: v})
		}
	}
	add(AttributeTag, p.Tags)
	add(AttributeAlias, p.Aliases)
	add(AttributeCollection, p.Collections)
	add(AttributeDependency, p.Dependencies)
	return attrs
}

// SetAttribute appends a single attribute value to the matching field of p.
func (p *Page) SetAttribute(kind AttributeKind, value string) {
	switch kind {
	case AttributeTag:
		p.Tags = append(p.Tags, value)
	case AttributeAlias:
		p.Aliases = append(p.Aliases, value)
	case AttributeCollection:
		p.Collections = append(p.Collections, value)
	case AttributeDependency:
		p.Dependencies = append(p.Dependencies, value)
	}
}

// RouteKind identifies what a route serves.
type RouteKind int64

const (
	RouteAsset RouteKind = 1
	RoutePage  RouteKind = 3
	RouteAlias RouteKind = 5
)

func (k RouteKind) String() string {
	switch k {
	case RouteAsset:
		return "asset"
	case RoutePage:
		return "page"
	case RouteAlias:
		return "alias"
	default:
		return "unknown"
	}
}

// Route maps an input to a servable path within one revision.
type Route struct {
	Revision    string
	ID          string // InputFile ID
	Route       string
	ParentRoute string // empty when the route has no parent
	Kind        RouteKind
	PageIndex   int64 // 1-based pagination index, 0 when not paginated
}

// Template maps a template name to the InputFile holding it.
type Template struct {
	Revision string
	Name     string
	ID       string
}

// Relation describes why one input depends on another.
type Relation int64

const (
	RelationInterTemplate Relation = 1
	RelationPageAsset     Relation = 2
	RelationPageTemplate  Relation = 3
	RelationPageSection   Relation = 4
)

func (r Relation) String() string {
	switch r {
	case RelationInterTemplate:
		return "intertemplate"
	case RelationPageAsset:
		return "page_asset"
	case RelationPageTemplate:
		return "page_template"
	case RelationPageSection:
		return "page_section"
	default:
		return "unknown"
	}
}

// Dependency is a directed edge: Parent depends on Child.
type Dependency struct {
	Revision string
	Parent   string
	Child    string
	Relation Relation
}

// Output is a rendered artifact for one page route in one revision.
type Output struct {
	Revision string
	Route    string
	ID       string // InputFile ID of the page
	Content  []byte
	Size     int64
}

// Build records a single build run.
type Build struct {
	ID         string // UUID
	Revision   string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string // "running", "success" or "error"
	Rendered   int64
	Reused     bool
	Warnings   int64
}
