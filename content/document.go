// Package content resolves requests for stored documents into what the site renders.
//
// It owns the policy layered over an opaque document store: slug resolution with
// draft visibility, the sentinel home page, redirect fallback, static slug
// enumeration, cached global singletons, search filters and pagination. The store
// itself is consumed through the Finder, GlobalFinder and RedirectFinder contracts.
package content

import "time"

// Collection names a document collection in the store.
type Collection string

const (
	Pages  Collection = "pages"
	Posts  Collection = "posts"
	Search Collection = "search"
)

// HomeSlug is the slug served at the site root.
const HomeSlug = "home"

// Status is the publish state of a document revision.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// Document is a stored content record (page, post or search index entry).
// The core only ever reads documents.
type Document struct {
	ID          string     `json:"id" yaml:"id"`
	Collection  Collection `json:"collection" yaml:"collection"`
	Slug        string     `json:"slug" yaml:"slug"`
	Title       string     `json:"title" yaml:"title"`
	Status      Status     `json:"status" yaml:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`

	Hero       Hero     `json:"hero" yaml:"hero"`
	HeroImage  *Image   `json:"heroImage,omitempty" yaml:"heroImage,omitempty"`
	Meta       Meta     `json:"meta" yaml:"meta"`
	Content    string   `json:"content,omitempty" yaml:"content,omitempty"`
	Layout     []Block  `json:"layout,omitempty" yaml:"layout,omitempty"`
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Authors    []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Related    []DocRef `json:"related,omitempty" yaml:"related,omitempty"`

	// Doc points a search index entry at the document it was derived from.
	Doc *DocRef `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Hero is the header composition of a page or post.
type Hero struct {
	Type     string `json:"type,omitempty" yaml:"type,omitempty"` // highImpact, mediumImpact, lowImpact
	RichText string `json:"richText,omitempty" yaml:"richText,omitempty"`
	Media    *Image `json:"media,omitempty" yaml:"media,omitempty"`
}

// Block is one entry of a page layout. Fields is opaque to the core.
type Block struct {
	Type   string         `json:"blockType" yaml:"blockType"`
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Meta carries SEO fields.
type Meta struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Image       *Image `json:"image,omitempty" yaml:"image,omitempty"`
}

// DocRef references another document. Slug and Title are only populated when
// the reference was resolved with depth >= 1.
type DocRef struct {
	Collection Collection `json:"relationTo" yaml:"relationTo"`
	ID         string     `json:"id" yaml:"id"`
	Slug       string     `json:"slug,omitempty" yaml:"slug,omitempty"`
	Title      string     `json:"title,omitempty" yaml:"title,omitempty"`
}

// Path returns the site path of the referenced document.
func (r DocRef) Path() string {
	return PathFor(r.Collection, r.Slug)
}

// PathFor returns the site path a document of collection c with slug is served at.
func PathFor(c Collection, slug string) string {
	switch {
	case c == Pages && (slug == HomeSlug || slug == ""):
		return "/"
	case c == Pages:
		return "/" + slug
	default:
		return "/" + string(c) + "/" + slug
	}
}

// Path returns the site path the document is served at. Search entries point at
// their source document.
func (d Document) Path() string {
	if d.Collection == Search {
		if d.Doc != nil {
			return PathFor(d.Doc.Collection, d.Slug)
		}
		return PathFor(Posts, d.Slug)
	}
	return PathFor(d.Collection, d.Slug)
}

// Published reports whether the revision is the published one.
func (d Document) Published() bool {
	return d.Status == StatusPublished
}

// Project keeps only the named top-level fields. id, collection and slug always
// survive; an empty selection keeps everything.
func (d Document) Project(fields []string) Document {
	if len(fields) == 0 {
		return d
	}
	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[f] = true
	}
	out := Document{ID: d.ID, Collection: d.Collection, Slug: d.Slug, Status: d.Status, Doc: d.Doc}
	if keep["title"] {
		out.Title = d.Title
	}
	if keep["publishedAt"] {
		out.PublishedAt = d.PublishedAt
	}
	if keep["updatedAt"] {
		out.UpdatedAt = d.UpdatedAt
	}
	if keep["hero"] {
		out.Hero = d.Hero
	}
	if keep["heroImage"] {
		out.HeroImage = d.HeroImage
	}
	if keep["meta"] {
		out.Meta = d.Meta
	}
	if keep["content"] {
		out.Content = d.Content
	}
	if keep["layout"] {
		out.Layout = d.Layout
	}
	if keep["categories"] {
		out.Categories = d.Categories
	}
	if keep["authors"] {
		out.Authors = d.Authors
	}
	if keep["related"] {
		out.Related = d.Related
	}
	return out
}
