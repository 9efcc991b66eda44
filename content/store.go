package content

import "context"

// Query is a find request against one collection.
type Query struct {
	Collection Collection
	Where      *Where
	// Limit caps the page size; zero means unbounded.
	Limit int
	// Page is 1-based and ignored when Pagination is false.
	Page int
	// Draft asks for the latest draft revision where one exists. Adapters only
	// honour it together with OverrideAccess.
	Draft          bool
	OverrideAccess bool
	// Select projects documents onto the named fields.
	Select []string
	// Sort is a field name, prefixed with '-' for descending order.
	Sort  string
	Depth int
	// Pagination requests TotalDocs/TotalPages. Without it the adapter may skip
	// counting and returns Page 1 of 1.
	Pagination bool
}

// Result is one page of documents plus pagination metadata.
type Result struct {
	Docs       []Document
	Page       int
	TotalPages int
	TotalDocs  int
}

// Finder is the document half of the store contract.
type Finder interface {
	Find(ctx context.Context, q Query) (Result, error)
}

// GlobalFinder loads global singletons. It returns ErrNotFound for unknown keys.
type GlobalFinder interface {
	FindGlobal(ctx context.Context, key string, depth int) (Global, error)
}

// RedirectFinder looks up a redirect by exact source path. It returns
// ErrNotFound when none is configured.
type RedirectFinder interface {
	FindRedirect(ctx context.Context, from string) (Redirect, error)
}

// Store is the full store contract the site depends on.
type Store interface {
	Finder
	GlobalFinder
	RedirectFinder
}

// Visible reports whether a document revision is eligible for q under the
// published/draft visibility rule. hasDraft tells whether the document doc
// belongs to also has a draft revision. Adapters share this rule.
func Visible(doc Document, q Query, hasDraft bool) bool {
	if q.Draft && q.OverrideAccess {
		if doc.Status == StatusDraft {
			return true
		}
		return !hasDraft
	}
	return doc.Status == StatusPublished
}

// TotalPages returns the page count for totalDocs split into pages of limit.
// An empty collection still has one (empty) page.
func TotalPages(totalDocs, limit int) int {
	if totalDocs <= 0 || limit <= 0 {
		return 1
	}
	return (totalDocs + limit - 1) / limit
}
