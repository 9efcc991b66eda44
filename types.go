package contentsite

import (
	"github.com/a-h/templ"

	"github.com/eringen/contentsite/views"
)

// ViewFuncs holds the templ components the framework calls when rendering
// pages. Leave a field nil to use the built-in view from package views.
type ViewFuncs struct {
	Page        func(d views.PageData) templ.Component
	Post        func(d views.PostData) templ.Component
	Archive     func(d views.ArchiveData) templ.Component
	Search      func(d views.SearchData) templ.Component
	NotFound    func(ch views.Chrome) templ.Component
	ServerError func(ch views.Chrome) templ.Component
}

// DefaultViews returns the built-in views.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Page:        views.Page,
		Post:        views.Post,
		Archive:     views.Archive,
		Search:      views.Search,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v *ViewFuncs) setDefaults() {
	d := DefaultViews()
	if v.Page == nil {
		v.Page = d.Page
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.Archive == nil {
		v.Archive = d.Archive
	}
	if v.Search == nil {
		v.Search = d.Search
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}
