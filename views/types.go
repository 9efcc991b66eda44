package views

import "github.com/eringen/contentsite/content"

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME
	URL         string // SITE_URL
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
}

// NavLink is a rendered navigation entry.
type NavLink struct {
	Label  string
	Href   string
	NewTab bool
}

// Chrome is the frame every page renders inside: head metadata, header and
// footer navigation, and the preview banner.
type Chrome struct {
	Site   SiteConfig
	Meta   content.PageMeta
	Header []NavLink
	Footer []NavLink

	// Draft shows the preview banner; CSRF signs its exit form.
	Draft bool
	CSRF  string
	// LiveURL is the websocket endpoint that asks previews to reload.
	LiveURL string
}

// PageData renders a page. Recent is only set on the home page.
type PageData struct {
	Chrome
	Page   content.Document
	Recent []content.Document
}

// PostData renders a single post.
type PostData struct {
	Chrome
	Post content.Document
}

// ArchiveData renders one page of the post archive.
type ArchiveData struct {
	Chrome
	Posts      []content.Document
	Page       int
	TotalPages int
	Range      content.Range
}

// SearchData renders search results.
type SearchData struct {
	Chrome
	Query   string
	Results []content.Document
}
