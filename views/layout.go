package views

import (
	"github.com/a-h/templ"
)

// Layout wraps body in the document frame: head metadata, header and footer
// navigation and, in draft mode, the preview banner.
func Layout(ch Chrome, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		canonical := buildURL(ch.Site.URL, ch.Meta.Path)
		description := ch.Meta.Description
		if description == "" {
			description = ch.Site.Description
		}
		ogType := ch.Meta.Type
		if ogType == "" {
			ogType = "website"
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(Title(ch.Meta, ch.Site))
		h.raw(`</title>`)
		if description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", description)
			h.raw(`>`)
		}
		h.raw(`<link rel="canonical"`)
		h.attr("href", canonical)
		h.raw(`><meta property="og:title"`)
		h.attr("content", Title(ch.Meta, ch.Site))
		h.raw(`><meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(`><meta property="og:url"`)
		h.attr("content", canonical)
		h.raw(`>`)
		if img := ch.Meta.Image; img != nil {
			h.raw(`<meta property="og:image"`)
			h.attr("content", absURL(ch.Site.URL, img.URL))
			h.raw(`>`)
		}
		if ch.Draft {
			h.raw(`<meta name="robots" content="noindex">`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", ch.Site.Name)
		h.raw(`><link rel="stylesheet" href="/public/site.css">`)
		h.raw(`<script type="application/ld+json">`)
		h.raw(WebsiteJsonLD(ch.Site))
		h.raw(`</script></head><body>`)

		if ch.Draft {
			previewBanner(h, ch)
		}
		siteHeader(h, ch)
		h.raw(`<main id="content">`)
		h.render(body)
		h.raw(`</main>`)
		siteFooter(h, ch)
		h.raw(`</body></html>`)
	})
}

func previewBanner(h *htmlWriter, ch Chrome) {
	h.raw(`<div class="preview-banner" role="status">You are viewing a preview with unpublished changes.`)
	h.raw(`<form method="post" action="/api/exit-preview"><input type="hidden" name="_csrf"`)
	h.attr("value", ch.CSRF)
	h.raw(`><input type="hidden" name="path"`)
	h.attr("value", ch.Meta.Path)
	h.raw(`><button type="submit">Exit preview</button></form></div>`)
	if ch.LiveURL != "" {
		h.raw(`<script src="/public/livepreview.js" defer`)
		h.attr("data-url", ch.LiveURL)
		h.raw(`></script>`)
	}
}

func siteHeader(h *htmlWriter, ch Chrome) {
	h.raw(`<header class="site-header"><a class="logo" href="/">`)
	h.text(ch.Site.Name)
	h.raw(`</a>`)
	navList(h, "Main", ch.Header)
	h.raw(`<form class="search" method="get" action="/search/"><input type="search" name="q" placeholder="Search" aria-label="Search"></form>`)
	h.raw(`</header>`)
}

func siteFooter(h *htmlWriter, ch Chrome) {
	h.raw(`<footer class="site-footer">`)
	navList(h, "Footer", ch.Footer)
	h.raw(`<p>`)
	h.text(ch.Site.Name)
	h.raw(` &middot; <a href="/feed.xml">RSS</a></p></footer>`)
}

func navList(h *htmlWriter, label string, links []NavLink) {
	if len(links) == 0 {
		return
	}
	h.raw(`<nav`)
	h.attr("aria-label", label)
	h.raw(`><ul>`)
	for _, l := range links {
		h.raw(`<li><a`)
		h.href(l.Href)
		if l.NewTab {
			h.raw(` target="_blank" rel="noopener noreferrer"`)
		}
		h.raw(`>`)
		h.text(l.Label)
		h.raw(`</a></li>`)
	}
	h.raw(`</ul></nav>`)
}
