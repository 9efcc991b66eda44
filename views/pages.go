package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/contentsite/content"
)

// Hero renders the header composition of a document.
func Hero(doc content.Document) templ.Component {
	return component(func(h *htmlWriter) {
		typ := doc.Hero.Type
		if typ == "" {
			typ = "lowImpact"
		}
		h.raw(`<section`)
		h.attr("class", "hero hero-"+typ)
		h.raw(`>`)
		if typ != "lowImpact" {
			if img := doc.Image(content.HeroMedia, content.HeroImage); img != nil {
				image(h, img, doc.Title, false)
			}
		}
		if doc.Hero.RichText != "" {
			h.render(Markdown(doc.Hero.RichText))
		} else {
			h.raw(`<h1>`)
			h.text(doc.Title)
			h.raw(`</h1>`)
		}
		h.raw(`</section>`)
	})
}

// Page renders a page document and, on the home page, the latest posts.
func Page(d PageData) templ.Component {
	return Layout(d.Chrome, component(func(h *htmlWriter) {
		h.raw(`<article class="page">`)
		h.render(Hero(d.Page))
		h.render(Blocks(d.Page.Layout))
		if d.Page.Content != "" {
			h.raw(`<div class="prose">`)
			h.render(Markdown(d.Page.Content))
			h.raw(`</div>`)
		}
		h.raw(`</article>`)
		if len(d.Recent) > 0 {
			h.raw(`<section class="recent"><h2>Recent posts</h2>`)
			cards(h, d.Recent)
			h.raw(`<p><a href="/posts/">All posts</a></p></section>`)
		}
	}))
}

// Post renders a single post with its related posts.
func Post(d PostData) templ.Component {
	return Layout(d.Chrome, component(func(h *htmlWriter) {
		post := d.Post
		h.raw(`<article class="post"><header class="post-header">`)
		categories(h, post.Categories)
		h.raw(`<h1>`)
		h.text(post.Title)
		h.raw(`</h1><p class="byline">`)
		if date := FormatDate(post.PublishedAt); date != "" {
			h.raw(`<time`)
			h.attr("datetime", post.PublishedAt.Format("2006-01-02"))
			h.raw(`>`)
			h.text(date)
			h.raw(`</time>`)
		}
		for i, a := range post.Authors {
			if i == 0 {
				h.raw(` by `)
			} else {
				h.raw(`, `)
			}
			h.text(a)
		}
		h.raw(`</p>`)
		if img := post.Image(content.HeroImageOrder...); img != nil {
			image(h, img, post.Title, false)
		}
		h.raw(`</header><div class="prose">`)
		if post.Hero.RichText != "" {
			h.render(Markdown(post.Hero.RichText))
		}
		h.render(Markdown(post.Content))
		h.raw(`</div>`)
		if len(post.Related) > 0 {
			h.raw(`<aside class="related"><h2>Related posts</h2><ul>`)
			for _, ref := range post.Related {
				h.raw(`<li><a`)
				h.href(ref.Path())
				h.raw(`>`)
				h.text(ref.Title)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul></aside>`)
		}
		h.raw(`<script type="application/ld+json">`)
		h.raw(ArticleJsonLD(d.Site, post))
		h.raw(`</script></article>`)
	}))
}

// Archive renders one page of the post archive.
func Archive(d ArchiveData) templ.Component {
	return Layout(d.Chrome, component(func(h *htmlWriter) {
		h.raw(`<section class="archive"><h1>Posts</h1><p class="page-range">`)
		if d.Range.From == 0 {
			h.raw(`No posts to show.`)
		} else {
			h.text("Showing " + strconv.Itoa(d.Range.From) + " - " + strconv.Itoa(d.Range.To) +
				" of " + strconv.Itoa(d.Range.Total) + " Posts")
		}
		h.raw(`</p>`)
		cards(h, d.Posts)
		pagination(h, d.Page, d.TotalPages)
		h.raw(`</section>`)
	}))
}

// Search renders the search form and its results.
func Search(d SearchData) templ.Component {
	return Layout(d.Chrome, component(func(h *htmlWriter) {
		h.raw(`<section class="search-page"><h1>Search</h1>`)
		h.raw(`<form method="get" action="/search/"><input type="search" name="q" aria-label="Search"`)
		h.attr("value", d.Query)
		h.raw(`><button type="submit">Search</button></form>`)
		if len(d.Results) == 0 {
			h.raw(`<p class="no-results">No results found.</p>`)
		} else {
			cards(h, d.Results)
		}
		h.raw(`</section>`)
	}))
}

// NotFound renders the terminal not-found page.
func NotFound(ch Chrome) templ.Component {
	return Layout(ch, component(func(h *htmlWriter) {
		h.raw(`<section class="error"><h1>404</h1><p>This page could not be found.</p><p><a href="/">Go home</a></p></section>`)
	}))
}

// ServerError renders the generic failure page.
func ServerError(ch Chrome) templ.Component {
	return Layout(ch, component(func(h *htmlWriter) {
		h.raw(`<section class="error"><h1>Something went wrong</h1><p>Please try again in a moment.</p></section>`)
	}))
}

// Card renders a listing card for a post or search entry.
func Card(doc content.Document) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<article class="card">`)
		if img := doc.Image(content.CardImageOrder...); img != nil {
			image(h, img, doc.Title, true)
		}
		categories(h, doc.Categories)
		h.raw(`<h3><a`)
		h.href(doc.Path())
		h.raw(`>`)
		h.text(doc.Title)
		h.raw(`</a></h3>`)
		if doc.Meta.Description != "" {
			h.raw(`<p>`)
			h.text(doc.Meta.Description)
			h.raw(`</p>`)
		}
		h.raw(`</article>`)
	})
}

func cards(h *htmlWriter, docs []content.Document) {
	h.raw(`<div class="cards">`)
	for _, doc := range docs {
		h.render(Card(doc))
	}
	h.raw(`</div>`)
}

func categories(h *htmlWriter, cats []string) {
	if len(cats) == 0 {
		return
	}
	h.raw(`<ul class="categories">`)
	for _, c := range cats {
		h.raw(`<li>`)
		h.text(c)
		h.raw(`</li>`)
	}
	h.raw(`</ul>`)
}

func image(h *htmlWriter, img *content.Image, alt string, lazy bool) {
	h.raw(`<img`)
	h.attr("src", img.URL)
	h.attr("alt", img.AltOr(alt))
	if img.Width > 0 && img.Height > 0 {
		h.attr("width", strconv.Itoa(img.Width))
		h.attr("height", strconv.Itoa(img.Height))
	}
	if lazy {
		h.raw(` loading="lazy"`)
	}
	h.raw(`>`)
}

func pagination(h *htmlWriter, page, total int) {
	if total <= 1 {
		return
	}
	h.raw(`<nav class="pagination" aria-label="Pagination"><ul>`)
	if page > 1 {
		h.raw(`<li><a rel="prev"`)
		h.href(PageHref(page - 1))
		h.raw(`>Previous</a></li>`)
	}
	for p := 1; p <= total; p++ {
		if p == page {
			h.raw(`<li><span aria-current="page">` + strconv.Itoa(p) + `</span></li>`)
			continue
		}
		h.raw(`<li><a`)
		h.href(PageHref(p))
		h.raw(`>` + strconv.Itoa(p) + `</a></li>`)
	}
	if page < total {
		h.raw(`<li><a rel="next"`)
		h.href(PageHref(page + 1))
		h.raw(`>Next</a></li>`)
	}
	h.raw(`</ul></nav>`)
}
