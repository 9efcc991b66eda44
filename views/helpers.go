package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/contentsite/content"
)

// buildURL joins path segments onto a base URL.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// absURL resolves ref against base unless it is already absolute.
func absURL(base, ref string) string {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return buildURL(base, ref)
}

// NavLinks flattens the navigation of a global into links. Entries whose
// reference did not resolve are dropped.
func NavLinks(g content.Global) []NavLink {
	links := make([]NavLink, 0, len(g.NavItems))
	for _, item := range g.NavItems {
		href := item.Link.Href()
		if href == "" {
			continue
		}
		label := item.Link.Label
		if label == "" && item.Link.Reference != nil {
			label = item.Link.Reference.Title
		}
		links = append(links, NavLink{Label: label, Href: href, NewTab: item.Link.NewTab})
	}
	return links
}

// FormatDate renders a publish date, or "" when unset.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// PageHref returns the archive URL of page.
func PageHref(page int) string {
	if page <= 1 {
		return "/posts/"
	}
	return "/posts/?page=" + strconv.Itoa(page)
}

// Title joins a page title with the site name.
func Title(meta content.PageMeta, site SiteConfig) string {
	if meta.Title == "" || meta.Title == site.Name {
		return site.Name
	}
	return meta.Title + " | " + site.Name
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ArticleJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func ArticleJsonLD(cfg SiteConfig, post content.Document) string {
	postURL := buildURL(cfg.URL, post.Path())
	meta := content.MetaFor(post)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": meta.Description,
		"url":         postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.PublishedAt != nil {
		data["datePublished"] = post.PublishedAt.Format(time.RFC3339)
	}
	if img := meta.Image; img != nil {
		data["image"] = absURL(cfg.URL, img.URL)
	}
	authors := post.Authors
	if len(authors) == 0 && cfg.Author != "" {
		authors = []string{cfg.Author}
	}
	if len(authors) > 0 {
		people := make([]map[string]string, len(authors))
		for i, name := range authors {
			people[i] = map[string]string{"@type": "Person", "name": name}
		}
		data["author"] = people
	}
	if len(post.Categories) > 0 {
		data["keywords"] = strings.Join(post.Categories, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
