package content

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Bundle is a portable set of content: the documents, globals and redirects
// of a site, as written by hand or exported from another instance.
type Bundle struct {
	Documents []Document `yaml:"documents"`
	Globals   []Global   `yaml:"globals"`
	Redirects []Redirect `yaml:"redirects"`
}

// LoadBundle reads a YAML bundle from path.
func LoadBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("content: read bundle: %w", err)
	}
	return ParseBundle(data)
}

// ParseBundle decodes and checks a YAML bundle. Every document needs a known
// collection and a slug; every global a key. Documents without an ID get
// DocumentID, so importing the same bundle twice updates in place.
func ParseBundle(data []byte) (Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("content: parse bundle: %w", err)
	}
	for i, d := range b.Documents {
		switch d.Collection {
		case Pages, Posts:
		default:
			return Bundle{}, fmt.Errorf("content: bundle document %d: unknown collection %q", i, d.Collection)
		}
		if d.Slug == "" {
			return Bundle{}, fmt.Errorf("content: bundle document %d: missing slug", i)
		}
		if d.ID == "" {
			b.Documents[i].ID = DocumentID(d.Collection, d.Slug)
		}
	}
	for i, g := range b.Globals {
		if g.Key == "" {
			return Bundle{}, fmt.Errorf("content: bundle global %d: missing key", i)
		}
	}
	for i, r := range b.Redirects {
		if r.From == "" {
			return Bundle{}, fmt.Errorf("content: bundle redirect %d: missing from", i)
		}
	}
	return b, nil
}

// DocumentID derives a stable ID from a collection and slug.
func DocumentID(c Collection, slug string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(string(c)+"/"+slug)).String()
}

// Tags returns the invalidation tags touched by importing b.
func (b Bundle) Tags() []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	for _, d := range b.Documents {
		add(CollectionTag(d.Collection))
	}
	for _, g := range b.Globals {
		add(GlobalTag(g.Key))
	}
	if len(b.Redirects) > 0 {
		add(RedirectsTag)
	}
	return tags
}
