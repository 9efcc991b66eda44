package content

// HomeStatic is served for pages/home while the store holds no such page, for
// example right after the first deploy. It is never persisted.
var HomeStatic = Document{
	ID:         "home-static",
	Collection: Pages,
	Slug:       HomeSlug,
	Title:      "Home",
	Status:     StatusPublished,
	Hero: Hero{
		Type: "lowImpact",
		RichText: "# Welcome\n\n" +
			"Nothing has been published yet. Import a content bundle with " +
			"`contentsite import` and this page will be replaced by the stored home page.",
	},
	Meta: Meta{
		Title:       "Home",
		Description: "A content-managed publishing site.",
	},
}
