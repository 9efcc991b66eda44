package content

// Global is a singleton configuration document such as the header or footer.
// Version increases on every edit.
type Global struct {
	Key      string    `json:"key" yaml:"key"`
	Version  int       `json:"version" yaml:"version"`
	NavItems []NavItem `json:"navItems,omitempty" yaml:"navItems,omitempty"`
}

// NavItem is one navigation entry.
type NavItem struct {
	Link Link `json:"link" yaml:"link"`
}

// LinkType selects between a document reference and a free URL.
type LinkType string

const (
	LinkReference LinkType = "reference"
	LinkCustom    LinkType = "custom"
)

// Link points at a document or an arbitrary URL.
type Link struct {
	Type      LinkType `json:"type" yaml:"type"`
	Reference *DocRef  `json:"reference,omitempty" yaml:"reference,omitempty"`
	URL       string   `json:"url,omitempty" yaml:"url,omitempty"`
	Label     string   `json:"label" yaml:"label"`
	NewTab    bool     `json:"newTab,omitempty" yaml:"newTab,omitempty"`
}

// Href returns the link target. Unresolved references (depth 0) yield "".
func (l Link) Href() string {
	if l.Type == LinkReference {
		if l.Reference == nil || (l.Reference.Slug == "" && l.Reference.Collection != Pages) {
			return ""
		}
		return l.Reference.Path()
	}
	return l.URL
}

// GlobalTag is the invalidation tag of a global key.
func GlobalTag(key string) string {
	return "global_" + key
}

// CollectionTag is the invalidation tag of a collection.
func CollectionTag(c Collection) string {
	return string(c)
}

// RedirectsTag is the invalidation tag of the redirect table.
const RedirectsTag = "redirects"
