package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/contentsite/content"
)

// Blocks renders a page layout. Block types without a renderer are skipped.
func Blocks(blocks []content.Block) templ.Component {
	return component(func(h *htmlWriter) {
		for _, b := range blocks {
			switch b.Type {
			case "content":
				h.raw(`<section class="block block-content">`)
				h.render(Markdown(stringField(b.Fields, "richText")))
				h.raw(`</section>`)
			case "cta":
				h.raw(`<section class="block block-cta">`)
				h.render(Markdown(stringField(b.Fields, "richText")))
				for _, link := range mapsField(b.Fields, "links") {
					h.raw(`<a class="button"`)
					h.href(stringField(link, "url"))
					h.raw(`>`)
					h.text(stringField(link, "label"))
					h.raw(`</a>`)
				}
				h.raw(`</section>`)
			case "mediaBlock":
				media, _ := b.Fields["media"].(map[string]any)
				url := stringField(media, "url")
				if url == "" {
					continue
				}
				h.raw(`<figure class="block block-media"><img loading="lazy"`)
				h.attr("src", url)
				h.attr("alt", stringField(media, "alt"))
				h.raw(`>`)
				if caption := stringField(b.Fields, "caption"); caption != "" {
					h.raw(`<figcaption>`)
					h.text(caption)
					h.raw(`</figcaption>`)
				}
				h.raw(`</figure>`)
			}
		}
	})
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func mapsField(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if mv, ok := v.(map[string]any); ok {
			out = append(out, mv)
		}
	}
	return out
}
