package content

// Image is a resolved media reference.
type Image struct {
	URL    string `json:"url" yaml:"url"`
	Alt    string `json:"alt,omitempty" yaml:"alt,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// ImageSource is one of the places a document can carry an image.
type ImageSource int

const (
	MetaImage ImageSource = iota // meta.image
	HeroImage                    // heroImage
	HeroMedia                    // hero.media
)

var (
	// CardImageOrder is used for listing and search cards.
	CardImageOrder = []ImageSource{MetaImage, HeroImage}
	// HeroImageOrder is used for the post header.
	HeroImageOrder = []ImageSource{HeroImage, HeroMedia, MetaImage}
)

func (d Document) imageFrom(src ImageSource) *Image {
	var img *Image
	switch src {
	case MetaImage:
		img = d.Meta.Image
	case HeroImage:
		img = d.HeroImage
	case HeroMedia:
		img = d.Hero.Media
	}
	if img == nil || img.URL == "" {
		return nil
	}
	return img
}

// Image walks order and returns the first source carrying a usable image, or nil.
func (d Document) Image(order ...ImageSource) *Image {
	for _, src := range order {
		if img := d.imageFrom(src); img != nil {
			return img
		}
	}
	return nil
}

// AltOr returns the image alt text, or fallback when it is empty.
func (i *Image) AltOr(fallback string) string {
	if i == nil || i.Alt == "" {
		return fallback
	}
	return i.Alt
}
