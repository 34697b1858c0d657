package compose

import (
	"mime"
	"net/url"
	"path"
	"strings"
)

// ItemType tags a content item.
type ItemType string

const (
	ItemText  ItemType = "text"
	ItemImage ItemType = "image"
)

// Item is a single entry of a ContentList. Text items carry Text; image items
// carry Ref and MIMEType.
type Item struct {
	Type     ItemType `json:"type"`
	Text     string   `json:"text,omitempty"`
	Ref      string   `json:"ref,omitempty"`
	MIMEType string   `json:"mime_type,omitempty"`
}

// ContentList is the ordered output of a composition. It always holds exactly
// one text item.
type ContentList []Item

func TextItem(text string) Item { return Item{Type: ItemText, Text: text} }

func ImageItem(ref string) Item {
	return Item{Type: ItemImage, Ref: ref, MIMEType: ImageMIME(ref)}
}

// Text returns the text item's value.
func (c ContentList) Text() string {
	for _, it := range c {
		if it.Type == ItemText {
			return it.Text
		}
	}
	return ""
}

// Image returns the image item, if any.
func (c ContentList) Image() (Item, bool) {
	for _, it := range c {
		if it.Type == ItemImage {
			return it, true
		}
	}
	return Item{}, false
}

// IsURL reports whether ref is an absolute http(s) URL rather than a file
// identifier.
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ImageMIME guesses the media type from the reference's extension.
func ImageMIME(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}
	if mt := mime.TypeByExtension(strings.ToLower(path.Ext(p))); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return "image/png"
}
