package forms

import "github.com/angelmondragon/content-console/internal/assets"

// Pair is one platform/link entry of a pair list.
type Pair struct {
	Platform string `json:"platform"`
	Link     string `json:"link"`
}

// Draft is the editable state of a form. An empty ID means the draft creates a record.
type Draft struct {
	ID     string
	Text   map[string]string
	Assets []assets.Reference
	Pairs  []Pair
}

// IsEdit reports whether the draft updates an existing record.
func (d Draft) IsEdit() bool {
	return d.ID != ""
}

// clone deep-copies the draft so a submission works on a stable snapshot.
func (d Draft) clone() Draft {
	out := Draft{ID: d.ID, Text: make(map[string]string, len(d.Text))}
	for k, v := range d.Text {
		out.Text[k] = v
	}
	if d.Assets != nil {
		out.Assets = append([]assets.Reference(nil), d.Assets...)
	}
	if d.Pairs != nil {
		out.Pairs = append([]Pair(nil), d.Pairs...)
	}
	return out
}

// URL returns the URL of the first asset slot, or "" for an empty slot list.
func (d Draft) URL() string {
	if len(d.Assets) == 0 {
		return ""
	}
	return d.Assets[0].URL()
}

// URLs returns every asset slot URL in order.
func (d Draft) URLs() []string {
	return assets.URLs(d.Assets)
}
