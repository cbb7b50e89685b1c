package blocks

import (
	"encoding/json"
	"strings"
)

// PerDevice holds the desktop and mobile variants of a value. Both are
// currently identical.
type PerDevice[T any] struct {
	Desktop T `json:"desktop"`
	Mobile  T `json:"mobile"`
}

func same[T any](v T) PerDevice[T] {
	return PerDevice[T]{Desktop: v, Mobile: v}
}

type Rect struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Image struct {
	File       string     `json:"file"`
	Dimensions Dimensions `json:"dimensions"`
}

// Block is the page section the root node becomes.
type Block struct {
	ID      string            `json:"id"`
	IsPopup bool              `json:"isPopup"`
	Image   *PerDevice[Image] `json:"image,omitempty"`
	Element BlockElement      `json:"element"`
}

type BlockElement struct {
	BoundingClientRect PerDevice[Rect]              `json:"boundingClientRect"`
	Order              int                          `json:"order"`
	Styles             PerDevice[map[string]string] `json:"styles"`
	Classes            []string                     `json:"classes"`
}

// Element is one positioned box inside the block. Descendants of the root
// are flattened into a list of elements; nesting is not preserved.
type Element struct {
	ID                 string                       `json:"id"`
	BlockID            string                       `json:"blockId"`
	BoundingClientRect PerDevice[Rect]              `json:"boundingClientRect"`
	Content            PerDevice[Fragment]          `json:"content"`
	CSS                PerDevice[Fragment]          `json:"css"`
	Classes            string                       `json:"classes"`
	Styles             PerDevice[map[string]string] `json:"styles"`
	Image              *Image                       `json:"image,omitempty"`
}

// Page is the block mode artifact before it is wrapped for delivery.
type Page struct {
	Block    *Block     `json:"block"`
	Elements []*Element `json:"elements"`

	pending []*PendingAsset
}

// Pending returns the assets still waiting for resolution, in the order
// they were created.
func (p *Page) Pending() []*PendingAsset {
	return p.pending
}

// Element returns the element with the given id, or nil.
func (p *Page) Element(id string) *Element {
	for _, e := range p.Elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// PendingAsset is a gradient background waiting to be rasterized. Until it
// is resolved it renders as "none".
type PendingAsset struct {
	ID        string  `json:"id"`
	ElementID string  `json:"elementId"`
	Gradient  string  `json:"gradient"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`

	value string
}

// Resolve records the rendered image. An empty URL resolves to "none".
func (a *PendingAsset) Resolve(url string) {
	if url == "" {
		a.value = "none"
		return
	}
	a.value = "url(" + url + ")"
}

func (a *PendingAsset) Resolved() bool {
	return a.value != ""
}

// Value is the CSS value the asset currently stands for.
func (a *PendingAsset) Value() string {
	if a.value == "" {
		return "none"
	}
	return a.value
}

// Fragment is markup or CSS text that may reference pending assets. It
// marshals to a plain JSON string and decodes back as literal text.
type Fragment []fragmentPart

type fragmentPart struct {
	text  string
	asset *PendingAsset
}

// fragment joins strings and *PendingAsset references.
func fragment(parts ...any) Fragment {
	f := make(Fragment, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			f = append(f, fragmentPart{text: v})
		case *PendingAsset:
			f = append(f, fragmentPart{asset: v})
		}
	}
	return f
}

func (f Fragment) String() string {
	var b strings.Builder
	for _, p := range f {
		if p.asset != nil {
			b.WriteString(p.asset.Value())
			continue
		}
		b.WriteString(p.text)
	}
	return b.String()
}

func (f Fragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *Fragment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = fragment(s)
	return nil
}
