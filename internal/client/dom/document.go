package dom

import (
	"embed"
	"errors"
	"fmt"
	"html"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed page/*.html
var pageFS embed.FS

var ErrContract = errors.New("page contract violated")

type Element struct {
	ID     string
	Inner  string
	Attrs  map[string]string
	Styles map[string]string
	Hidden bool
}

func (e *Element) clone() Element {
	c := *e
	c.Attrs = make(map[string]string, len(e.Attrs))
	for k, v := range e.Attrs {
		c.Attrs[k] = v
	}
	c.Styles = make(map[string]string, len(e.Styles))
	for k, v := range e.Styles {
		c.Styles[k] = v
	}
	return c
}

// Document is safe for concurrent use.
type Document struct {
	mu        sync.RWMutex
	elements  map[string]*Element
	order     []string
	templates map[string]string
	text      *bluemonday.Policy
}

func New() *Document {
	return &Document{
		elements:  map[string]*Element{},
		templates: map[string]string{},
		text:      bluemonday.StrictPolicy(),
	}
}

// NewPage returns a document holding every required element and the
// bundled template sources.
func NewPage() (*Document, error) {
	d := New()
	for _, id := range RequiredElements {
		d.AddElement(id, hiddenOnLoad[id])
	}
	entries, err := pageFS.ReadDir("page")
	if err != nil {
		return nil, fmt.Errorf("read page templates: %w", err)
	}
	for _, e := range entries {
		src, err := pageFS.ReadFile(path.Join("page", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		d.AddTemplate(strings.TrimSuffix(e.Name(), ".html"), string(src))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) AddElement(id string, hidden bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.elements[id]; !ok {
		d.order = append(d.order, id)
	}
	d.elements[id] = &Element{ID: id, Attrs: map[string]string{}, Styles: map[string]string{}, Hidden: hidden}
}

func (d *Document) AddTemplate(id, src string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.templates[id] = src
}

func (d *Document) Template(id string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	src, ok := d.templates[id]
	if !ok {
		return "", fmt.Errorf("%w: template #%s missing", ErrContract, id)
	}
	return src, nil
}

// Validate reports every missing element or template id.
func (d *Document) Validate() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var missing []string
	for _, id := range RequiredElements {
		if _, ok := d.elements[id]; !ok {
			missing = append(missing, "#"+id)
		}
	}
	for _, id := range RequiredTemplates {
		if _, ok := d.templates[id]; !ok {
			missing = append(missing, "#"+id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrContract, strings.Join(missing, ", "))
	}
	return nil
}

func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.elements[id]
	return ok
}

func (d *Document) update(id string, fn func(e *Element)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.elements[id]; ok {
		fn(e)
	}
}

func (d *Document) SetInnerHTML(id, h string) {
	d.update(id, func(e *Element) { e.Inner = h })
}

func (d *Document) SetAttr(id, name, value string) {
	d.update(id, func(e *Element) { e.Attrs[name] = value })
}

func (d *Document) SetStyle(id, name, value string) {
	d.update(id, func(e *Element) { e.Styles[name] = value })
}

func (d *Document) Show(id string) {
	d.update(id, func(e *Element) { e.Hidden = false })
}

func (d *Document) Hide(id string) {
	d.update(id, func(e *Element) { e.Hidden = true })
}

// Element returns a copy of the element's current state.
func (d *Document) Element(id string) (Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.elements[id]
	if !ok {
		return Element{}, false
	}
	return e.clone(), true
}

func (d *Document) InnerHTML(id string) string {
	e, _ := d.Element(id)
	return e.Inner
}

func (d *Document) Attr(id, name string) string {
	e, _ := d.Element(id)
	return e.Attrs[name]
}

func (d *Document) Style(id, name string) string {
	e, _ := d.Element(id)
	return e.Styles[name]
}

func (d *Document) Visible(id string) bool {
	e, ok := d.Element(id)
	return ok && !e.Hidden
}

// Text returns the element's inner HTML as whitespace-collapsed plain text.
func (d *Document) Text(id string) string {
	stripped := d.text.Sanitize(d.InnerHTML(id))
	return strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
}

// Dump writes the text of every visible, non-empty element in insertion
// order.
func (d *Document) Dump(w io.Writer) error {
	d.mu.RLock()
	ids := append([]string(nil), d.order...)
	d.mu.RUnlock()
	for _, id := range ids {
		if !d.Visible(id) {
			continue
		}
		txt := d.Text(id)
		if txt == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "#%s: %s\n", id, txt); err != nil {
			return err
		}
	}
	return nil
}
