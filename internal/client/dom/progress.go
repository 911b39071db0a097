package dom

import "strconv"

// Progress drives a progress bar element: aria-valuenow carries the value
// and the width style mirrors it as a percentage.
type Progress struct {
	doc *Document
	id  string
}

func (d *Document) Progress(id string) Progress {
	return Progress{doc: d, id: id}
}

func (p Progress) Show() { p.doc.Show(p.id) }
func (p Progress) Hide() { p.doc.Hide(p.id) }

func (p Progress) Set(v float64) {
	p.SetValue(v)
	p.SetWidth(v)
}

func (p Progress) SetValue(v float64) {
	p.doc.SetAttr(p.id, "aria-valuenow", formatPercent(v))
}

func (p Progress) SetWidth(v float64) {
	p.doc.SetStyle(p.id, "width", formatPercent(v)+"%")
}

func (p Progress) Value() string { return p.doc.Attr(p.id, "aria-valuenow") }
func (p Progress) Width() string { return p.doc.Style(p.id, "width") }

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
