package views

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrijs2005/poputchiki/internal/client/dom"
	"github.com/dmitrijs2005/poputchiki/internal/client/models"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

// Renderer holds the page templates compiled once at startup.
type Renderer struct {
	doc    *dom.Document
	policy *bluemonday.Policy
	tmpl   map[string]*template.Template
	log    logging.Logger
}

func NewRenderer(doc *dom.Document, log logging.Logger) (*Renderer, error) {
	if log == nil {
		log = logging.Nop()
	}
	r := &Renderer{
		doc:    doc,
		policy: bluemonday.UGCPolicy(),
		tmpl:   make(map[string]*template.Template, len(dom.RequiredTemplates)),
		log:    log,
	}
	for _, id := range dom.RequiredTemplates {
		src, err := doc.Template(id)
		if err != nil {
			return nil, err
		}
		t, err := template.New(id).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("compile #%s: %w", id, err)
		}
		r.tmpl[id] = t
	}
	return r, nil
}

func (r *Renderer) Execute(templateID string, u models.User) (string, error) {
	t, ok := r.tmpl[templateID]
	if !ok {
		return "", fmt.Errorf("%w: template #%s not compiled", dom.ErrContract, templateID)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, NewUserView(u, r.policy)); err != nil {
		return "", fmt.Errorf("render #%s: %w", templateID, err)
	}
	return buf.String(), nil
}

// FormView is the profile edit form shown in the user modal.
func (r *Renderer) FormView() *View { return r.view(dom.FormUserTemplate, dom.UserModal) }

// InfoView is the compact header block.
func (r *Renderer) InfoView() *View { return r.view(dom.UserInfoTemplate, dom.UserInfo) }

// MainView renders detached; the router mounts it into the content wrapper.
func (r *Renderer) MainView() *View { return r.view(dom.BlockUserTemplate, "") }

// BlockView is the list item shown in the user block.
func (r *Renderer) BlockView() *View { return r.view(dom.BlockUserInfoTemplate, dom.BlockUser) }

func (r *Renderer) view(templateID, target string) *View {
	return &View{r: r, templateID: templateID, target: target}
}

type View struct {
	r          *Renderer
	templateID string
	target     string

	mu    sync.Mutex
	html  string
	unsub func()
}

// Render executes the template and replaces the target's content. On error
// the previous content stays.
func (v *View) Render(u models.User) error {
	out, err := v.r.Execute(v.templateID, u)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.html = out
	if v.target != "" {
		v.r.doc.SetInnerHTML(v.target, out)
	}
	return nil
}

// HTML is the last successful render.
func (v *View) HTML() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.html
}

func (v *View) Target() string { return v.target }

// Bind renders the model now and again on every change until Unbind.
func (v *View) Bind(m *models.UserModel) error {
	v.Unbind()
	unsub := m.Subscribe(func(u models.User) {
		if err := v.Render(u); err != nil {
			v.r.log.Error(context.Background(), "render failed", "template", v.templateID, "error", err)
		}
	})
	v.mu.Lock()
	v.unsub = unsub
	v.mu.Unlock()
	return v.Render(m.Snapshot())
}

func (v *View) Unbind() {
	v.mu.Lock()
	unsub := v.unsub
	v.unsub = nil
	v.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
