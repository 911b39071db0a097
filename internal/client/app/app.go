package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/poputchiki/internal/client/client"
	"github.com/dmitrijs2005/poputchiki/internal/client/dom"
	"github.com/dmitrijs2005/poputchiki/internal/client/forms"
	"github.com/dmitrijs2005/poputchiki/internal/client/models"
	"github.com/dmitrijs2005/poputchiki/internal/client/realtime"
	"github.com/dmitrijs2005/poputchiki/internal/client/router"
	"github.com/dmitrijs2005/poputchiki/internal/client/session"
	"github.com/dmitrijs2005/poputchiki/internal/client/views"
	"github.com/dmitrijs2005/poputchiki/internal/common"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

type CredentialStore interface {
	Load(ctx context.Context) (session.Credentials, bool)
	Save(ctx context.Context, creds session.Credentials) error
	Clear(ctx context.Context) error
}

type Options struct {
	Store    CredentialStore
	API      client.Client
	Doc      *dom.Document
	Renderer *views.Renderer
	Router   *router.Router

	// NewChannel builds the realtime channel for a token. Defaults to a
	// gorilla channel on RealtimeURL.
	NewChannel  func(token string) Channel
	RealtimeURL string

	HideDelay         time.Duration
	MaxImageDimension int
	Logger            logging.Logger
}

type App struct {
	store    CredentialStore
	api      client.Client
	doc      *dom.Document
	renderer *views.Renderer
	router   *router.Router
	newCh    func(token string) Channel

	hideDelay time.Duration
	maxDim    int
	log       logging.Logger

	auth *forms.Auth

	mu      sync.Mutex
	current *Session
	gen     uint64
}

func New(opts Options) (*App, error) {
	if opts.Store == nil || opts.API == nil || opts.Doc == nil || opts.Renderer == nil || opts.Router == nil {
		return nil, errors.New("app: store, api, document, renderer and router are required")
	}
	if err := opts.Doc.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		store:     opts.Store,
		api:       opts.API,
		doc:       opts.Doc,
		renderer:  opts.Renderer,
		router:    opts.Router,
		newCh:     opts.NewChannel,
		hideDelay: opts.HideDelay,
		maxDim:    opts.MaxImageDimension,
		log:       opts.Logger,
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	if a.newCh == nil {
		url, log := opts.RealtimeURL, a.log
		a.newCh = func(token string) Channel {
			return realtime.New(realtime.Options{URL: url, Token: token, Logger: log})
		}
	}
	a.auth = forms.NewAuth(a.api, a.Login, a.log)
	a.router.OnMain(a.showMain)
	a.router.OnUser(a.showMain)
	return a, nil
}

func (a *App) Doc() *dom.Document     { return a.doc }
func (a *App) Router() *router.Router { return a.router }

// Auth is the registration/login form controller.
func (a *App) Auth() *forms.Auth { return a.auth }

// Current is the signed-in session, or nil.
func (a *App) Current() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Profile is the profile form of the current session.
func (a *App) Profile() (*forms.Profile, error) {
	s := a.Current()
	if s == nil {
		return nil, common.ErrNotAuthenticated
	}
	return s.Profile, nil
}

// Start restores a session from stored credentials. Without both of them
// the page stays anonymous and nothing is fetched.
func (a *App) Start(ctx context.Context) error {
	creds, ok := a.store.Load(ctx)
	if !ok {
		a.log.Info(ctx, "no stored session")
		return nil
	}
	return a.establish(ctx, creds)
}

// Login stores the credentials of a fresh token and establishes a session
// for them.
func (a *App) Login(ctx context.Context, res models.AuthResponse) error {
	creds := session.Credentials{Token: res.Token, UserID: res.ID.String()}
	if err := a.store.Save(ctx, creds); err != nil {
		a.log.Error(ctx, "storing credentials failed", "error", err)
		return err
	}
	return a.establish(ctx, creds)
}

// Logout forgets the credentials and tears the session down. The server
// token is revoked on a best-effort basis.
func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	s := a.current
	a.current = nil
	a.gen++
	a.mu.Unlock()

	err := a.store.Clear(ctx)
	if err != nil {
		a.log.Error(ctx, "clearing credentials failed", "error", err)
	}

	if s != nil {
		s.teardown()
		if lerr := s.API.Logout(ctx); lerr != nil {
			a.log.Warn(ctx, "server logout failed", "error", lerr)
		}
		a.log.Info(ctx, "logged out", "user", s.Creds.UserID)
	}

	a.doc.Hide(dom.ButtonLogout)
	a.doc.Hide(dom.BlockUser)
	a.doc.Show(dom.BlockLogin)
	return err
}

// Close releases the current session without touching the stored
// credentials, so the next Start picks it up again.
func (a *App) Close() {
	a.mu.Lock()
	s := a.current
	a.current = nil
	a.gen++
	a.mu.Unlock()
	if s != nil {
		s.teardown()
	}
}

func (a *App) establish(ctx context.Context, creds session.Credentials) error {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	old := a.current
	a.current = nil
	a.mu.Unlock()
	if old != nil {
		old.teardown()
	}

	log := a.log.With("user", creds.UserID)
	api := a.api.WithToken(creds.Token)
	user := models.NewUserModel(models.ID(creds.UserID), api)
	if err := user.Fetch(ctx); err != nil {
		log.Error(ctx, "fetching user failed", "error", err)
		return fmt.Errorf("start session: %w", err)
	}

	s := &Session{Creds: creds, API: api, User: user}
	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		log.Debug(ctx, "dropping user fetched for a replaced session")
		return nil
	}
	if err := a.attach(s); err != nil {
		a.mu.Unlock()
		s.teardown()
		log.Error(ctx, "rendering session failed", "error", err)
		return fmt.Errorf("start session: %w", err)
	}
	a.current = s
	a.mu.Unlock()

	err := s.Channel.Connect(ctx)

	// a logout or a newer login may have torn s down while it was dialing
	a.mu.Lock()
	stale := a.current != s
	a.mu.Unlock()
	if stale {
		_ = s.Channel.Close()
		log.Debug(ctx, "closing channel of a replaced session")
		return nil
	}

	if err != nil {
		if errors.Is(err, realtime.ErrClosedWhileDialing) {
			return nil
		}
		log.Warn(ctx, "realtime unavailable for this session", "error", err)
	}
	log.Info(ctx, "session started")
	return nil
}

// attach renders the signed-in page for s and prepares its channel. Called
// with a.mu held.
func (a *App) attach(s *Session) error {
	s.form = a.renderer.FormView()
	s.info = a.renderer.InfoView()
	s.main = a.renderer.MainView()
	s.block = a.renderer.BlockView()
	for _, v := range []*views.View{s.form, s.info, s.main, s.block} {
		if err := v.Bind(s.User); err != nil {
			return err
		}
	}
	s.unmount = s.User.Subscribe(func(models.User) { a.remount(s) })

	a.doc.Hide(dom.BlockLogin)
	a.doc.Show(dom.ButtonLogout)
	a.doc.Show(dom.BlockUser)
	a.doc.SetInnerHTML(dom.ContentWrapper, s.main.HTML())

	s.Profile = forms.NewProfile(forms.ProfileOptions{
		API:               s.API,
		User:              s.User,
		Doc:               a.doc,
		HideDelay:         a.hideDelay,
		MaxImageDimension: a.maxDim,
		Logger:            a.log,
	})

	s.Channel = a.newCh(s.Creds.Token)
	s.Channel.Handle(realtime.TypeProgress, realtime.ProgressHandler(a.doc.Progress(dom.UserFileProgress)))
	return nil
}

// remount refreshes the content wrapper after a model change.
func (a *App) remount(s *Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != s {
		return
	}
	a.doc.SetInnerHTML(dom.ContentWrapper, s.main.HTML())
}

// showMain is the handler for both routes: the user page shows the same
// main view as the root.
func (a *App) showMain(context.Context, router.Route) error {
	s := a.Current()
	if s == nil {
		return nil
	}
	a.doc.SetInnerHTML(dom.ContentWrapper, s.MainHTML())
	return nil
}
