// Package router maps in-page paths to view handlers and intercepts link
// clicks that should stay inside the page.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

const (
	RouteMain = "main"
	RouteUser = "user"

	patternMain = "/"
	patternUser = "/user/{id}"
)

var (
	ErrNoRoute    = errors.New("no route")
	ErrNoHistory  = errors.New("no history to go back to")
	ErrBadAddress = errors.New("bad address")
)

type Route struct {
	Name    string
	Path    string
	Pattern string
	Params  map[string]string
}

// UserID is the id of a user-detail route.
func (r Route) UserID() string {
	return r.Params["id"]
}

type Handler func(ctx context.Context, r Route) error

// Anchor is a clicked link.
type Anchor struct {
	Href string
	// Bypass marks links carrying data-bypass.
	Bypass bool
}

type Router struct {
	origin *url.URL
	mux    *chi.Mux
	log    logging.Logger

	mu       sync.Mutex
	handlers map[string]Handler
	history  []Route
}

// New builds a router for a page served from origin, e.g. "http://poputchiki.ru".
func New(origin string, log logging.Logger) (*Router, error) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: origin %q", ErrBadAddress, origin)
	}
	if log == nil {
		log = logging.Nop()
	}

	r := &Router{
		origin:   &url.URL{Scheme: u.Scheme, Host: u.Host},
		mux:      chi.NewRouter(),
		log:      log.With("component", "router"),
		handlers: map[string]Handler{},
	}
	noop := func(http.ResponseWriter, *http.Request) {}
	r.mux.Get(patternMain, noop)
	r.mux.Get(patternUser, noop)
	return r, nil
}

func (r *Router) OnMain(h Handler) { r.on(RouteMain, h) }
func (r *Router) OnUser(h Handler) { r.on(RouteUser, h) }

func (r *Router) on(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Match resolves a path without navigating.
func (r *Router) Match(path string) (Route, error) {
	path = normalize(path)
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return Route{Path: path}, fmt.Errorf("%w: %s", ErrNoRoute, path)
	}

	route := Route{Path: path, Pattern: rctx.RoutePattern(), Params: map[string]string{}}
	for i, k := range rctx.URLParams.Keys {
		route.Params[k] = rctx.URLParams.Values[i]
	}
	switch route.Pattern {
	case patternUser:
		route.Name = RouteUser
	default:
		route.Name = RouteMain
	}
	return route, nil
}

// Navigate records path in the history and runs its route handler. Unknown
// paths are still recorded, as the address bar would show them.
func (r *Router) Navigate(ctx context.Context, path string) (Route, error) {
	route, err := r.Match(path)

	r.mu.Lock()
	r.history = append(r.history, route)
	h := r.handlers[route.Name]
	r.mu.Unlock()

	if err != nil {
		r.log.Debug(ctx, "navigated to unknown path", "path", route.Path)
		return route, err
	}
	r.log.Debug(ctx, "navigate", "route", route.Name, "path", route.Path)
	return route, r.run(ctx, h, route)
}

// Back pops the current entry and re-runs the previous one.
func (r *Router) Back(ctx context.Context) (Route, error) {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return Route{}, ErrNoHistory
	}
	r.history = r.history[:len(r.history)-1]
	route := r.history[len(r.history)-1]
	h := r.handlers[route.Name]
	r.mu.Unlock()

	if route.Name == "" {
		return route, fmt.Errorf("%w: %s", ErrNoRoute, route.Path)
	}
	return route, r.run(ctx, h, route)
}

func (r *Router) run(ctx context.Context, h Handler, route Route) error {
	if h == nil {
		return nil
	}
	if err := h(ctx, route); err != nil {
		return fmt.Errorf("route %s: %w", route.Name, err)
	}
	return nil
}

// Current is the route at the top of the history; zero before any
// navigation.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Route{}
	}
	return r.history[len(r.history)-1]
}

func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	for i, h := range r.history {
		out[i] = h.Path
	}
	return out
}

// HandleClick decides whether a link click stays in the page. It returns
// true when the default navigation was prevented and the router navigated
// instead.
func (r *Router) HandleClick(ctx context.Context, a Anchor) (bool, error) {
	path, ok := r.internalPath(a)
	if !ok {
		return false, nil
	}
	_, err := r.Navigate(ctx, path)
	return true, err
}

func (r *Router) internalPath(a Anchor) (string, bool) {
	href := strings.TrimSpace(a.Href)
	if a.Bypass || href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	// relative links resolve against the page root, not the current path
	base := *r.origin
	base.Path = "/"
	target := base.ResolveReference(ref)
	if target.Scheme != r.origin.Scheme || target.Host != r.origin.Host {
		return "", false
	}
	return target.Path, true
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(path, "/")
	return path
}
