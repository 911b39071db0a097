package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*Router, *[]Route) {
	t.Helper()
	r, err := New("http://poputchiki.ru", nil)
	require.NoError(t, err)

	var seen []Route
	h := func(_ context.Context, route Route) error {
		seen = append(seen, route)
		return nil
	}
	r.OnMain(h)
	r.OnUser(h)
	return r, &seen
}

func TestNew_BadOrigin(t *testing.T) {
	_, err := New("poputchiki.ru", nil)
	assert.ErrorIs(t, err, ErrBadAddress)
}

func TestMatch(t *testing.T) {
	r, _ := newRouter(t)

	tests := []struct {
		path string
		name string
		id   string
	}{
		{"", RouteMain, ""},
		{"/", RouteMain, ""},
		{"/user/7", RouteUser, "7"},
		{"user/53f1d9", RouteUser, "53f1d9"},
		{"/user/7/", RouteUser, "7"},
		{"/user/7?tab=photos#top", RouteUser, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, err := r.Match(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.name, route.Name)
			assert.Equal(t, tt.id, route.UserID())
		})
	}

	_, err := r.Match("/messages")
	assert.ErrorIs(t, err, ErrNoRoute)
	_, err = r.Match("/user")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestNavigate_RunsHandlerAndRecordsHistory(t *testing.T) {
	r, seen := newRouter(t)
	ctx := context.Background()

	route, err := r.Navigate(ctx, "/user/7")
	require.NoError(t, err)
	assert.Equal(t, RouteUser, route.Name)
	assert.Equal(t, "/user/{id}", route.Pattern)

	_, err = r.Navigate(ctx, "/")
	require.NoError(t, err)

	require.Len(t, *seen, 2)
	assert.Equal(t, "7", (*seen)[0].UserID())
	assert.Equal(t, RouteMain, r.Current().Name)
	assert.Equal(t, []string{"/user/7", "/"}, r.History())
}

func TestNavigate_UnknownPath(t *testing.T) {
	r, seen := newRouter(t)

	_, err := r.Navigate(context.Background(), "/nowhere")
	assert.ErrorIs(t, err, ErrNoRoute)
	assert.Empty(t, *seen)
	assert.Equal(t, "/nowhere", r.Current().Path)
}

func TestNavigate_HandlerError(t *testing.T) {
	r, _ := newRouter(t)
	boom := errors.New("boom")
	r.OnUser(func(context.Context, Route) error { return boom })

	_, err := r.Navigate(context.Background(), "/user/1")
	assert.ErrorIs(t, err, boom)
}

func TestBack(t *testing.T) {
	r, seen := newRouter(t)
	ctx := context.Background()

	_, err := r.Back(ctx)
	assert.ErrorIs(t, err, ErrNoHistory)

	_, _ = r.Navigate(ctx, "/")
	_, _ = r.Navigate(ctx, "/user/7")

	route, err := r.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, RouteMain, route.Name)
	assert.Len(t, *seen, 3)
	assert.Equal(t, []string{"/"}, r.History())
}

func TestHandleClick(t *testing.T) {
	tests := []struct {
		name      string
		anchor    Anchor
		prevented bool
		userID    string
	}{
		{"relative user link", Anchor{Href: "/user/7"}, true, "7"},
		{"root relative without slash", Anchor{Href: "user/8"}, true, "8"},
		{"same origin absolute", Anchor{Href: "http://poputchiki.ru/user/9"}, true, "9"},
		{"external", Anchor{Href: "https://external.example/x"}, false, ""},
		{"other scheme same host", Anchor{Href: "https://poputchiki.ru/user/9"}, false, ""},
		{"protocol relative external", Anchor{Href: "//cdn.example/x.js"}, false, ""},
		{"javascript", Anchor{Href: "javascript:void(0)"}, false, ""},
		{"bypass", Anchor{Href: "/user/7", Bypass: true}, false, ""},
		{"empty", Anchor{}, false, ""},
		{"fragment", Anchor{Href: "#top"}, false, ""},
		{"mailto", Anchor{Href: "mailto:a@b"}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, seen := newRouter(t)
			prevented, err := r.HandleClick(context.Background(), tt.anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.prevented, prevented)
			if tt.prevented {
				require.Len(t, *seen, 1)
				assert.Equal(t, tt.userID, (*seen)[0].UserID())
			} else {
				assert.Empty(t, *seen)
			}
		})
	}
}

func TestHandleClick_UnknownInternalPath(t *testing.T) {
	r, _ := newRouter(t)
	prevented, err := r.HandleClick(context.Background(), Anchor{Href: "/about"})
	assert.True(t, prevented)
	assert.ErrorIs(t, err, ErrNoRoute)
}
