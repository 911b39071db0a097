package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/poputchiki/internal/client/models"
	"github.com/dmitrijs2005/poputchiki/internal/common"
)

// fakeAPI is a chi-routed stand-in for the REST backend that records what
// it was sent.
type fakeAPI struct {
	mu sync.Mutex

	tokens     []string
	requestIDs []string
	forms      []url.Values
	saved      []models.User
	uploads    map[string]string // "field/filename" -> content
	paths      []string
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok := ""
	if c, err := r.Cookie(common.TokenCookieName); err == nil {
		tok = c.Value
	}
	f.tokens = append(f.tokens, tok)
	f.requestIDs = append(f.requestIDs, r.Header.Get(common.RequestIDHeaderName))
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.record(req)
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/api/user/{id}", func(w http.ResponseWriter, req *http.Request) {
		switch id := chi.URLParam(req, "id"); id {
		case "missing":
			writeJSON(w, http.StatusNotFound, APIError{Code: 404, Text: "User not found"})
		case "garbage":
			_, _ = io.WriteString(w, "<html>")
		case "boom":
			writeJSON(w, http.StatusInternalServerError, APIError{Code: 500, Text: "Internal server error"})
		case "slow":
			select {
			case <-time.After(2 * time.Second):
			case <-req.Context().Done():
			}
		default:
			writeJSON(w, http.StatusOK, map[string]any{"id": id, "firstname": "Anna", "email": "anna@example.com"})
		}
	})
	r.Post("/api/user/{id}", func(w http.ResponseWriter, req *http.Request) {
		var u models.User
		if err := json.NewDecoder(req.Body).Decode(&u); err != nil {
			writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Text: "Bad request"})
			return
		}
		f.mu.Lock()
		f.saved = append(f.saved, u)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, u)
	})

	auth := func(w http.ResponseWriter, req *http.Request) {
		_ = req.ParseForm()
		f.mu.Lock()
		f.forms = append(f.forms, req.PostForm)
		f.mu.Unlock()
		switch req.PostForm.Get("password") {
		case "wrong":
			writeJSON(w, http.StatusUnauthorized, APIError{Code: 401, Text: "Not authenticated"})
		case "mobile":
			writeJSON(w, http.StatusOK, map[string]string{"error": "bad credentials"})
		case "short":
			writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Text: "Bad request"})
		case "empty":
			writeJSON(w, http.StatusOK, map[string]string{})
		default:
			writeJSON(w, http.StatusOK, map[string]string{"id": "53f1", "token": "tok-1"})
		}
	}
	r.Post("/api/auth/login", auth)
	r.Post("/api/auth/register", auth)
	r.Post("/api/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		if _, err := req.Cookie(common.TokenCookieName); err != nil {
			writeJSON(w, http.StatusUnauthorized, APIError{Code: 401, Text: "Not authenticated"})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	upload := func(w http.ResponseWriter, req *http.Request) {
		file, hdr, err := req.FormFile("image")
		if err != nil {
			file, hdr, err = req.FormFile("video")
		}
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]string{"error": "no file"})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		f.mu.Lock()
		if f.uploads == nil {
			f.uploads = map[string]string{}
		}
		f.uploads[hdr.Filename] = string(data)
		f.mu.Unlock()

		if string(data) == "broken" {
			writeJSON(w, http.StatusOK, map[string]string{"error": "unsupported format"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "p1", "url": "https://img/" + hdr.Filename})
	}
	r.Post("/api/image", upload)
	r.Post("/api/video", upload)
	return r
}

func newTestClient(t *testing.T, opts Options) (*HTTPClient, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.router())
	t.Cleanup(srv.Close)

	opts.BaseURL = srv.URL
	c, err := NewHTTPClient(opts)
	require.NoError(t, err)
	return c, api
}

func TestNewHTTPClient_RejectsBadBase(t *testing.T) {
	for _, base := range []string{"", "poputchiki.ru", "ftp://poputchiki.ru", "http://"} {
		_, err := NewHTTPClient(Options{BaseURL: base})
		assert.Error(t, err, base)
	}
}

func TestFetchUser_SendsTokenAndRequestID(t *testing.T) {
	c, api := newTestClient(t, Options{})

	u, err := c.WithToken("tok-1").FetchUser(context.Background(), "53f1")
	require.NoError(t, err)
	assert.Equal(t, models.ID("53f1"), u.ID)
	assert.Equal(t, "Anna", u.FirstName)

	require.Len(t, api.tokens, 1)
	assert.Equal(t, "tok-1", api.tokens[0])
	_, err = uuid.Parse(api.requestIDs[0])
	assert.NoError(t, err, "request id must be a uuid")
	assert.Equal(t, "GET /api/user/53f1", api.paths[0])
}

func TestWithToken_LeavesReceiverAnonymous(t *testing.T) {
	c, api := newTestClient(t, Options{})
	_ = c.WithToken("tok-1")

	_, err := c.FetchUser(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "", api.tokens[0])
	assert.Equal(t, "", c.Token())
}

func TestFetchUser_ErrorMapping(t *testing.T) {
	c, _ := newTestClient(t, Options{})
	ctx := context.Background()

	_, err := c.FetchUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.FetchUser(ctx, "boom")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.FetchUser(ctx, "garbage")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = c.FetchUser(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchUser_TimeoutIsUnavailable(t *testing.T) {
	c, _ := newTestClient(t, Options{Timeout: 50 * time.Millisecond})

	_, err := c.FetchUser(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchUser_CallerCancellation(t *testing.T) {
	c, _ := newTestClient(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := c.FetchUser(ctx, "slow")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestServerDown_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewHTTPClient(Options{BaseURL: base})
	require.NoError(t, err)
	_, err = c.FetchUser(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSaveUser_PostsFullDocument(t *testing.T) {
	c, api := newTestClient(t, Options{})

	u := &models.User{ID: "7", Email: "a@b", Phone: "555", Photo: &models.Photo{URL: "https://img/p.jpg"}}
	require.NoError(t, c.WithToken("tok").SaveUser(context.Background(), u))

	require.Len(t, api.saved, 1)
	assert.Equal(t, "POST /api/user/7", api.paths[0])
	assert.Equal(t, "555", api.saved[0].Phone)
	require.NotNil(t, api.saved[0].Photo)
	assert.Equal(t, "https://img/p.jpg", api.saved[0].Photo.URL)

	assert.Error(t, c.SaveUser(context.Background(), &models.User{}))
}

func TestLogin(t *testing.T) {
	c, api := newTestClient(t, Options{})
	ctx := context.Background()

	res, err := c.Login(ctx, url.Values{"email": {"anna@example.com"}, "password": {"secret"}})
	require.NoError(t, err)
	assert.Equal(t, models.AuthResponse{Token: "tok-1", ID: "53f1"}, res)
	assert.Equal(t, "anna@example.com", api.forms[0].Get("email"))

	tests := []struct {
		password string
		check    func(t *testing.T, err error)
	}{
		{"wrong", func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthorized) }},
		{"empty", func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrMalformedResponse) }},
		{"mobile", func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "bad credentials", apiErr.Text)
			assert.Equal(t, http.StatusOK, apiErr.Code)
		}},
		{"short", func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, 400, apiErr.Code)
			assert.Equal(t, "Bad request", apiErr.Text)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			res, err := c.Login(ctx, url.Values{"email": {"x"}, "password": {tt.password}})
			require.Error(t, err)
			assert.Equal(t, models.AuthResponse{}, res)
			tt.check(t, err)
		})
	}
}

func TestRegister(t *testing.T) {
	c, api := newTestClient(t, Options{})

	res, err := c.Register(context.Background(), url.Values{"email": {"n@x"}, "password": {"pw"}})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, "POST /api/auth/register", api.paths[0])
}

func TestLogout(t *testing.T) {
	c, api := newTestClient(t, Options{})

	assert.ErrorIs(t, c.Logout(context.Background()), ErrUnauthorized)
	assert.Empty(t, api.paths, "anonymous logout never reaches the server")

	require.NoError(t, c.WithToken("tok-1").Logout(context.Background()))
	assert.Equal(t, []string{"POST /api/auth/logout"}, api.paths)
}

func TestUploadImage(t *testing.T) {
	c, api := newTestClient(t, Options{})

	p, err := c.UploadImage(context.Background(), "image", "me.jpg", strings.NewReader("jpegdata"))
	require.NoError(t, err)
	assert.Equal(t, "https://img/me.jpg", p.URL)
	assert.Equal(t, "jpegdata", api.uploads["me.jpg"])

	_, err = c.UploadImage(context.Background(), "image", "bad.jpg", strings.NewReader("broken"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "unsupported format", apiErr.Text)
}

func TestUploadVideo_Endpoint(t *testing.T) {
	c, api := newTestClient(t, Options{})
	v, err := c.UploadVideo(context.Background(), "video", "clip.mp4", strings.NewReader("mp4"))
	require.NoError(t, err)
	assert.Equal(t, "https://img/clip.mp4", v.URL)
	assert.Equal(t, "POST /api/image", api.paths[0], "videos go to the image endpoint by default")

	c2, api2 := newTestClient(t, Options{VideoPath: "/api/video"})
	_, err = c2.UploadVideo(context.Background(), "video", "clip.mp4", strings.NewReader("mp4"))
	require.NoError(t, err)
	assert.Equal(t, "POST /api/video", api2.paths[0])
}

func TestAPIError_Message(t *testing.T) {
	assert.Equal(t, "api error 402: Insufficent funds", (&APIError{Code: 402, Text: "Insufficent funds"}).Error())
}
