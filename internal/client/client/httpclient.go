package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/poputchiki/internal/client/models"
	"github.com/dmitrijs2005/poputchiki/internal/common"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

const (
	DefaultImagePath = "/api/image"
	maxResponseBody  = 8 << 20
)

type Options struct {
	BaseURL string
	// VideoPath is the upload endpoint for videos. Empty means DefaultImagePath.
	VideoPath string
	Timeout   time.Duration
	HTTP      *http.Client
	Logger    logging.Logger
}

type HTTPClient struct {
	base      *url.URL
	videoPath string
	timeout   time.Duration
	http      *http.Client
	token     string
	log       logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("api base url %q must be an absolute http(s) url", opts.BaseURL)
	}

	c := &HTTPClient{
		base:      base,
		videoPath: opts.VideoPath,
		timeout:   opts.Timeout,
		http:      opts.HTTP,
		log:       opts.Logger,
	}
	if c.videoPath == "" {
		c.videoPath = DefaultImagePath
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	return c, nil
}

func (c *HTTPClient) WithToken(token string) Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *HTTPClient) Token() string {
	return c.token
}

func (c *HTTPClient) FetchUser(ctx context.Context, id models.ID) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("fetch user: %w", ErrNotFound)
	}
	var u models.User
	if err := c.do(ctx, http.MethodGet, c.endpoint("api", "user", id.String()), nil, "", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) SaveUser(ctx context.Context, u *models.User) error {
	if u == nil || u.ID == "" {
		return errors.New("save user: missing id")
	}
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.endpoint("api", "user", u.ID.String()), bytes.NewReader(body), "application/json", nil)
}

func (c *HTTPClient) Register(ctx context.Context, form url.Values) (models.AuthResponse, error) {
	return c.auth(ctx, "register", form)
}

func (c *HTTPClient) Login(ctx context.Context, form url.Values) (models.AuthResponse, error) {
	return c.auth(ctx, "login", form)
}

func (c *HTTPClient) auth(ctx context.Context, action string, form url.Values) (models.AuthResponse, error) {
	var res models.AuthResponse
	err := c.do(ctx, http.MethodPost, c.endpoint("api", "auth", action),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &res)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if res.Token == "" || res.ID == "" {
		return models.AuthResponse{}, fmt.Errorf("%w: %s response without token or id", ErrMalformedResponse, action)
	}
	return res, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	if c.token == "" {
		return ErrUnauthorized
	}
	return c.do(ctx, http.MethodPost, c.endpoint("api", "auth", "logout"), nil, "", nil)
}

func (c *HTTPClient) UploadImage(ctx context.Context, field, filename string, r io.Reader) (*models.Photo, error) {
	var p models.Photo
	if err := c.upload(ctx, DefaultImagePath, field, filename, r, &p); err != nil {
		return nil, err
	}
	if p.URL == "" {
		return nil, fmt.Errorf("%w: upload response without url", ErrMalformedResponse)
	}
	return &p, nil
}

func (c *HTTPClient) UploadVideo(ctx context.Context, field, filename string, r io.Reader) (*models.Video, error) {
	var v models.Video
	if err := c.upload(ctx, c.videoPath, field, filename, r, &v); err != nil {
		return nil, err
	}
	if v.URL == "" {
		return nil, fmt.Errorf("%w: upload response without url", ErrMalformedResponse)
	}
	return &v, nil
}

func (c *HTTPClient) upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	u := c.base.JoinPath(strings.Split(strings.Trim(path, "/"), "/")...)
	return c.do(ctx, http.MethodPost, u, &buf, mw.FormDataContentType(), out)
}

func (c *HTTPClient) endpoint(elem ...string) *url.URL {
	return c.base.JoinPath(elem...)
}

func (c *HTTPClient) do(ctx context.Context, method string, u *url.URL, body io.Reader, contentType string, out any) error {
	parent := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: common.TokenCookieName, Value: c.token})
	}

	log := c.log.With("method", method, "path", u.Path, "request_id", reqID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(parent, "request failed", "error", err)
		return c.mapError(parent, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		log.Warn(parent, "reading response failed", "error", err)
		return c.mapError(parent, err)
	}
	log.Debug(parent, "request done", "status", resp.StatusCode, "took", time.Since(start))

	if err := statusError(resp.StatusCode, data); err != nil {
		return err
	}
	if apiErr := bodyError(resp.StatusCode, data); apiErr != nil {
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// mapError translates a transport error. Cancellation by the caller is
// reported as such; everything else, including our own timeout, means the
// server could not be reached.
func (c *HTTPClient) mapError(parent context.Context, err error) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func statusError(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}

	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Text == "" {
		apiErr.Text = http.StatusText(code)
		if e := bodyError(code, body); e != nil {
			apiErr.Text = e.Text
		}
	}
	if apiErr.Code == 0 {
		apiErr.Code = code
	}
	return apiErr
}

// bodyError reports an {"error": ...} body.
func bodyError(code int, body []byte) *APIError {
	var probe struct {
		Error any `json:"error"`
	}
	if json.Unmarshal(body, &probe) != nil || probe.Error == nil {
		return nil
	}
	text := fmt.Sprint(probe.Error)
	if text == "" {
		return nil
	}
	return &APIError{Code: code, Text: text}
}
