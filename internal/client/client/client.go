package client

import (
	"context"
	"io"
	"net/url"

	"github.com/dmitrijs2005/poputchiki/internal/client/models"
)

// Client is the REST surface of the poputchiki backend used by the client.
type Client interface {
	models.UserResource

	Register(ctx context.Context, form url.Values) (models.AuthResponse, error)
	Login(ctx context.Context, form url.Values) (models.AuthResponse, error)
	Logout(ctx context.Context) error

	UploadImage(ctx context.Context, field, filename string, r io.Reader) (*models.Photo, error)
	UploadVideo(ctx context.Context, field, filename string, r io.Reader) (*models.Video, error)

	// WithToken returns a client that authenticates every request with token.
	// The receiver is left unchanged.
	WithToken(token string) Client
}
