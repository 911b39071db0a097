package forms

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/poputchiki/internal/client/models"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

type AuthAPI interface {
	Register(ctx context.Context, form url.Values) (models.AuthResponse, error)
	Login(ctx context.Context, form url.Values) (models.AuthResponse, error)
}

// SessionStarter runs the session-establishment sequence for a fresh token.
type SessionStarter func(ctx context.Context, res models.AuthResponse) error

type Auth struct {
	api   AuthAPI
	start SessionStarter
	log   logging.Logger
}

func NewAuth(api AuthAPI, start SessionStarter, log logging.Logger) *Auth {
	if log == nil {
		log = logging.Nop()
	}
	return &Auth{api: api, start: start, log: log.With("component", "forms")}
}

func (a *Auth) Register(ctx context.Context, form url.Values) error {
	return a.submit(ctx, "register", a.api.Register, form)
}

func (a *Auth) Login(ctx context.Context, form url.Values) error {
	return a.submit(ctx, "login", a.api.Login, form)
}

func (a *Auth) submit(ctx context.Context, action string,
	call func(context.Context, url.Values) (models.AuthResponse, error), form url.Values) error {

	res, err := call(ctx, form)
	if err != nil {
		a.log.Warn(ctx, action+" failed", "email", form.Get(models.FieldEmail), "error", err)
		return fmt.Errorf("%s: %w", action, err)
	}
	a.log.Info(ctx, action+" succeeded", "user", res.ID)
	if err := a.start(ctx, res); err != nil {
		return fmt.Errorf("%s: start session: %w", action, err)
	}
	return nil
}
