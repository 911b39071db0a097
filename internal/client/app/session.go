package app

import (
	"context"

	"github.com/dmitrijs2005/poputchiki/internal/client/client"
	"github.com/dmitrijs2005/poputchiki/internal/client/forms"
	"github.com/dmitrijs2005/poputchiki/internal/client/models"
	"github.com/dmitrijs2005/poputchiki/internal/client/realtime"
	"github.com/dmitrijs2005/poputchiki/internal/client/session"
	"github.com/dmitrijs2005/poputchiki/internal/client/views"
)

// Channel is the part of realtime.Channel the controller drives.
type Channel interface {
	Handle(typ string, h realtime.Handler)
	Connect(ctx context.Context) error
	Close() error
	State() realtime.State
}

type Session struct {
	Creds   session.Credentials
	API     client.Client
	User    *models.UserModel
	Profile *forms.Profile
	Channel Channel

	form, info, main, block *views.View
	unmount                 func()
}

func (s *Session) MainHTML() string {
	return s.main.HTML()
}

func (s *Session) teardown() {
	if s.unmount != nil {
		s.unmount()
	}
	for _, v := range []*views.View{s.form, s.info, s.main, s.block} {
		if v != nil {
			v.Unbind()
		}
	}
	if s.Profile != nil {
		s.Profile.Close()
	}
	if s.Channel != nil {
		_ = s.Channel.Close()
	}
}
