package views

import (
	"encoding/json"
	"html/template"
	"net/url"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrijs2005/poputchiki/internal/client/models"
)

// UserView is what the templates see.
type UserView struct {
	ID         string
	Name       string
	Email      string
	FirstName  string
	SecondName string
	Phone      string
	AvatarURL  string
	Online     bool
	ProfileURL string

	PhotoURL     string
	ThumbnailURL string
	// PhotoJSON is the photo document as stored in the hidden form field.
	PhotoJSON string

	// About is sanitized markup for display; AboutText is the raw value for
	// editing and is escaped like any other string.
	About     template.HTML
	AboutText string

	FavoritesCount int
	BlacklistCount int
}

func NewUserView(u models.User, policy *bluemonday.Policy) UserView {
	v := UserView{
		ID:             u.ID.String(),
		Name:           u.DisplayName(),
		Email:          u.Email,
		FirstName:      u.FirstName,
		SecondName:     u.SecondName,
		Phone:          u.Phone,
		AvatarURL:      u.AvatarURL,
		Online:         u.Online,
		AboutText:      u.About,
		FavoritesCount: len(u.Favorites),
		BlacklistCount: len(u.Blacklist),
	}
	if u.ID != "" {
		v.ProfileURL = "/user/" + url.PathEscape(u.ID.String())
	}
	if u.About != "" {
		v.About = template.HTML(policy.Sanitize(u.About))
	}
	if u.Photo != nil {
		v.PhotoURL = u.Photo.URL
		v.ThumbnailURL = u.Photo.ThumbnailURL
		if b, err := json.Marshal(u.Photo); err == nil {
			v.PhotoJSON = string(b)
		}
	}
	if v.ThumbnailURL == "" {
		v.ThumbnailURL = v.PhotoURL
	}
	return v
}
