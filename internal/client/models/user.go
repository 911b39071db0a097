// Package models defines the client-side data models: the user record, its
// attachments, and the observable UserModel wrapper.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
)

// ID is an opaque identity. The server sends hex strings, older endpoints
// send numbers; both decode into the same string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Photo is the descriptor returned by the image upload endpoint.
type Photo struct {
	ID           ID     `json:"id,omitempty"`
	User         ID     `json:"user,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Description  string `json:"description,omitempty"`
	Likes        int    `json:"likes,omitempty"`
}

// Video is the descriptor returned by the video upload endpoint.
type Video struct {
	ID           ID     `json:"id,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Duration     int    `json:"duration,omitempty"`
}

// User is the profile record served at /api/user/{id}.
type User struct {
	ID         ID     `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"firstname"`
	SecondName string `json:"secondname"`
	Phone      string `json:"phone"`
	Favorites  []ID   `json:"favorites"`
	Blacklist  []ID   `json:"blacklist"`
	Token      string `json:"token"`
	Photo      *Photo `json:"photo,omitempty"`
	About      string `json:"about,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Online     bool   `json:"online,omitempty"`
}

// Clone returns a deep copy.
func (u User) Clone() User {
	c := u
	c.Favorites = slices.Clone(u.Favorites)
	c.Blacklist = slices.Clone(u.Blacklist)
	if u.Photo != nil {
		p := *u.Photo
		c.Photo = &p
	}
	return c
}

// DisplayName joins the first and second name, falling back to the email.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.SecondName != "":
		return u.FirstName + " " + u.SecondName
	case u.FirstName != "":
		return u.FirstName
	case u.SecondName != "":
		return u.SecondName
	default:
		return u.Email
	}
}

// Profile form field names.
const (
	FieldEmail      = "email"
	FieldFirstName  = "firstname"
	FieldSecondName = "secondname"
	FieldPhone      = "phone"
	FieldAbout      = "about"
	FieldPhoto      = "photo"
)

// ApplyForm copies the profile fields present in v onto u. Absent fields are
// left alone; present but empty fields clear the value. A "photo" field holds
// the JSON descriptor kept in the hidden input of the profile form.
func (u *User) ApplyForm(v url.Values) error {
	var photo *Photo
	if raw := v.Get(FieldPhoto); raw != "" {
		photo = &Photo{}
		if err := json.Unmarshal([]byte(raw), photo); err != nil {
			return fmt.Errorf("photo field: %w", err)
		}
	}

	set := func(key string, dst *string) {
		if _, ok := v[key]; ok {
			*dst = v.Get(key)
		}
	}
	set(FieldEmail, &u.Email)
	set(FieldFirstName, &u.FirstName)
	set(FieldSecondName, &u.SecondName)
	set(FieldPhone, &u.Phone)
	set(FieldAbout, &u.About)
	if photo != nil {
		u.Photo = photo
	}
	return nil
}

// AuthResponse is returned by the register and login endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	ID    ID     `json:"id"`
}
