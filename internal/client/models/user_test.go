package models

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalStringsAndNumbers(t *testing.T) {
	var u struct {
		A ID   `json:"a"`
		B ID   `json:"b"`
		C ID   `json:"c"`
		L []ID `json:"l"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"53f1d9","b":7,"c":null,"l":[1,"x"]}`), &u))
	assert.Equal(t, ID("53f1d9"), u.A)
	assert.Equal(t, ID("7"), u.B)
	assert.Equal(t, ID(""), u.C)
	assert.Equal(t, []ID{"1", "x"}, u.L)

	var bad ID
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestUser_DecodeServerDocument(t *testing.T) {
	raw := `{
		"id": "53f1d9",
		"email": "anna@example.com",
		"firstname": "Anna",
		"secondname": "K",
		"phone": "+7 900",
		"favorites": ["a1"],
		"blacklist": [],
		"photo": {"id": "p1", "url": "https://img/p1.jpg", "thumbnail_url": "https://img/p1_t.jpg"},
		"online": true,
		"balance": 10
	}`
	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))

	assert.Equal(t, ID("53f1d9"), u.ID)
	assert.Equal(t, "Anna K", u.DisplayName())
	assert.Equal(t, []ID{"a1"}, u.Favorites)
	require.NotNil(t, u.Photo)
	assert.Equal(t, "https://img/p1.jpg", u.Photo.URL)
	assert.True(t, u.Online)
}

func TestUser_CloneIsDeep(t *testing.T) {
	u := User{Favorites: []ID{"1"}, Photo: &Photo{URL: "a"}}
	c := u.Clone()
	c.Favorites[0] = "2"
	c.Photo.URL = "b"

	assert.Equal(t, ID("1"), u.Favorites[0])
	assert.Equal(t, "a", u.Photo.URL)
}

func TestUser_DisplayNameFallbacks(t *testing.T) {
	assert.Equal(t, "Anna", User{FirstName: "Anna"}.DisplayName())
	assert.Equal(t, "K", User{SecondName: "K"}.DisplayName())
	assert.Equal(t, "a@b", User{Email: "a@b"}.DisplayName())
}

func TestUser_ApplyForm(t *testing.T) {
	u := User{ID: "7", Email: "old@x", FirstName: "Old", Phone: "1"}

	err := u.ApplyForm(url.Values{
		"firstname": {"New"},
		"phone":     {""},
		"photo":     {`{"url":"https://img/p.jpg"}`},
		"unknown":   {"ignored"},
	})
	require.NoError(t, err)

	assert.Equal(t, "old@x", u.Email, "absent fields are kept")
	assert.Equal(t, "New", u.FirstName)
	assert.Equal(t, "", u.Phone, "present empty fields clear")
	require.NotNil(t, u.Photo)
	assert.Equal(t, "https://img/p.jpg", u.Photo.URL)
}

func TestUser_ApplyFormBadPhoto(t *testing.T) {
	u := User{}
	require.Error(t, u.ApplyForm(url.Values{"photo": {"{"}}))
}

func TestUser_ApplyFormBadPhotoChangesNothing(t *testing.T) {
	u := User{FirstName: "Anna", Phone: "555"}
	require.Error(t, u.ApplyForm(url.Values{"firstname": {"Mallory"}, "phone": {""}, "photo": {"{bad"}}))
	assert.Equal(t, User{FirstName: "Anna", Phone: "555"}, u)
}
