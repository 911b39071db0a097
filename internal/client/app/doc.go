// Package app is the page controller. It owns the current Session: the
// credentials, user model, bound views, realtime channel and profile form
// of one signed-in user. A session is created on start or login, replaced
// by the next login and dropped on logout. Work that finishes for a session
// that is no longer current is discarded.
package app
