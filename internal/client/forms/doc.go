// Package forms holds the form controllers: registration and login for an
// anonymous page, profile save and media uploads for a signed-in session.
// Failures are logged and returned; nothing is retried.
package forms
