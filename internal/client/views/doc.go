// Package views renders the user model into the page through the page's
// own template sources. Each render fully replaces its container.
package views
