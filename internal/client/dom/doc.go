// Package dom is the in-process stand-in for the host page: a flat set of
// named elements (inner HTML, attributes, styles, visibility) plus the named
// template sources the views compile from.
//
// Setters on unknown ids are no-ops, like a jQuery selection that matched
// nothing. Validate checks the page contract once at startup.
package dom
