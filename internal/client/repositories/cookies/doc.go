// Package cookies is the durable key/value storage behind the session store.
//
// It behaves like a browser cookie jar: every value has an optional expiry
// and expired values read as absent. Two backends are provided, SQLite
// (schema managed by goose migrations) and Pebble.
package cookies
