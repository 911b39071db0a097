// Package cli provides the interactive poputchiki command-line client.
//
// It wires configuration, the cookie store, the REST client and the
// headless page, then either runs a single subcommand or drops into an
// interactive REPL. The page the browser would show is printed on demand
// with "show".
//
// Key features:
//   - Register / Login / Logout
//   - Whoami and profile editing
//   - Photo and video uploads with a progress bar
//   - In-page navigation (open, click, back)
//
// The command tree is built by NewRootCommand. See Shell and runREPL for
// details.
package cli
