package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/poputchiki/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

// Storage backends accepted by OpenRepository.
const (
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

// OpenRepository opens the cookie storage for backend at path. For SQLite
// path is the database file, for Pebble a directory.
func OpenRepository(ctx context.Context, backend, path string, log logging.Logger) (cookies.Repository, error) {
	switch backend {
	case BackendSQLite, "":
		r, err := cookies.OpenSQLite(ctx, path, log)
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendPebble:
		r, err := cookies.OpenPebble(path, nil, log)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}
