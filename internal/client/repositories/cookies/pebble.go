package cookies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
)

var keyPrefix = []byte("cookie/")

// PebbleRepository keeps cookies as JSON values under "cookie/<name>".
type PebbleRepository struct {
	db  *pebble.DB
	now Clock
}

// OpenPebble opens (creating if needed) a Pebble store in dir. Pebble's
// own messages go to log.
func OpenPebble(dir string, now Clock, log logging.Logger) (*PebbleRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cookie dir: %w", err)
	}
	db, err := pebble.Open(filepath.Clean(dir), pebbleOptions(log))
	if err != nil {
		return nil, fmt.Errorf("open cookie store: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &PebbleRepository{db: db, now: now}, nil
}

func cookieKey(name string) []byte {
	return append(append([]byte{}, keyPrefix...), name...)
}

// prefixEnd is the first key after every "cookie/..." key.
func prefixEnd() []byte {
	end := append([]byte{}, keyPrefix...)
	end[len(end)-1]++
	return end
}

func (r *PebbleRepository) Get(ctx context.Context, name string) (*Cookie, error) {
	val, closer, err := r.db.Get(cookieKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie[%s]: %w", name, err)
	}
	defer closer.Close()

	var c Cookie
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cookie[%s]: %w", name, err)
	}
	if c.Expired(r.now()) {
		return nil, nil
	}
	return &c, nil
}

func (r *PebbleRepository) Set(ctx context.Context, cookies ...Cookie) error {
	b := r.db.NewBatch()
	defer b.Close()
	for _, c := range cookies {
		val, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode cookie[%s]: %w", c.Name, err)
		}
		if err := b.Set(cookieKey(c.Name), val, nil); err != nil {
			return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, err)
		}
	}
	return b.Commit(pebble.Sync)
}

func (r *PebbleRepository) Delete(ctx context.Context, names ...string) error {
	b := r.db.NewBatch()
	defer b.Close()
	for _, name := range names {
		if err := b.Delete(cookieKey(name), nil); err != nil {
			return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
		}
	}
	return b.Commit(pebble.Sync)
}

func (r *PebbleRepository) List(ctx context.Context) ([]Cookie, error) {
	it, err := r.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: prefixEnd()})
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer func() { _ = it.Close() }()

	now := r.now()
	var result []Cookie
	for it.First(); it.Valid(); it.Next() {
		var c Cookie
		if err := json.Unmarshal(it.Value(), &c); err != nil {
			return nil, fmt.Errorf("failed to decode cookie %q: %w", it.Key(), err)
		}
		if !c.Expired(now) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *PebbleRepository) Clear(ctx context.Context) error {
	if err := r.db.DeleteRange(keyPrefix, prefixEnd(), pebble.Sync); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

func (r *PebbleRepository) Close() error {
	return r.db.Close()
}

func pebbleOptions(log logging.Logger) *pebble.Options {
	return &pebble.Options{Logger: pebbleLogger{log: log}}
}

// pebbleLogger routes pebble's printf-style logging into logging.Logger.
type pebbleLogger struct {
	log logging.Logger
}

func (p pebbleLogger) Infof(format string, args ...any) {
	if p.log == nil {
		return
	}
	p.log.Debug(context.Background(), fmt.Sprintf(format, args...), "component", "pebble")
}

func (p pebbleLogger) Errorf(format string, args ...any) {
	if p.log == nil {
		return
	}
	p.log.Error(context.Background(), fmt.Sprintf(format, args...), "component", "pebble")
}

func (p pebbleLogger) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.log != nil {
		p.log.Error(context.Background(), msg, "component", "pebble")
	}
	panic(msg)
}
