package cookies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/poputchiki/internal/client/migrations"
	"github.com/dmitrijs2005/poputchiki/internal/dbx"
	"github.com/dmitrijs2005/poputchiki/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps cookies in the `cookies` table.
type SQLiteRepository struct {
	db  *sql.DB
	now Clock
}

// NewSQLiteRepository wraps an already migrated database.
func NewSQLiteRepository(db *sql.DB, now Clock) *SQLiteRepository {
	if now == nil {
		now = time.Now
	}
	return &SQLiteRepository{db: db, now: now}
}

// OpenSQLite opens (creating if needed) the database at dsn and applies the
// embedded migrations.
func OpenSQLite(ctx context.Context, dsn string, log logging.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cookie db: %w", err)
	}
	if err := RunMigrations(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteRepository(db, nil), nil
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB, log logging.Logger) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{log: log})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate cookie db: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) (*Cookie, error) {
	var (
		c       = Cookie{Name: name}
		expires sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cookies WHERE name = ? AND (expires_at IS NULL OR expires_at > ?)`,
		name, r.now().UnixNano(),
	).Scan(&c.Value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie[%s]: %w", name, err)
	}
	if expires.Valid {
		c.ExpiresAt = time.Unix(0, expires.Int64)
	}
	return &c, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, cookies ...Cookie) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, c := range cookies {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO cookies (name, value, expires_at) VALUES (?, ?, ?)
				ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
			`, c.Name, c.Value, expiresColumn(c.ExpiresAt)); err != nil {
				return fmt.Errorf("failed to set cookie[%s]: %w", c.Name, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Delete(ctx context.Context, names ...string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, name := range names {
			if _, err := tx.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name); err != nil {
				return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Cookie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, value, expires_at FROM cookies WHERE expires_at IS NULL OR expires_at > ? ORDER BY name`,
		r.now().UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer rows.Close()

	var result []Cookie
	for rows.Next() {
		var (
			c       Cookie
			expires sql.NullInt64
		)
		if err := rows.Scan(&c.Name, &c.Value, &expires); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		if expires.Valid {
			c.ExpiresAt = time.Unix(0, expires.Int64)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func expiresColumn(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixNano()
}

// gooseLogger routes goose output into the client log.
type gooseLogger struct {
	log logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	if g.log == nil {
		return
	}
	g.log.Debug(context.Background(), fmt.Sprintf(format, v...), "component", "goose")
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	if g.log != nil {
		g.log.Error(context.Background(), msg, "component", "goose")
	}
	panic(msg)
}
