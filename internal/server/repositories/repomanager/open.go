package repomanager

import (
	"context"
	"database/sql"
	"fmt"
)

// Open returns the manager selected by dsn. For PostgreSQL it connects and
// applies pending migrations; the returned *sql.DB is nil for MemoryDSN.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	if dsn == MemoryDSN {
		return nil, NewInMemoryRepositoryManager(), nil
	}

	db, err := OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect error: %w", err)
	}

	m := NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}
	return db, m, nil
}
