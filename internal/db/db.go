package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB оборачивает пул соединений pgx.
type DB struct {
	pool *pgxpool.Pool
}

// New подключается к PostgreSQL и проверяет соединение.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close закрывает пул.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool возвращает нижележащий pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Definitions возвращает репозиторий определений поверх пула.
func (d *DB) Definitions() *DefinitionRepository {
	return NewDefinitionRepository(d.pool)
}
