// Package store is a hand-written repository layer over pgx/v5, one file per
// entity group from pkg/models. It replaces ent's generated client: every
// query here is plain SQL against the schema in pkg/database/migrations.
package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the repository facade every pipeline stage depends on.
type Store struct {
	pool *pgxpool.Pool
}

// New builds a Store over an already-migrated connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for callers that need a transaction
// spanning more than one repository method (pkg/materialize).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }
