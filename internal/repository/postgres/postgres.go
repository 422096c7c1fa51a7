package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every repository can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Options struct {
	// TxTimeout bounds every transaction, including time spent waiting on locks.
	TxTimeout time.Duration
	// LockTimeout is applied with SET LOCAL lock_timeout. Zero leaves the server default.
	LockTimeout time.Duration
}

type Store struct {
	db        *sql.DB
	opts      Options
	Items     repository.ItemRepository
	Clients   repository.ClientRepository
	Contracts repository.ContractRepository
	Stats     repository.StatsRepository
	Users     repository.UserRepository
}

func NewStore(db *sql.DB, opts Options) *Store {
	if opts.TxTimeout <= 0 {
		opts.TxTimeout = 5 * time.Second
	}
	return &Store{
		db:        db,
		opts:      opts,
		Items:     NewItemRepository(db),
		Clients:   NewClientRepository(db),
		Contracts: NewContractRepository(db),
		Stats:     NewStatsRepository(db, opts.TxTimeout),
		Users:     NewUserRepository(db),
	}
}

// WithinTx runs fn inside a read-committed transaction bounded by TxTimeout.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	if s.opts.LockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.opts.LockTimeout.Milliseconds())
		logger.DatabaseCall("exec", stmt)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return classify(fmt.Errorf("set lock timeout: %w", err))
		}
	}

	if err := fn(ctx, reposFor(tx)); err != nil {
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func reposFor(db DBTX) repository.Repos {
	return repository.Repos{
		Items:     NewItemRepository(db),
		Clients:   NewClientRepository(db),
		Contracts: NewContractRepository(db),
	}
}

// Ping checks connectivity, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}
