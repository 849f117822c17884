package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
)

// MySQLStore implements Store on top of a MySQL connection pool.  Every
// unit of work runs in its own *sql.Tx.
type MySQLStore struct {
	db      *sql.DB
	timeout time.Duration
	log     zerolog.Logger
}

// NewMySQLStore wraps db.  A positive timeout bounds each transaction.
func NewMySQLStore(db *sql.DB, timeout time.Duration, log zerolog.Logger) *MySQLStore {
	return &MySQLStore{db: db, timeout: timeout, log: log.With().Str("component", "store").Logger()}
}

// InTx begins a transaction, runs fn and commits when fn returns nil.
func (s *MySQLStore) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				s.log.Warn().Err(rbErr).Msg("rollback failed")
			}
		}
	}()
	if err = fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// sqlTx adapts one *sql.Tx to the Tx interface.  The per-entity methods
// live in the *_repository.go files.
type sqlTx struct {
	tx *sql.Tx
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullUint(v *uint64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func uintPtr(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	u := uint64(v.Int64)
	return &u
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
