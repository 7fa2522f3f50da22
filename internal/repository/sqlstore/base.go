package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-records/internal/model"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
	"github.com/jwalitptl/clinic-records/pkg/metrics"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{
		db:      db,
		dialect: dialectFor(db.DriverName()),
		now:     time.Now,
	}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *BaseRepository) timestamp() string {
	return model.Timestamp(r.now())
}

// track times a database operation; use as defer r.track("op")(&err).
func (r *BaseRepository) track(operation string) func(*error) {
	done := r.metrics.TimeDatabase(operation)
	return func(err *error) {
		done(*err)
	}
}

// dependent names a table whose column references the row being deleted.
type dependent struct {
	table  string
	column string
}

// deleteGuarded counts dependents and deletes the row only when there are
// none, all in one transaction. Dependents are reported before absence.
func (r *BaseRepository) deleteGuarded(ctx context.Context, resource, table string, id int64, deps ...dependent) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var total int64
		for _, d := range deps {
			var n int64
			query := tx.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", d.table, d.column))
			if err := tx.GetContext(ctx, &n, query, id); err != nil {
				return fmt.Errorf("failed to count %s: %w", d.table, err)
			}
			total += n
		}
		if total > 0 {
			return apperrors.DependencyExists(resource, total)
		}

		query := tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table))
		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", resource, err)
		}
		return expectOneRow(result, resource)
	})
}

func exists(ctx context.Context, q sqlx.ExtContext, table string, id int64) (bool, error) {
	var n int64
	query := q.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table))
	if err := sqlx.GetContext(ctx, q, &n, query, id); err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", table, err)
	}
	return n > 0, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectOneRow(result rowsAffected, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(resource, nil)
	}
	return nil
}
