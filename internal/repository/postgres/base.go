package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BaseRepository holds the handle shared by the case and report stores.
type BaseRepository struct {
	db *sqlx.DB
}

func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// WithTx runs fn in one transaction. It commits only when fn returns nil;
// an error or a panic rolls back.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// jsonColumn marshals v for a JSONB column.
func jsonColumn(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return b, nil
}
