package pgdb

import (
	"database/sql"
	"errors"

	"artbid-api/internal/entity"
	"artbid-api/internal/repo/repo_errors"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repo_errors.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repo_errors.ErrAlreadyExists
	}

	return err
}

// rollback discards tx and returns the error that caused it.
func rollback(tx *sql.Tx, err error) error {
	if e := tx.Rollback(); e != nil && !errors.Is(e, sql.ErrTxDone) {
		return errors.Join(err, e)
	}

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func paginate(builder squirrel.SelectBuilder, pg *entity.PaginationInput) squirrel.SelectBuilder {
	if pg == nil {
		return builder
	}

	return builder.Offset(uint64(pg.Offset)).Limit(uint64(pg.Limit))
}
