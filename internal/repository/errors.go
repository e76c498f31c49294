package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// storageError maps driver errors onto domain sentinels. Constraint
// violations are caller mistakes; everything else is a storage failure.
func storageError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23514", "23502", "23505": // check, not_null, unique
			return fmt.Errorf("%w: %s: %s", domain.ErrValidation, op, pqErr.Message)
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// extended codes carry the constraint kind in the high byte
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return fmt.Errorf("%w: %s: %s", domain.ErrValidation, op, liteErr.Error())
		}
	}

	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var timeNow = time.Now

func nowMillis() int64 {
	return timeNow().UnixMilli()
}
