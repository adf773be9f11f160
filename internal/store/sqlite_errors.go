package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// sqliteErrorCode extracts the extended SQLite result code from a driver
// error, or 0 if err is not a driver error. Repositories match against codes
// such as [sqlite3.ErrConstraintUnique] to map low-level failures onto
// domain sentinels.
func sqliteErrorCode(err error) sqlite3.ErrNoExtended {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode
	}

	return 0
}
