package store

import (
	"database/sql"

	"github.com/tvsaude/auth-service/internal/logger"
	"github.com/tvsaude/auth-service/migrations"
)

type DB struct {
	*sql.DB
	logger *logger.Logger
}

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
