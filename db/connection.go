package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tagdex/tagdex/errors"
)

// Pragmas applied to every opened database. WAL keeps reads open during
// the import and repair write transactions; the busy timeout covers writer
// contention between concurrent handlers.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Open opens the SQLite database at path. A nil logger is fine; Open then
// operates silently.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening database", "path", path)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to apply %q", pragma)
		}
	}

	if logger != nil {
		logger.Infow("Database opened", "path", path)
	}
	return conn, nil
}
