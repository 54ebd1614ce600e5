package commands

import (
	"database/sql"

	"github.com/tagdex/tagdex/config"
	"github.com/tagdex/tagdex/db"
	"github.com/tagdex/tagdex/errors"
	"github.com/tagdex/tagdex/logger"
	"github.com/tagdex/tagdex/store"
)

// openDatabase opens and migrates the database at the configured path.
// If dbPath is non-empty it overrides the configuration.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
		dbPath = cfg.Database.Path
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}

// openStore opens the database and wraps it in a Store. The caller closes
// the returned *sql.DB.
func openStore() (*store.Store, *sql.DB, error) {
	database, err := openDatabase("")
	if err != nil {
		return nil, nil, err
	}
	return store.New(database, logger.Logger), database, nil
}
