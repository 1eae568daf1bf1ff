package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS dictionaries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	label TEXT NOT NULL,
	value TEXT NOT NULL,
	sort INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE (type, value)
)`,
	DriverMySQL: `CREATE TABLE IF NOT EXISTS dictionaries (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	type VARCHAR(64) NOT NULL,
	label VARCHAR(128) NOT NULL,
	value VARCHAR(255) NOT NULL,
	sort INT NOT NULL DEFAULT 0,
	description VARCHAR(1024) NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uq_dictionaries_type_value (type, value),
	KEY idx_dictionaries_order (type, sort, id)
)`,
}

// Migrate creates the dictionaries table when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	ddl, ok := schema[db.DriverName()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, db.DriverName())
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create dictionaries table: %w", err)
	}
	return nil
}
