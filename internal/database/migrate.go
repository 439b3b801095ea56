package database

import (
	"database/sql"
	"fmt"
	"log"
)

// getSchemaVersion reads the applied schema version for the dialect.
func getSchemaVersion(conn *sql.DB, d dialect) (int, error) {
	return d.schemaVersion(conn)
}

// migrate brings the database schema up to the latest version.
// SQLite tracks the version in PRAGMA user_version, Postgres in a
// schema_version table.
func migrate(conn *sql.DB, d dialect) error {
	current, err := getSchemaVersion(conn, d)
	if err != nil {
		return err
	}

	latest := latestVersion()
	if current >= latest {
		return nil
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		log.Printf("applying migration %d: %s (%s)", m.Version, m.Description, d.name)

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		for _, stmt := range m.Statements {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		// Recorded outside the transaction; the DDL is idempotent so a crash
		// here only means the migration re-runs.
		if err := d.setSchemaVersion(conn, m.Version); err != nil {
			return fmt.Errorf("setting version %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the applied schema version.
func (db *DB) SchemaVersion() (int, error) {
	return getSchemaVersion(db.conn, db.dialect)
}

// LatestSchemaVersion returns the version the migrations bring a database to.
func LatestSchemaVersion() int {
	return latestVersion()
}
