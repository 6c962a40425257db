package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// ErrIncompatibleSchema is returned when an existing articles table lacks the
// columns a report needs.
var ErrIncompatibleSchema = errors.New("incompatible articles table")

// requiredColumns must exist on an articles table created outside lexreport.
var requiredColumns = []string{"id", "title", "author", "category", "content", "date"}

// getSchemaVersion reads PRAGMA user_version from the database.
func getSchemaVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// isExternalDB returns true if the database already has an articles table but
// no user_version, e.g. a dump of the article service's database.
func isExternalDB(conn *sql.DB) (bool, error) {
	var count int
	err := conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='articles'",
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for existing tables: %w", err)
	}
	return count > 0, nil
}

// checkColumns verifies that the articles table carries every required column.
func checkColumns(conn *sql.DB) error {
	for _, col := range requiredColumns {
		var n int
		err := conn.QueryRow(
			"SELECT COUNT(*) FROM pragma_table_info('articles') WHERE name = ?", col,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("inspecting articles table: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: missing column %q", ErrIncompatibleSchema, col)
		}
	}
	return nil
}

// migrate brings the database schema up to the latest version.
// It uses PRAGMA user_version to track which migrations have been applied.
func migrate(conn *sql.DB) error {
	current, err := getSchemaVersion(conn)
	if err != nil {
		return err
	}

	// An articles table with user_version 0 came from elsewhere. If it has
	// the columns of migration 1, adopt it as version 1.
	if current == 0 {
		external, err := isExternalDB(conn)
		if err != nil {
			return err
		}
		if external {
			if err := checkColumns(conn); err != nil {
				return err
			}
			log.Printf("adopting existing articles table as schema version 1")
			if _, err := conn.Exec("PRAGMA user_version = 1"); err != nil {
				return fmt.Errorf("stamping version: %w", err)
			}
			current = 1
		}
	}

	if current >= latestVersion() {
		return nil
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		log.Printf("applying migration %d: %s", m.Version, m.Description)

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		// modernc/sqlite does not allow user_version inside the transaction.
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			return fmt.Errorf("setting version %d: %w", m.Version, err)
		}
	}

	return nil
}
