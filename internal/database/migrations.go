package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "articles table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL,
    category TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    date TEXT
);

CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "author/category indexes and load timestamp",
		Up: func(tx *sql.Tx) error {
			var hasLoadedAt int
			if err := tx.QueryRow(
				"SELECT COUNT(*) FROM pragma_table_info('articles') WHERE name = 'loaded_at'",
			).Scan(&hasLoadedAt); err != nil {
				return err
			}
			if hasLoadedAt == 0 {
				if _, err := tx.Exec("ALTER TABLE articles ADD COLUMN loaded_at TEXT"); err != nil {
					return err
				}
			}
			_, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
