package database

import (
	"database/sql"
	"fmt"
)

const articleColumns = `id, title, author, category, content, date, loaded_at`

// InsertArticles stores a batch of articles in one transaction.
func (db *DB) InsertArticles(articles []Article) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO articles (title, author, category, content, date, loaded_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))`,
	)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range articles {
		if _, err := stmt.Exec(a.Title, a.Author, a.Category, a.Content, a.Date); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting article %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return len(articles), nil
}

// GetAllArticles returns every article, newest first.
func (db *DB) GetAllArticles() ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT ` + articleColumns + ` FROM articles ORDER BY date DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticlesByCategory returns the articles of one category, newest first.
func (db *DB) GetArticlesByCategory(category string) ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT `+articleColumns+` FROM articles WHERE category = ? ORDER BY date DESC, id DESC`,
		category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticlesByAuthor returns articles whose author contains the given text.
func (db *DB) GetArticlesByAuthor(author string) ([]Article, error) {
	rows, err := db.conn.Query(
		`SELECT `+articleColumns+` FROM articles WHERE author LIKE ? ORDER BY date DESC, id DESC`,
		"%"+author+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticleByID returns a single article, or nil if it does not exist.
func (db *DB) GetArticleByID(id int64) (*Article, error) {
	row := db.conn.QueryRow(
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CountArticles returns the number of stored articles.
func (db *DB) CountArticles() (int, error) {
	var n int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteAll removes every stored article.
func (db *DB) DeleteAll() error {
	_, err := db.conn.Exec("DELETE FROM articles")
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInto(s scanner) (*Article, error) {
	var a Article
	var title, content sql.NullString
	if err := s.Scan(&a.ID, &title, &a.Author, &a.Category, &content, &a.Date, &a.LoadedAt); err != nil {
		return nil, err
	}
	a.Title = title.String
	a.Content = content.String
	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		a, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func scanArticle(row *sql.Row) (*Article, error) {
	return scanInto(row)
}
