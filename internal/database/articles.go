package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const articleColumns = "id, source, title, summary, url, published_at, ingested_at"

// ListArticles returns articles published inside the window, newest first.
func (db *DB) ListArticles(ctx context.Context, w Window, limit, offset int) ([]Article, error) {
	query := "SELECT " + articleColumns + ` FROM articles
		WHERE published_at >= ? AND published_at < ?
		ORDER BY published_at DESC, id DESC`
	args := []any{FormatTimestamp(w.Start), FormatTimestamp(w.End)}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// GetArticle returns one article, or nil if it does not exist.
func (db *DB) GetArticle(ctx context.Context, id string) (*Article, error) {
	row := db.queryRow(ctx, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting article %s: %w", id, err)
	}
	return a, nil
}

func scanArticle(row rowScanner) (*Article, error) {
	var a Article
	var published, ingested string
	if err := row.Scan(&a.ID, &a.Source, &a.Title, &a.Summary, &a.URL, &published, &ingested); err != nil {
		return nil, err
	}
	var err error
	if a.PublishedAt, err = ParseTimestamp(published); err != nil {
		return nil, err
	}
	if a.IngestedAt, err = ParseTimestamp(ingested); err != nil {
		return nil, err
	}
	return &a, nil
}
