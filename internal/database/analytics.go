package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TopEntities returns the entities of one type mentioned in the most
// distinct articles inside the window. Ties break on name ascending.
func (db *DB) TopEntities(ctx context.Context, entityType string, w Window, limit int) ([]EntityCount, error) {
	query := `SELECT ae.entity_name, COUNT(DISTINCT ae.article_id) AS n
		FROM article_entities ae
		JOIN articles a ON a.id = ae.article_id
		WHERE LOWER(ae.entity_type) = ? AND a.published_at >= ? AND a.published_at < ?
		GROUP BY ae.entity_name
		ORDER BY n DESC, ae.entity_name ASC`
	args := []any{strings.ToLower(entityType), FormatTimestamp(w.Start), FormatTimestamp(w.End)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting top %s entities: %w", entityType, err)
	}
	defer rows.Close()

	counts := []EntityCount{}
	for rows.Next() {
		ec := EntityCount{Type: strings.ToLower(entityType)}
		if err := rows.Scan(&ec.Name, &ec.Count); err != nil {
			return nil, err
		}
		counts = append(counts, ec)
	}
	return counts, rows.Err()
}

// EntityHistory buckets the distinct-article counts of the named entities by
// hour or by day. Only non-empty buckets are returned, oldest first.
// No names means no query.
func (db *DB) EntityHistory(ctx context.Context, entityType string, names []string, w Window, bucket time.Duration) (map[string][]HistoryPoint, error) {
	result := make(map[string][]HistoryPoint)
	if len(names) == 0 {
		return result, nil
	}
	if bucket <= 0 {
		bucket = 24 * time.Hour
	}

	args := []any{strings.ToLower(entityType), FormatTimestamp(w.Start), FormatTimestamp(w.End)}
	args = append(args, stringArgs(names)...)
	rows, err := db.query(ctx,
		`SELECT DISTINCT ae.entity_name, a.id, a.published_at
		 FROM article_entities ae
		 JOIN articles a ON a.id = ae.article_id
		 WHERE LOWER(ae.entity_type) = ? AND a.published_at >= ? AND a.published_at < ?
		   AND ae.entity_name IN (`+placeholders(len(names))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting %s history: %w", entityType, err)
	}
	defer rows.Close()

	buckets := make(map[string]map[time.Time]map[string]bool)
	for rows.Next() {
		var name, articleID, published string
		if err := rows.Scan(&name, &articleID, &published); err != nil {
			return nil, err
		}
		t, err := ParseTimestamp(published)
		if err != nil {
			return nil, err
		}
		key := t.Truncate(bucket)
		if buckets[name] == nil {
			buckets[name] = make(map[time.Time]map[string]bool)
		}
		if buckets[name][key] == nil {
			buckets[name][key] = make(map[string]bool)
		}
		buckets[name][key][articleID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for name, byTime := range buckets {
		points := make([]HistoryPoint, 0, len(byTime))
		for ts, articles := range byTime {
			points = append(points, HistoryPoint{Timestamp: ts, Count: len(articles)})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
		result[name] = points
	}
	return result, nil
}
