package database

import (
	"context"
	"fmt"
)

// GetStats returns aggregate counts across the knowledge base.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM articles", &s.Articles},
		{"SELECT COUNT(*) FROM stories", &s.Stories},
		{"SELECT COUNT(*) FROM stories WHERE parent_story_id IS NULL", &s.TopLevel},
		{"SELECT COUNT(*) FROM story_edges", &s.StoryEdges},
		{"SELECT COUNT(*) FROM locations", &s.Locations},
		{"SELECT COUNT(*) FROM persons", &s.Persons},
		{"SELECT COUNT(*) FROM article_entities", &s.Mentions},
	}
	for _, c := range counts {
		if err := db.queryRow(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("stats %q: %w", c.query, err)
		}
	}

	var latest *string
	if err := db.queryRow(ctx, "SELECT MAX(story_period) FROM stories").Scan(&latest); err != nil {
		return nil, fmt.Errorf("latest story: %w", err)
	}
	if latest != nil {
		s.LatestStoryAt = *latest
	}
	return &s, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
