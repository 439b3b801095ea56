package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// EdgeFrontier returns every edge touching any of the given stories, in
// either direction. Large frontiers are queried in chunks; an edge whose two
// ends fall in different chunks is returned once.
func (db *DB) EdgeFrontier(ctx context.Context, storyIDs []string) ([]StoryEdge, error) {
	edges := []StoryEdge{}
	seen := make(map[[2]string]bool)
	for _, chunk := range chunkIDs(storyIDs, maxBatchIDs) {
		ph := placeholders(len(chunk))
		args := append(stringArgs(chunk), stringArgs(chunk)...)
		rows, err := db.query(ctx,
			`SELECT from_story_id, to_story_id, relation_type, score FROM story_edges
			 WHERE from_story_id IN (`+ph+`) OR to_story_id IN (`+ph+`)`,
			args...,
		)
		if err != nil {
			return nil, fmt.Errorf("getting edge frontier: %w", err)
		}
		batch, err := scanEdges(rows)
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("getting edge frontier: %w", err)
		}
		for _, e := range batch {
			key := [2]string{e.FromStoryID, e.ToStoryID}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, e)
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].FromStoryID != edges[j].FromStoryID {
			return edges[i].FromStoryID < edges[j].FromStoryID
		}
		return edges[i].ToStoryID < edges[j].ToStoryID
	})
	return edges, nil
}

// AllEdges returns the whole edge table, used to mirror it into a graph store.
func (db *DB) AllEdges(ctx context.Context) ([]StoryEdge, error) {
	rows, err := db.query(ctx,
		`SELECT from_story_id, to_story_id, relation_type, score FROM story_edges
		 ORDER BY from_story_id, to_story_id`)
	if err != nil {
		return nil, fmt.Errorf("listing edges: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func scanEdges(rows *sql.Rows) ([]StoryEdge, error) {
	edges := []StoryEdge{}
	for rows.Next() {
		var e StoryEdge
		if err := rows.Scan(&e.FromStoryID, &e.ToStoryID, &e.RelationType, &e.Score); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
