package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StoryQuery describes a story listing. Zero-valued filters are not applied.
type StoryQuery struct {
	Window *Window
	// CountryCodes restricts to stories with at least one location in the
	// set. A non-nil empty slice matches nothing.
	CountryCodes []string
	// Topic is the topic label, e.g. "Politics".
	Topic      string
	ParentOnly bool
	Limit      int
	Offset     int
}

const storyColumns = `s.id, s.title, s.summary, s.key_points, s.story_period,
	s.generated_at, s.updated_at, s.parent_story_id`

// build renders the query as SQL with ? placeholders. Results are ordered by
// story_period then id, both descending, so pagination is stable.
func (q StoryQuery) build(d dialect) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT ")
	b.WriteString(storyColumns)
	b.WriteString(" FROM stories s WHERE 1=1")

	if q.Window != nil {
		b.WriteString(" AND s.story_period >= ? AND s.story_period < ?")
		args = append(args, FormatTimestamp(q.Window.Start), FormatTimestamp(q.Window.End))
	}
	if q.ParentOnly {
		b.WriteString(" AND s.parent_story_id IS NULL")
	}
	if q.CountryCodes != nil {
		if len(q.CountryCodes) == 0 {
			b.WriteString(" AND 1=0")
		} else {
			b.WriteString(` AND EXISTS (SELECT 1 FROM story_locations sl
				JOIN locations l ON l.qid = sl.qid
				WHERE sl.story_id = s.id AND l.country_code IN (`)
			b.WriteString(placeholders(len(q.CountryCodes)))
			b.WriteString("))")
			args = append(args, stringArgs(q.CountryCodes)...)
		}
	}
	if q.Topic != "" {
		b.WriteString(" AND EXISTS (SELECT 1 FROM story_topics st WHERE st.story_id = s.id AND st.topic = ?)")
		args = append(args, q.Topic)
	}

	b.WriteString(" ORDER BY s.story_period DESC, s.id DESC")

	switch {
	case q.Limit > 0:
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
		if q.Offset > 0 {
			b.WriteString(" OFFSET ?")
			args = append(args, q.Offset)
		}
	case q.Offset > 0:
		b.WriteString(" LIMIT " + d.limitAll() + " OFFSET ?")
		args = append(args, q.Offset)
	}

	return b.String(), args
}

// ListStories runs a story listing query.
func (db *DB) ListStories(ctx context.Context, q StoryQuery) ([]Story, error) {
	query, args := q.build(db.dialect)
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()
	return scanStories(rows)
}

// GetStory returns one story, or nil if it does not exist.
func (db *DB) GetStory(ctx context.Context, id string) (*Story, error) {
	row := db.queryRow(ctx, "SELECT "+storyColumns+" FROM stories s WHERE s.id = ?", id)
	s, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting story %s: %w", id, err)
	}
	return s, nil
}

// StoriesByIDs returns the stories with the given ids, newest first.
// Unknown ids are skipped.
func (db *DB) StoriesByIDs(ctx context.Context, ids []string) ([]Story, error) {
	stories := []Story{}
	for _, chunk := range chunkIDs(uniqueIDs(ids), maxBatchIDs) {
		query := "SELECT " + storyColumns + " FROM stories s WHERE s.id IN (" +
			placeholders(len(chunk)) + ")"
		rows, err := db.query(ctx, query, stringArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("getting stories by id: %w", err)
		}
		batch, err := scanStories(rows)
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("getting stories by id: %w", err)
		}
		stories = append(stories, batch...)
	}

	sort.Slice(stories, func(i, j int) bool {
		if !stories[i].StoryPeriod.Equal(stories[j].StoryPeriod) {
			return stories[i].StoryPeriod.After(stories[j].StoryPeriod)
		}
		return stories[i].ID > stories[j].ID
	})
	return stories, nil
}

// SubStories returns the direct children of each parent, keyed by parent id.
func (db *DB) SubStories(ctx context.Context, parentIDs []string) (map[string][]StoryRef, error) {
	result := make(map[string][]StoryRef)
	if len(parentIDs) == 0 {
		return result, nil
	}
	rows, err := db.query(ctx,
		`SELECT id, parent_story_id, title FROM stories
		 WHERE parent_story_id IN (`+placeholders(len(parentIDs))+`)
		 ORDER BY story_period DESC, id DESC`,
		stringArgs(parentIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting sub-stories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref StoryRef
		if err := rows.Scan(&ref.ID, &ref.ParentID, &ref.Title); err != nil {
			return nil, err
		}
		result[ref.ParentID] = append(result[ref.ParentID], ref)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*Story, error) {
	var s Story
	var keyPoints *string
	var period, generated, updated string
	if err := row.Scan(&s.ID, &s.Title, &s.Summary, &keyPoints, &period,
		&generated, &updated, &s.ParentStoryID); err != nil {
		return nil, err
	}
	s.KeyPoints = decodeList(keyPoints)

	var err error
	if s.StoryPeriod, err = ParseTimestamp(period); err != nil {
		return nil, err
	}
	if s.GeneratedAt, err = ParseTimestamp(generated); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = ParseTimestamp(updated); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStories(rows *sql.Rows) ([]Story, error) {
	stories := []Story{}
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *s)
	}
	return stories, rows.Err()
}
