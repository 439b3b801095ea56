package database

import (
	"context"
	"fmt"
)

// Batch lookups take every story id of a page and issue a single query.
// An empty id list returns an empty map without touching the database.

// StoryArticles returns the article rows for each story, most recent first.
func (db *DB) StoryArticles(ctx context.Context, storyIDs []string) (map[string][]StoryArticle, error) {
	result := make(map[string][]StoryArticle)
	if len(storyIDs) == 0 {
		return result, nil
	}
	rows, err := db.query(ctx,
		`SELECT ast.story_id, a.id, a.title, a.source, a.url
		 FROM article_stories ast
		 JOIN articles a ON a.id = ast.article_id
		 WHERE ast.story_id IN (`+placeholders(len(storyIDs))+`)
		 ORDER BY ast.story_id, a.published_at DESC, a.id`,
		stringArgs(storyIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting story articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sa StoryArticle
		if err := rows.Scan(&sa.StoryID, &sa.ArticleID, &sa.Title, &sa.Source, &sa.URL); err != nil {
			return nil, err
		}
		result[sa.StoryID] = append(result[sa.StoryID], sa)
	}
	return result, rows.Err()
}

// StoryLocations returns the resolved locations for each story.
func (db *DB) StoryLocations(ctx context.Context, storyIDs []string) (map[string][]Location, error) {
	result := make(map[string][]Location)
	if len(storyIDs) == 0 {
		return result, nil
	}
	rows, err := db.query(ctx,
		`SELECT sl.story_id, l.qid, l.name, l.location_type, l.country_code, l.latitude, l.longitude
		 FROM story_locations sl
		 JOIN locations l ON l.qid = sl.qid
		 WHERE sl.story_id IN (`+placeholders(len(storyIDs))+`)
		 ORDER BY sl.story_id, l.name, l.qid`,
		stringArgs(storyIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting story locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var storyID string
		var l Location
		if err := rows.Scan(&storyID, &l.QID, &l.Name, &l.LocationType, &l.CountryCode,
			&l.Latitude, &l.Longitude); err != nil {
			return nil, err
		}
		result[storyID] = append(result[storyID], l)
	}
	return result, rows.Err()
}

// StoryPersons returns the resolved persons for each story.
func (db *DB) StoryPersons(ctx context.Context, storyIDs []string) (map[string][]Person, error) {
	result := make(map[string][]Person)
	if len(storyIDs) == 0 {
		return result, nil
	}
	rows, err := db.query(ctx,
		`SELECT sp.story_id, p.qid, p.name, p.description, p.nationalities, p.image_url
		 FROM story_persons sp
		 JOIN persons p ON p.qid = sp.qid
		 WHERE sp.story_id IN (`+placeholders(len(storyIDs))+`)
		 ORDER BY sp.story_id, p.name, p.qid`,
		stringArgs(storyIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting story persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var storyID string
		var p Person
		var nationalities *string
		if err := rows.Scan(&storyID, &p.QID, &p.Name, &p.Description, &nationalities, &p.ImageURL); err != nil {
			return nil, err
		}
		p.Nationalities = decodeList(nationalities)
		result[storyID] = append(result[storyID], p)
	}
	return result, rows.Err()
}

// StoryTopics returns the topic labels for each story, alphabetically.
func (db *DB) StoryTopics(ctx context.Context, storyIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(storyIDs) == 0 {
		return result, nil
	}
	rows, err := db.query(ctx,
		`SELECT story_id, topic FROM story_topics
		 WHERE story_id IN (`+placeholders(len(storyIDs))+`)
		 ORDER BY story_id, topic`,
		stringArgs(storyIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting story topics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var storyID, topic string
		if err := rows.Scan(&storyID, &topic); err != nil {
			return nil, err
		}
		result[storyID] = append(result[storyID], topic)
	}
	return result, rows.Err()
}

// ArticleLocations returns the resolved locations for each article.
func (db *DB) ArticleLocations(ctx context.Context, articleIDs []string) (map[string][]Location, error) {
	result := make(map[string][]Location)
	if len(articleIDs) == 0 {
		return result, nil
	}
	rows, err := db.query(ctx,
		`SELECT al.article_id, l.qid, l.name, l.location_type, l.country_code, l.latitude, l.longitude
		 FROM article_locations al
		 JOIN locations l ON l.qid = al.qid
		 WHERE al.article_id IN (`+placeholders(len(articleIDs))+`)
		 ORDER BY al.article_id, l.name, l.qid`,
		stringArgs(articleIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting article locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID string
		var l Location
		if err := rows.Scan(&articleID, &l.QID, &l.Name, &l.LocationType, &l.CountryCode,
			&l.Latitude, &l.Longitude); err != nil {
			return nil, err
		}
		result[articleID] = append(result[articleID], l)
	}
	return result, rows.Err()
}
