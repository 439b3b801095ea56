package database

import (
	"context"
	"encoding/json"
	"fmt"
)

// Inserts are idempotent: a row whose key already exists is left alone.
// The read API never writes; these back the seed command and fixtures.

func encodeList(values []string) (*string, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func decodeList(raw *string) []string {
	if raw == nil || *raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(*raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// InsertArticle stores an article.
func (db *DB) InsertArticle(ctx context.Context, a Article) error {
	_, err := db.exec(ctx,
		`INSERT INTO articles (id, source, title, summary, url, published_at, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		a.ID, a.Source, a.Title, a.Summary, a.URL,
		FormatTimestamp(a.PublishedAt), FormatTimestamp(a.IngestedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting article %s: %w", a.ID, err)
	}
	return nil
}

// InsertStory stores a story.
func (db *DB) InsertStory(ctx context.Context, s Story) error {
	kp, err := encodeList(s.KeyPoints)
	if err != nil {
		return fmt.Errorf("encoding key points: %w", err)
	}
	_, err = db.exec(ctx,
		`INSERT INTO stories (id, title, summary, key_points, story_period, generated_at, updated_at, parent_story_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		s.ID, s.Title, s.Summary, kp, FormatTimestamp(s.StoryPeriod),
		FormatTimestamp(s.GeneratedAt), FormatTimestamp(s.UpdatedAt), s.ParentStoryID,
	)
	if err != nil {
		return fmt.Errorf("inserting story %s: %w", s.ID, err)
	}
	return nil
}

// InsertStoryEdge stores a directed edge between two stories.
func (db *DB) InsertStoryEdge(ctx context.Context, e StoryEdge) error {
	relation := e.RelationType
	if relation == "" {
		relation = "related"
	}
	_, err := db.exec(ctx,
		`INSERT INTO story_edges (from_story_id, to_story_id, relation_type, score)
		 VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		e.FromStoryID, e.ToStoryID, relation, e.Score,
	)
	if err != nil {
		return fmt.Errorf("inserting edge %s->%s: %w", e.FromStoryID, e.ToStoryID, err)
	}
	return nil
}

// InsertLocation stores a resolved location.
func (db *DB) InsertLocation(ctx context.Context, l Location) error {
	_, err := db.exec(ctx,
		`INSERT INTO locations (qid, name, location_type, country_code, latitude, longitude)
		 VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		l.QID, l.Name, l.LocationType, l.CountryCode, l.Latitude, l.Longitude,
	)
	if err != nil {
		return fmt.Errorf("inserting location %s: %w", l.QID, err)
	}
	return nil
}

// InsertPerson stores a resolved person.
func (db *DB) InsertPerson(ctx context.Context, p Person) error {
	nat, err := encodeList(p.Nationalities)
	if err != nil {
		return fmt.Errorf("encoding nationalities: %w", err)
	}
	_, err = db.exec(ctx,
		`INSERT INTO persons (qid, name, description, nationalities, image_url)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		p.QID, p.Name, p.Description, nat, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("inserting person %s: %w", p.QID, err)
	}
	return nil
}

// InsertKBEntity stores a canonical knowledge-base identity.
func (db *DB) InsertKBEntity(ctx context.Context, e KBEntity) error {
	aliases, err := encodeList(e.Aliases)
	if err != nil {
		return fmt.Errorf("encoding aliases: %w", err)
	}
	_, err = db.exec(ctx,
		`INSERT INTO kb_entities (qid, entity_type, name, description, aliases)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		e.QID, e.Type, e.Name, e.Description, aliases,
	)
	if err != nil {
		return fmt.Errorf("inserting kb entity %s: %w", e.QID, err)
	}
	return nil
}

// InsertEntityMention stores a raw entity mention for an article.
func (db *DB) InsertEntityMention(ctx context.Context, m EntityMention) error {
	inTitle := 0
	if m.InTitle {
		inTitle = 1
	}
	count := m.MentionCount
	if count < 1 {
		count = 1
	}
	_, err := db.exec(ctx,
		`INSERT INTO article_entities (article_id, entity_type, entity_name, mention_count, in_title)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		m.ArticleID, m.EntityType, m.EntityName, count, inTitle,
	)
	if err != nil {
		return fmt.Errorf("inserting mention %q: %w", m.EntityName, err)
	}
	return nil
}

func (db *DB) link(ctx context.Context, table, left, right, a, b string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (?, ?) ON CONFLICT DO NOTHING`, table, left, right)
	if _, err := db.exec(ctx, query, a, b); err != nil {
		return fmt.Errorf("linking %s %s/%s: %w", table, a, b, err)
	}
	return nil
}

// LinkStoryArticle attaches an article to a story.
func (db *DB) LinkStoryArticle(ctx context.Context, storyID, articleID string) error {
	return db.link(ctx, "article_stories", "story_id", "article_id", storyID, articleID)
}

// LinkStoryLocation attaches a location to a story.
func (db *DB) LinkStoryLocation(ctx context.Context, storyID, qid string) error {
	return db.link(ctx, "story_locations", "story_id", "qid", storyID, qid)
}

// LinkStoryPerson attaches a person to a story.
func (db *DB) LinkStoryPerson(ctx context.Context, storyID, qid string) error {
	return db.link(ctx, "story_persons", "story_id", "qid", storyID, qid)
}

// LinkStoryEntity attaches a knowledge-base entity to a story.
func (db *DB) LinkStoryEntity(ctx context.Context, storyID, qid string) error {
	return db.link(ctx, "story_entities", "story_id", "qid", storyID, qid)
}

// AddStoryTopic tags a story with a topic label.
func (db *DB) AddStoryTopic(ctx context.Context, storyID, topic string) error {
	return db.link(ctx, "story_topics", "story_id", "topic", storyID, topic)
}

// LinkArticleLocation attaches a location to an article.
func (db *DB) LinkArticleLocation(ctx context.Context, articleID, qid string) error {
	return db.link(ctx, "article_locations", "article_id", "qid", articleID, qid)
}

// LinkArticleEntity records a mention resolved to a knowledge-base entity.
// A nil confidence means the resolver did not report one.
func (db *DB) LinkArticleEntity(ctx context.Context, articleID, qid string, confidence *float64) error {
	_, err := db.exec(ctx,
		`INSERT INTO article_resolved_entities (article_id, qid, confidence)
		 VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		articleID, qid, confidence,
	)
	if err != nil {
		return fmt.Errorf("linking resolved entity %s/%s: %w", articleID, qid, err)
	}
	return nil
}
