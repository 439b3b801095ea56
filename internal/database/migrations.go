package database

// Migration represents a single schema migration step. Statements are run
// one at a time so the same list works for SQLite and Postgres.
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "knowledge base schema",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS articles (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    title TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL,
    published_at TEXT NOT NULL,
    ingested_at TEXT NOT NULL
)`,
			`CREATE TABLE IF NOT EXISTS article_entities (
    article_id TEXT NOT NULL REFERENCES articles(id),
    entity_type TEXT NOT NULL,
    entity_name TEXT NOT NULL,
    mention_count INTEGER NOT NULL DEFAULT 1,
    in_title INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (article_id, entity_type, entity_name)
)`,
			`CREATE TABLE IF NOT EXISTS kb_entities (
    qid TEXT PRIMARY KEY,
    entity_type TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    aliases TEXT
)`,
			`CREATE TABLE IF NOT EXISTS locations (
    qid TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    location_type TEXT NOT NULL,
    country_code TEXT,
    latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
    longitude DOUBLE PRECISION NOT NULL DEFAULT 0
)`,
			`CREATE TABLE IF NOT EXISTS persons (
    qid TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    nationalities TEXT,
    image_url TEXT
)`,
			`CREATE TABLE IF NOT EXISTS article_resolved_entities (
    article_id TEXT NOT NULL REFERENCES articles(id),
    qid TEXT NOT NULL REFERENCES kb_entities(qid),
    confidence DOUBLE PRECISION,
    PRIMARY KEY (article_id, qid)
)`,
			`CREATE TABLE IF NOT EXISTS article_locations (
    article_id TEXT NOT NULL REFERENCES articles(id),
    qid TEXT NOT NULL REFERENCES locations(qid),
    PRIMARY KEY (article_id, qid)
)`,
			`CREATE TABLE IF NOT EXISTS stories (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    key_points TEXT,
    story_period TEXT NOT NULL,
    generated_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    parent_story_id TEXT REFERENCES stories(id)
)`,
			`CREATE TABLE IF NOT EXISTS story_edges (
    from_story_id TEXT NOT NULL REFERENCES stories(id),
    to_story_id TEXT NOT NULL REFERENCES stories(id),
    relation_type TEXT NOT NULL DEFAULT 'related',
    score DOUBLE PRECISION NOT NULL DEFAULT 0,
    PRIMARY KEY (from_story_id, to_story_id)
)`,
			`CREATE TABLE IF NOT EXISTS story_topics (
    story_id TEXT NOT NULL REFERENCES stories(id),
    topic TEXT NOT NULL,
    PRIMARY KEY (story_id, topic)
)`,
			`CREATE TABLE IF NOT EXISTS story_locations (
    story_id TEXT NOT NULL REFERENCES stories(id),
    qid TEXT NOT NULL REFERENCES locations(qid),
    PRIMARY KEY (story_id, qid)
)`,
			`CREATE TABLE IF NOT EXISTS story_persons (
    story_id TEXT NOT NULL REFERENCES stories(id),
    qid TEXT NOT NULL REFERENCES persons(qid),
    PRIMARY KEY (story_id, qid)
)`,
			`CREATE TABLE IF NOT EXISTS story_entities (
    story_id TEXT NOT NULL REFERENCES stories(id),
    qid TEXT NOT NULL,
    PRIMARY KEY (story_id, qid)
)`,
			`CREATE TABLE IF NOT EXISTS article_stories (
    article_id TEXT NOT NULL REFERENCES articles(id),
    story_id TEXT NOT NULL REFERENCES stories(id),
    PRIMARY KEY (article_id, story_id)
)`,
		},
	},
	{
		Version:     2,
		Description: "read path indexes",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_stories_period ON stories(story_period, id)`,
			`CREATE INDEX IF NOT EXISTS idx_stories_parent ON stories(parent_story_id)`,
			`CREATE INDEX IF NOT EXISTS idx_story_edges_to ON story_edges(to_story_id)`,
			`CREATE INDEX IF NOT EXISTS idx_article_stories_story ON article_stories(story_id)`,
			`CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at)`,
			`CREATE INDEX IF NOT EXISTS idx_article_entities_type ON article_entities(entity_type, entity_name)`,
			`CREATE INDEX IF NOT EXISTS idx_locations_country ON locations(country_code)`,
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
