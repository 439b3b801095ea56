package database

import "time"

// Story is a clustered narrative over one or more articles.
type Story struct {
	ID            string
	Title         string
	Summary       string
	KeyPoints     []string
	StoryPeriod   time.Time
	GeneratedAt   time.Time
	UpdatedAt     time.Time
	ParentStoryID *string
}

// Article is an ingested news article.
type Article struct {
	ID          string
	Source      string
	Title       string
	Summary     string
	URL         string
	PublishedAt time.Time
	IngestedAt  time.Time
}

// StoryArticle is one row of the story → article join, in row order.
type StoryArticle struct {
	StoryID   string
	ArticleID string
	Title     string
	Source    string
	URL       string
}

// Location is a resolved geographic entity.
type Location struct {
	QID          string
	Name         string
	LocationType string
	CountryCode  *string
	Latitude     float64
	Longitude    float64
}

// Person is a resolved person entity.
type Person struct {
	QID           string
	Name          string
	Description   *string
	Nationalities []string
	ImageURL      *string
}

// KBEntity is a canonical knowledge-base identity.
type KBEntity struct {
	QID         string
	Type        string
	Name        string
	Description *string
	Aliases     []string
}

// StoryRef is a minimal story reference, used for sub-stories.
type StoryRef struct {
	ID       string
	ParentID string
	Title    string
}

// StoryEdge is a directed relatedness link between two stories.
type StoryEdge struct {
	FromStoryID  string
	ToStoryID    string
	RelationType string
	Score        float64
}

// EntityMention is a raw, unresolved entity mention in an article.
type EntityMention struct {
	ArticleID    string
	EntityType   string
	EntityName   string
	MentionCount int
	InTitle      bool
}

// EntityCount is a named entity with its distinct-article count.
type EntityCount struct {
	Type  string
	Name  string
	Count int
}

// HistoryPoint is one time bucket of an entity's article count.
type HistoryPoint struct {
	Timestamp time.Time
	Count     int
}

// Stats contains aggregate database statistics.
type Stats struct {
	Articles      int
	Stories       int
	TopLevel      int
	StoryEdges    int
	Locations     int
	Persons       int
	Mentions      int
	LatestStoryAt string
}
