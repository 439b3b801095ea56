package news

import "time"

// Location is a resolved place attached to a story or article.
type Location struct {
	QID          string  `json:"wikidata_qid"`
	Name         string  `json:"name"`
	LocationType string  `json:"location_type"`
	CountryCode  *string `json:"country_code"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Person is a resolved person attached to a story.
type Person struct {
	QID           string   `json:"wikidata_qid"`
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	Nationalities []string `json:"nationalities"`
	ImageURL      *string  `json:"image_url"`
}

// StoryArticle is one article inside a story view.
type StoryArticle struct {
	ArticleID string  `json:"article_id"`
	Headline  string  `json:"headline"`
	Source    string  `json:"source"`
	URL       string  `json:"url"`
	ImageURL  *string `json:"image_url"`
}

// SubStory references a child story.
type SubStory struct {
	StoryID string `json:"story_id"`
	Title   string `json:"title"`
}

// Story is the list item shape: everything but related stories.
type Story struct {
	StoryID     string         `json:"story_id"`
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	KeyPoints   []string       `json:"key_points"`
	Topics      []string       `json:"topics"`
	Locations   []Location     `json:"locations"`
	Persons     []Person       `json:"persons"`
	StoryPeriod time.Time      `json:"story_period"`
	GeneratedAt time.Time      `json:"generated_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Articles    []StoryArticle `json:"articles"`
	SubStories  []SubStory     `json:"sub_stories"`
}

// RelatedStory is a story reachable through the story graph.
type RelatedStory struct {
	StoryID     string    `json:"story_id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	StoryPeriod time.Time `json:"story_period"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoryDetail is the full single-story shape.
type StoryDetail struct {
	Story
	RelatedStories []RelatedStory `json:"related_stories"`
}

// StoryCard is the lightweight feed projection.
type StoryCard struct {
	StoryID      string     `json:"story_id"`
	Title        string     `json:"title"`
	Topics       []string   `json:"topics"`
	Locations    []Location `json:"locations"`
	Persons      []Person   `json:"persons"`
	ArticleCount int        `json:"article_count"`
	SourcesCount int        `json:"sources_count"`
	StoryPeriod  string     `json:"story_period"`
	UpdatedAt    string     `json:"updated_at"`
	ImageURL     *string    `json:"image_url"`
}

// FeedPage is the paginated envelope around feed cards.
type FeedPage struct {
	Items   []StoryCard `json:"items"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
	HasMore bool        `json:"has_more"`
}

// LandingStory is a story entry on the landing page.
type LandingStory struct {
	StoryID   string     `json:"story_id"`
	Title     string     `json:"title"`
	Locations []Location `json:"locations"`
}

// RegionTopStories groups landing stories by region.
type RegionTopStories struct {
	Region  string         `json:"region"`
	Stories []LandingStory `json:"stories"`
}

// Article is the article list and detail shape.
type Article struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	PublishedAt time.Time  `json:"published_at"`
	IngestedAt  time.Time  `json:"ingested_at"`
	Locations   []Location `json:"locations"`
}

// EntityCount is a ranked entity.
type EntityCount struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HistoryPoint is one time bucket of an entity's count.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// EntityHistory is a ranked entity with its time series.
type EntityHistory struct {
	EntityCount
	History []HistoryPoint `json:"history"`
}
