package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// seedNamespace makes demo ids stable across runs.
var seedNamespace = uuid.MustParse("6f1c1a52-3f0e-4c55-9d8e-0f6a8f1d2c41")

// SeedID derives the deterministic demo id for a fixture key.
func SeedID(kind, key string) string {
	return uuid.NewSHA1(seedNamespace, []byte(kind+":"+key)).String()
}

// SeedResult reports what Seed inserted.
type SeedResult struct {
	Stories  int
	Articles int
	Edges    int
}

type seedStory struct {
	key       string
	parent    string
	title     string
	summary   string
	keyPoints []string
	daysAgo   int
	topics    []string
	locations []string
	persons   []string
	articles  []seedArticle
}

type seedArticle struct {
	key      string
	source   string
	title    string
	url      string
	mentions []EntityMention
}

var seedLocations = []Location{
	{QID: "Q61", Name: "Washington, D.C.", LocationType: "city", CountryCode: strPtr("USA"), Latitude: 38.9072, Longitude: -77.0369},
	{QID: "Q84", Name: "London", LocationType: "city", CountryCode: strPtr("GBR"), Latitude: 51.5072, Longitude: -0.1276},
	{QID: "Q956", Name: "Beijing", LocationType: "city", CountryCode: strPtr("CHN"), Latitude: 39.9042, Longitude: 116.4074},
	{QID: "Q8673", Name: "Lagos", LocationType: "city", CountryCode: strPtr("NGA"), Latitude: 6.5244, Longitude: 3.3792},
	{QID: "Q3130", Name: "Sydney", LocationType: "city", CountryCode: strPtr("AUS"), Latitude: -33.8688, Longitude: 151.2093},
	{QID: "Q2844", Name: "Brasília", LocationType: "city", CountryCode: strPtr("BRA"), Latitude: -15.7939, Longitude: -47.8828},
	{QID: "Q3692", Name: "Riyadh", LocationType: "city", CountryCode: strPtr("SAU"), Latitude: 24.7136, Longitude: 46.6753},
}

var seedPersons = []Person{
	{QID: "Q_demo_chair", Name: "Elena Marsh", Description: strPtr("central bank chair"), Nationalities: []string{"USA"}},
	{QID: "Q_demo_envoy", Name: "Tunde Okafor", Description: strPtr("trade envoy"), Nationalities: []string{"NGA"}},
	{QID: "Q_demo_minister", Name: "Li Wen", Description: strPtr("commerce minister"), Nationalities: []string{"CHN"}},
}

var seedStories = []seedStory{
	{
		key: "rates", title: "Central bank holds rates steady",
		summary:   "Policy makers kept **benchmark rates** unchanged while signalling patience.",
		keyPoints: []string{"Rates unchanged", "Inflation cooling slowly"},
		daysAgo:   0, topics: []string{"Economy"}, locations: []string{"Q61"}, persons: []string{"Q_demo_chair"},
		articles: []seedArticle{
			{key: "rates-1", source: "Wire Daily", title: "Fed pauses again", url: "https://example.com/news/fed-pauses",
				mentions: []EntityMention{{EntityType: "gpe", EntityName: "Washington"}, {EntityType: "person", EntityName: "Elena Marsh", InTitle: true}}},
			{key: "rates-2", source: "Market Ledger", title: "Markets shrug at rate hold", url: "https://example.org/markets/rate-hold",
				mentions: []EntityMention{{EntityType: "org", EntityName: "Federal Reserve"}}},
		},
	},
	{
		key: "rates-reaction", parent: "rates", title: "Lenders react to the pause",
		summary: "Mortgage lenders trimmed offers after the decision.",
		daysAgo: 0, topics: []string{"Business"}, locations: []string{"Q61"},
		articles: []seedArticle{
			{key: "rates-3", source: "Wire Daily", title: "Mortgage rates dip", url: "https://example.com/news/mortgage-dip",
				mentions: []EntityMention{{EntityType: "org", EntityName: "Federal Reserve"}}},
		},
	},
	{
		key: "trade", title: "Trade talks resume in London",
		summary:   "Negotiators returned to the table with tariff relief on the agenda.",
		keyPoints: []string{"Tariffs on agenda", "Talks run through the week"},
		daysAgo:   1, topics: []string{"Politics", "Economy"}, locations: []string{"Q84", "Q956"}, persons: []string{"Q_demo_minister"},
		articles: []seedArticle{
			{key: "trade-1", source: "Global Post", title: "Trade delegations meet", url: "https://example.net/world/trade-talks",
				mentions: []EntityMention{{EntityType: "gpe", EntityName: "London", InTitle: true}, {EntityType: "person", EntityName: "Li Wen"}}},
		},
	},
	{
		key: "ports", title: "West African ports expand capacity",
		summary: "A new terminal in Lagos doubles container throughput.",
		daysAgo: 3, topics: []string{"Business"}, locations: []string{"Q8673"}, persons: []string{"Q_demo_envoy"},
		articles: []seedArticle{
			{key: "ports-1", source: "Harbour Review", title: "Lagos terminal opens", url: "https://example.com/shipping/lagos-terminal",
				mentions: []EntityMention{{EntityType: "gpe", EntityName: "Lagos", InTitle: true}, {EntityType: "person", EntityName: "Tunde Okafor"}}},
		},
	},
	{
		key: "reef", title: "Reef survey finds partial recovery",
		summary: "Scientists report coral regrowth after a mild season.",
		daysAgo: 5, topics: []string{"Environment", "Science"}, locations: []string{"Q3130"},
		articles: []seedArticle{
			{key: "reef-1", source: "Science Weekly", title: "Coral bounces back", url: "https://example.org/science/coral",
				mentions: []EntityMention{{EntityType: "gpe", EntityName: "Sydney"}}},
		},
	},
	{
		key: "energy", title: "Energy ministers meet in Riyadh",
		summary: "Producers discussed output targets for the coming quarter.",
		daysAgo: 12, topics: []string{"Economy", "Environment"}, locations: []string{"Q3692", "Q2844"},
		articles: []seedArticle{
			{key: "energy-1", source: "Global Post", title: "Output targets debated", url: "https://example.net/world/output",
				mentions: []EntityMention{{EntityType: "gpe", EntityName: "Riyadh", InTitle: true}}},
		},
	},
}

// seedEdges chains the demo stories so detail pages show related stories.
var seedEdges = [][2]string{
	{"rates", "trade"},
	{"trade", "ports"},
	{"energy", "trade"},
}

// Seed loads a small demo dataset relative to now. Running it twice is a no-op.
func (db *DB) Seed(ctx context.Context, now time.Time) (*SeedResult, error) {
	res := &SeedResult{}
	now = now.UTC().Truncate(time.Second)

	for _, l := range seedLocations {
		if err := db.InsertLocation(ctx, l); err != nil {
			return nil, err
		}
		if err := db.InsertKBEntity(ctx, KBEntity{QID: l.QID, Type: "location", Name: l.Name}); err != nil {
			return nil, err
		}
	}
	for _, p := range seedPersons {
		if err := db.InsertPerson(ctx, p); err != nil {
			return nil, err
		}
		if err := db.InsertKBEntity(ctx, KBEntity{QID: p.QID, Type: "person", Name: p.Name, Description: p.Description}); err != nil {
			return nil, err
		}
	}

	for i, ss := range seedStories {
		period := now.AddDate(0, 0, -ss.daysAgo).Add(-time.Duration(i) * time.Minute)
		story := Story{
			ID:          SeedID("story", ss.key),
			Title:       ss.title,
			Summary:     ss.summary,
			KeyPoints:   ss.keyPoints,
			StoryPeriod: period,
			GeneratedAt: period,
			UpdatedAt:   now,
		}
		if ss.parent != "" {
			parentID := SeedID("story", ss.parent)
			story.ParentStoryID = &parentID
		}
		if err := db.InsertStory(ctx, story); err != nil {
			return nil, err
		}
		res.Stories++

		for _, topic := range ss.topics {
			if err := db.AddStoryTopic(ctx, story.ID, topic); err != nil {
				return nil, err
			}
		}
		for _, qid := range ss.locations {
			if err := db.LinkStoryLocation(ctx, story.ID, qid); err != nil {
				return nil, err
			}
			if err := db.LinkStoryEntity(ctx, story.ID, qid); err != nil {
				return nil, err
			}
		}
		for _, qid := range ss.persons {
			if err := db.LinkStoryPerson(ctx, story.ID, qid); err != nil {
				return nil, err
			}
			if err := db.LinkStoryEntity(ctx, story.ID, qid); err != nil {
				return nil, err
			}
		}

		for j, sa := range ss.articles {
			article := Article{
				ID:          SeedID("article", sa.key),
				Source:      sa.source,
				Title:       sa.title,
				URL:         sa.url,
				PublishedAt: period.Add(-time.Duration(j+1) * time.Hour),
				IngestedAt:  period,
			}
			if err := db.InsertArticle(ctx, article); err != nil {
				return nil, err
			}
			if err := db.LinkStoryArticle(ctx, story.ID, article.ID); err != nil {
				return nil, err
			}
			for _, qid := range ss.locations {
				if err := db.LinkArticleLocation(ctx, article.ID, qid); err != nil {
					return nil, err
				}
				if err := db.LinkArticleEntity(ctx, article.ID, qid, nil); err != nil {
					return nil, err
				}
			}
			for _, m := range sa.mentions {
				m.ArticleID = article.ID
				if err := db.InsertEntityMention(ctx, m); err != nil {
					return nil, err
				}
			}
			res.Articles++
		}
	}

	for _, e := range seedEdges {
		edge := StoryEdge{
			FromStoryID:  SeedID("story", e[0]),
			ToStoryID:    SeedID("story", e[1]),
			RelationType: "related",
			Score:        0.8,
		}
		if err := db.InsertStoryEdge(ctx, edge); err != nil {
			return nil, fmt.Errorf("seeding edges: %w", err)
		}
		res.Edges++
	}

	return res, nil
}

func strPtr(s string) *string { return &s }
