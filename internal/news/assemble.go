package news

import (
	"time"

	"github.com/TobiSchelling/contextapi/internal/database"
)

// batch holds the related collections fetched for a page of stories, one
// query each, keyed by story id.
type batch struct {
	articles   map[string][]database.StoryArticle
	locations  map[string][]database.Location
	persons    map[string][]database.Person
	topics     map[string][]string
	subStories map[string][]database.StoryRef
	images     map[string]*string
}

// articleURLs returns every article URL in the batch; the fetcher dedupes.
func (b *batch) articleURLs() []string {
	var urls []string
	for _, rows := range b.articles {
		for _, r := range rows {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

func toLocations(rows []database.Location) []Location {
	out := make([]Location, 0, len(rows))
	for _, l := range rows {
		out = append(out, Location{
			QID:          l.QID,
			Name:         l.Name,
			LocationType: l.LocationType,
			CountryCode:  l.CountryCode,
			Latitude:     l.Latitude,
			Longitude:    l.Longitude,
		})
	}
	return out
}

func toPersons(rows []database.Person) []Person {
	out := make([]Person, 0, len(rows))
	for _, p := range rows {
		nationalities := p.Nationalities
		if nationalities == nil {
			nationalities = []string{}
		}
		out = append(out, Person{
			QID:           p.QID,
			Name:          p.Name,
			Description:   p.Description,
			Nationalities: nationalities,
			ImageURL:      p.ImageURL,
		})
	}
	return out
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// buildStory assembles the list item shape from the batch.
func buildStory(s database.Story, b *batch) Story {
	rows := b.articles[s.ID]
	articles := make([]StoryArticle, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, StoryArticle{
			ArticleID: r.ArticleID,
			Headline:  r.Title,
			Source:    r.Source,
			URL:       r.URL,
			ImageURL:  b.images[r.URL],
		})
	}

	refs := b.subStories[s.ID]
	subs := make([]SubStory, 0, len(refs))
	for _, ref := range refs {
		subs = append(subs, SubStory{StoryID: ref.ID, Title: ref.Title})
	}

	return Story{
		StoryID:     s.ID,
		Title:       s.Title,
		Summary:     s.Summary,
		KeyPoints:   orEmpty(s.KeyPoints),
		Topics:      orEmpty(b.topics[s.ID]),
		Locations:   toLocations(b.locations[s.ID]),
		Persons:     toPersons(b.persons[s.ID]),
		StoryPeriod: s.StoryPeriod,
		GeneratedAt: s.GeneratedAt,
		UpdatedAt:   s.UpdatedAt,
		Articles:    articles,
		SubStories:  subs,
	}
}

// buildDetail adds related stories to the list item shape.
func buildDetail(s database.Story, b *batch, related []database.Story) *StoryDetail {
	rel := make([]RelatedStory, 0, len(related))
	for _, r := range related {
		rel = append(rel, RelatedStory{
			StoryID:     r.ID,
			Title:       r.Title,
			Summary:     r.Summary,
			StoryPeriod: r.StoryPeriod,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return &StoryDetail{Story: buildStory(s, b), RelatedStories: rel}
}

// buildCards projects stories into feed cards. Counts come from the article
// rows. The card image is the enrichment result of the story's first
// article row, even when that result is empty.
func buildCards(stories []database.Story, b *batch) []StoryCard {
	cards := make([]StoryCard, 0, len(stories))
	for _, s := range stories {
		rows := b.articles[s.ID]
		sources := make(map[string]bool, len(rows))
		for _, r := range rows {
			sources[r.Source] = true
		}
		var image *string
		if len(rows) > 0 {
			image = b.images[rows[0].URL]
		}
		cards = append(cards, StoryCard{
			StoryID:      s.ID,
			Title:        s.Title,
			Topics:       orEmpty(b.topics[s.ID]),
			Locations:    toLocations(b.locations[s.ID]),
			Persons:      toPersons(b.persons[s.ID]),
			ArticleCount: len(rows),
			SourcesCount: len(sources),
			StoryPeriod:  s.StoryPeriod.UTC().Format(time.RFC3339),
			UpdatedAt:    s.UpdatedAt.UTC().Format(time.RFC3339),
			ImageURL:     image,
		})
	}
	return cards
}

func buildArticle(a database.Article, locations []database.Location) Article {
	return Article{
		ID:          a.ID,
		Source:      a.Source,
		Title:       a.Title,
		Summary:     a.Summary,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
		IngestedAt:  a.IngestedAt,
		Locations:   toLocations(locations),
	}
}
