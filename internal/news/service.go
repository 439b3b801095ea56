// Package news assembles story, article and analytics responses from the
// knowledge base.
package news

import (
	"context"
	"fmt"
	"time"

	"github.com/TobiSchelling/contextapi/internal/database"
	"github.com/TobiSchelling/contextapi/internal/logging"
	"github.com/TobiSchelling/contextapi/internal/taxonomy"
)

// Store is the read side of the knowledge base.
type Store interface {
	ListStories(ctx context.Context, q database.StoryQuery) ([]database.Story, error)
	GetStory(ctx context.Context, id string) (*database.Story, error)
	StoriesByIDs(ctx context.Context, ids []string) ([]database.Story, error)
	SubStories(ctx context.Context, parentIDs []string) (map[string][]database.StoryRef, error)
	StoryArticles(ctx context.Context, storyIDs []string) (map[string][]database.StoryArticle, error)
	StoryLocations(ctx context.Context, storyIDs []string) (map[string][]database.Location, error)
	StoryPersons(ctx context.Context, storyIDs []string) (map[string][]database.Person, error)
	StoryTopics(ctx context.Context, storyIDs []string) (map[string][]string, error)
	ListArticles(ctx context.Context, w database.Window, limit, offset int) ([]database.Article, error)
	GetArticle(ctx context.Context, id string) (*database.Article, error)
	ArticleLocations(ctx context.Context, articleIDs []string) (map[string][]database.Location, error)
	TopEntities(ctx context.Context, entityType string, w database.Window, limit int) ([]database.EntityCount, error)
	EntityHistory(ctx context.Context, entityType string, names []string, w database.Window, bucket time.Duration) (map[string][]database.HistoryPoint, error)
}

// Traverser finds stories related to a story through the story graph.
type Traverser interface {
	Related(ctx context.Context, storyID string) ([]string, error)
}

// ImageFetcher resolves preview images for article URLs. It never fails;
// a URL without an image maps to nil.
type ImageFetcher interface {
	PreviewImages(ctx context.Context, urls []string) map[string]*string
}

// Options configures a Service.
type Options struct {
	// StrictDates rejects a from_date without to_date (or the reverse)
	// instead of falling back to the period.
	StrictDates      bool
	DefaultFeedLimit int
	// Now is the clock used for named periods; defaults to time.Now.
	Now func() time.Time
}

// Service answers read requests. graph and images may be nil, in which case
// related stories and preview images are left empty.
type Service struct {
	store       Store
	graph       Traverser
	images      ImageFetcher
	strictDates bool
	feedLimit   int
	now         func() time.Time
}

// NewService creates a service.
func NewService(store Store, graph Traverser, images ImageFetcher, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultFeedLimit < 1 || opts.DefaultFeedLimit > MaxLimit {
		opts.DefaultFeedLimit = DefaultFeedLimit
	}
	return &Service{
		store:       store,
		graph:       graph,
		images:      images,
		strictDates: opts.StrictDates,
		feedLimit:   opts.DefaultFeedLimit,
		now:         opts.Now,
	}
}

// loadBatch runs the per-page batch lookups, one query per collection.
func (s *Service) loadBatch(ctx context.Context, ids []string, withSubStories bool) (*batch, error) {
	b := &batch{}
	var err error
	if b.articles, err = s.store.StoryArticles(ctx, ids); err != nil {
		return nil, err
	}
	if b.locations, err = s.store.StoryLocations(ctx, ids); err != nil {
		return nil, err
	}
	if b.persons, err = s.store.StoryPersons(ctx, ids); err != nil {
		return nil, err
	}
	if b.topics, err = s.store.StoryTopics(ctx, ids); err != nil {
		return nil, err
	}
	if withSubStories {
		if b.subStories, err = s.store.SubStories(ctx, ids); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// enrich fills in preview images. It must run after every row is loaded.
func (s *Service) enrich(ctx context.Context, b *batch) {
	if s.images == nil {
		b.images = map[string]*string{}
		return
	}
	b.images = s.images.PreviewImages(ctx, b.articleURLs())
}

func ids(stories []database.Story) []string {
	out := make([]string, len(stories))
	for i, st := range stories {
		out[i] = st.ID
	}
	return out
}

// ListStories returns top-level stories with their related collections.
func (s *Service) ListStories(ctx context.Context, p StoryListParams) ([]Story, error) {
	w, err := s.resolveWindow(p.WindowParams)
	if err != nil {
		return nil, err
	}
	codes, err := resolveRegion(p.Region)
	if err != nil {
		return nil, err
	}
	topic, err := resolveTopic(p.Topic)
	if err != nil {
		return nil, err
	}
	limit, err := resolveLimit(p.Limit)
	if err != nil {
		return nil, err
	}

	stories, err := s.store.ListStories(ctx, database.StoryQuery{
		Window: &w, CountryCodes: codes, Topic: topic, ParentOnly: true, Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return []Story{}, nil
	}

	b, err := s.loadBatch(ctx, ids(stories), true)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, b)

	out := make([]Story, 0, len(stories))
	for _, st := range stories {
		out = append(out, buildStory(st, b))
	}
	return out, nil
}

// GetStory returns one story with related stories. Related stories are
// best effort: a traversal failure yields an empty list.
func (s *Service) GetStory(ctx context.Context, id string) (*StoryDetail, error) {
	story, err := s.store.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, fmt.Errorf("story %s: %w", id, ErrNotFound)
	}

	b, err := s.loadBatch(ctx, []string{id}, true)
	if err != nil {
		return nil, err
	}
	related := s.related(ctx, id)
	s.enrich(ctx, b)

	return buildDetail(*story, b, related), nil
}

func (s *Service) related(ctx context.Context, id string) []database.Story {
	if s.graph == nil {
		return nil
	}
	relatedIDs, err := s.graph.Related(ctx, id)
	if err != nil {
		logging.Warnf("related stories for %s unavailable: %v", id, err)
		return nil
	}
	if len(relatedIDs) == 0 {
		return nil
	}
	stories, err := s.store.StoriesByIDs(ctx, relatedIDs)
	if err != nil {
		logging.Warnf("loading related stories for %s: %v", id, err)
		return nil
	}
	return stories
}

// Feed returns one page of feed cards. has_more is computed by fetching one
// row past the page.
func (s *Service) Feed(ctx context.Context, p FeedParams) (*FeedPage, error) {
	limit := s.feedLimit
	if p.Limit != nil {
		var err error
		if limit, err = resolveLimit(p.Limit); err != nil {
			return nil, err
		}
	}
	if p.Offset < 0 {
		return nil, invalid("offset", "must be zero or greater")
	}
	w, err := s.resolveWindow(WindowParams{Period: p.Period})
	if err != nil {
		return nil, err
	}
	codes, err := resolveRegion(p.Region)
	if err != nil {
		return nil, err
	}
	topic, err := resolveTopic(p.Topic)
	if err != nil {
		return nil, err
	}

	stories, err := s.store.ListStories(ctx, database.StoryQuery{
		Window: &w, CountryCodes: codes, Topic: topic, ParentOnly: true,
		Limit: limit + 1, Offset: p.Offset,
	})
	if err != nil {
		return nil, err
	}
	hasMore := len(stories) > limit
	if hasMore {
		stories = stories[:limit]
	}

	page := &FeedPage{Items: []StoryCard{}, Offset: p.Offset, Limit: limit, HasMore: hasMore}
	if len(stories) == 0 {
		return page, nil
	}

	b, err := s.loadBatch(ctx, ids(stories), false)
	if err != nil {
		return nil, err
	}
	s.enrich(ctx, b)
	page.Items = buildCards(stories, b)
	return page, nil
}

// TopStoriesByRegion returns the newest top-level stories for every region,
// in region order. Locations are fetched once for all regions together.
func (s *Service) TopStoriesByRegion(ctx context.Context, period string) ([]RegionTopStories, error) {
	w, err := s.resolveWindow(WindowParams{Period: period})
	if err != nil {
		return nil, err
	}

	byRegion := make(map[taxonomy.Region][]database.Story, len(taxonomy.Regions))
	var all []string
	for _, r := range taxonomy.Regions {
		stories, err := s.store.ListStories(ctx, database.StoryQuery{
			Window: &w, CountryCodes: taxonomy.CountryCodes(r), ParentOnly: true,
			Limit: landingStoriesPerRegion,
		})
		if err != nil {
			return nil, err
		}
		byRegion[r] = stories
		all = append(all, ids(stories)...)
	}
	if len(all) == 0 {
		return []RegionTopStories{}, nil
	}

	locations, err := s.store.StoryLocations(ctx, all)
	if err != nil {
		return nil, err
	}

	out := make([]RegionTopStories, 0, len(taxonomy.Regions))
	for _, r := range taxonomy.Regions {
		stories := make([]LandingStory, 0, len(byRegion[r]))
		for _, st := range byRegion[r] {
			stories = append(stories, LandingStory{
				StoryID:   st.ID,
				Title:     st.Title,
				Locations: toLocations(locations[st.ID]),
			})
		}
		out = append(out, RegionTopStories{Region: string(r), Stories: stories})
	}
	return out, nil
}

// ListArticles returns articles in the window with their locations.
func (s *Service) ListArticles(ctx context.Context, p ArticleListParams) ([]Article, error) {
	w, err := s.resolveWindow(p.WindowParams)
	if err != nil {
		return nil, err
	}
	limit, err := resolveLimit(p.Limit)
	if err != nil {
		return nil, err
	}

	articles, err := s.store.ListArticles(ctx, w, limit, 0)
	if err != nil {
		return nil, err
	}
	articleIDs := make([]string, len(articles))
	for i, a := range articles {
		articleIDs[i] = a.ID
	}
	locations, err := s.store.ArticleLocations(ctx, articleIDs)
	if err != nil {
		return nil, err
	}

	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, buildArticle(a, locations[a.ID]))
	}
	return out, nil
}

// GetArticle returns one article with its locations.
func (s *Service) GetArticle(ctx context.Context, id string) (*Article, error) {
	a, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	locations, err := s.store.ArticleLocations(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	out := buildArticle(*a, locations[id])
	return &out, nil
}
