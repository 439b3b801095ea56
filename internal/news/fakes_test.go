package news

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/TobiSchelling/contextapi/internal/database"
)

// fakeStore is an in-memory Store that records which methods were called.
type fakeStore struct {
	mu sync.Mutex

	stories    []database.Story
	articles   map[string][]database.StoryArticle
	locations  map[string][]database.Location
	persons    map[string][]database.Person
	topics     map[string][]string
	subStories map[string][]database.StoryRef

	articleRows      []database.Article
	articleLocations map[string][]database.Location

	entities []database.EntityCount
	history  map[string][]database.HistoryPoint

	lastQuery   database.StoryQuery
	lastType    string
	historyArgs []string
	calls       map[string]int
	err         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		articles:         map[string][]database.StoryArticle{},
		locations:        map[string][]database.Location{},
		persons:          map[string][]database.Person{},
		topics:           map[string][]string{},
		subStories:       map[string][]database.StoryRef{},
		articleLocations: map[string][]database.Location{},
		history:          map[string][]database.HistoryPoint{},
		calls:            map[string]int{},
	}
}

func (f *fakeStore) called(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeStore) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func sortStories(stories []database.Story) {
	sort.Slice(stories, func(i, j int) bool {
		if !stories[i].StoryPeriod.Equal(stories[j].StoryPeriod) {
			return stories[i].StoryPeriod.After(stories[j].StoryPeriod)
		}
		return stories[i].ID > stories[j].ID
	})
}

func (f *fakeStore) ListStories(ctx context.Context, q database.StoryQuery) ([]database.Story, error) {
	f.called("ListStories")
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	codes := map[string]bool{}
	for _, c := range q.CountryCodes {
		codes[c] = true
	}
	var out []database.Story
	for _, s := range f.stories {
		if q.ParentOnly && s.ParentStoryID != nil {
			continue
		}
		if q.Window != nil && !q.Window.Contains(s.StoryPeriod) {
			continue
		}
		if q.CountryCodes != nil {
			match := false
			for _, l := range f.locations[s.ID] {
				if l.CountryCode != nil && codes[*l.CountryCode] {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		if q.Topic != "" {
			match := false
			for _, t := range f.topics[s.ID] {
				if t == q.Topic {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, s)
	}
	sortStories(out)
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			out = nil
		} else {
			out = out[q.Offset:]
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) GetStory(ctx context.Context, id string) (*database.Story, error) {
	f.called("GetStory")
	for _, s := range f.stories {
		if s.ID == id {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) StoriesByIDs(ctx context.Context, ids []string) ([]database.Story, error) {
	f.called("StoriesByIDs")
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []database.Story
	for _, s := range f.stories {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	sortStories(out)
	return out, nil
}

func pick[T any](f *fakeStore, name string, src map[string][]T, ids []string) map[string][]T {
	f.called(name)
	out := map[string][]T{}
	for _, id := range ids {
		if rows, ok := src[id]; ok {
			out[id] = rows
		}
	}
	return out
}

func (f *fakeStore) SubStories(ctx context.Context, ids []string) (map[string][]database.StoryRef, error) {
	return pick(f, "SubStories", f.subStories, ids), nil
}

func (f *fakeStore) StoryArticles(ctx context.Context, ids []string) (map[string][]database.StoryArticle, error) {
	return pick(f, "StoryArticles", f.articles, ids), nil
}

func (f *fakeStore) StoryLocations(ctx context.Context, ids []string) (map[string][]database.Location, error) {
	return pick(f, "StoryLocations", f.locations, ids), nil
}

func (f *fakeStore) StoryPersons(ctx context.Context, ids []string) (map[string][]database.Person, error) {
	return pick(f, "StoryPersons", f.persons, ids), nil
}

func (f *fakeStore) StoryTopics(ctx context.Context, ids []string) (map[string][]string, error) {
	return pick(f, "StoryTopics", f.topics, ids), nil
}

func (f *fakeStore) ListArticles(ctx context.Context, w database.Window, limit, offset int) ([]database.Article, error) {
	f.called("ListArticles")
	var out []database.Article
	for _, a := range f.articleRows {
		if w.Contains(a.PublishedAt) {
			out = append(out, a)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetArticle(ctx context.Context, id string) (*database.Article, error) {
	f.called("GetArticle")
	for _, a := range f.articleRows {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ArticleLocations(ctx context.Context, ids []string) (map[string][]database.Location, error) {
	return pick(f, "ArticleLocations", f.articleLocations, ids), nil
}

func (f *fakeStore) TopEntities(ctx context.Context, entityType string, w database.Window, limit int) ([]database.EntityCount, error) {
	f.called("TopEntities")
	f.lastType = entityType
	out := f.entities
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) EntityHistory(ctx context.Context, entityType string, names []string, w database.Window, bucket time.Duration) (map[string][]database.HistoryPoint, error) {
	f.called("EntityHistory")
	f.historyArgs = names
	return f.history, nil
}

type fakeTraverser struct {
	related []string
	err     error
	calls   int
}

func (f *fakeTraverser) Related(ctx context.Context, id string) ([]string, error) {
	f.calls++
	return f.related, f.err
}

// fakeImages returns fixed results and records every requested URL.
type fakeImages struct {
	mu        sync.Mutex
	results   map[string]*string
	requested []string
}

func (f *fakeImages) PreviewImages(ctx context.Context, urls []string) map[string]*string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, urls...)
	out := make(map[string]*string, len(urls))
	for _, u := range urls {
		out[u] = f.results[u]
	}
	return out
}

func strp(s string) *string { return &s }
