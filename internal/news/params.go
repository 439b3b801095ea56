package news

import (
	"time"

	"github.com/TobiSchelling/contextapi/internal/database"
	"github.com/TobiSchelling/contextapi/internal/logging"
	"github.com/TobiSchelling/contextapi/internal/taxonomy"
)

const (
	// MaxLimit bounds every limit parameter.
	MaxLimit = 100
	// DefaultFeedLimit applies when a feed request has no limit.
	DefaultFeedLimit = 20
	// landingStoriesPerRegion is how many stories each landing region shows.
	landingStoriesPerRegion = 3
)

// WindowParams selects a time window: explicit dates, or a named period.
type WindowParams struct {
	Period   string
	FromDate *time.Time
	ToDate   *time.Time
}

// StoryListParams filters the story list.
type StoryListParams struct {
	WindowParams
	Region string
	Topic  string
	Limit  *int
}

// FeedParams filters and pages the feed.
type FeedParams struct {
	Period string
	Region string
	Topic  string
	Limit  *int
	Offset int
}

// ArticleListParams filters the article list.
type ArticleListParams struct {
	WindowParams
	Limit *int
}

// AnalyticsParams selects ranked entities.
type AnalyticsParams struct {
	WindowParams
	EntityType string
	Limit      *int
	Interval   string
}

// resolveWindow turns window params into a half-open range. Explicit dates
// win when both are present. A lone date is ignored in favour of the period
// unless strict mode is on.
func (s *Service) resolveWindow(p WindowParams) (database.Window, error) {
	period := taxonomy.Today
	if p.Period != "" {
		var ok bool
		if period, ok = taxonomy.ParsePeriod(p.Period); !ok {
			return database.Window{}, invalid("period", "must be one of today, week, month")
		}
	}

	switch {
	case p.FromDate != nil && p.ToDate != nil:
		if p.ToDate.Before(*p.FromDate) {
			return database.Window{}, invalid("to_date", "must not be before from_date")
		}
		return database.DateWindow(*p.FromDate, *p.ToDate), nil
	case p.FromDate != nil || p.ToDate != nil:
		if s.strictDates {
			return database.Window{}, invalid("from_date", "from_date and to_date must be given together")
		}
		logging.Debugf("ignoring half-specified date range, using period %s", period)
	}
	return database.TrailingWindow(s.now(), period.Days()), nil
}

// resolveLimit validates an optional limit; nil means unlimited (0).
func resolveLimit(limit *int) (int, error) {
	if limit == nil {
		return 0, nil
	}
	if *limit < 1 || *limit > MaxLimit {
		return 0, invalid("limit", "must be between 1 and %d", MaxLimit)
	}
	return *limit, nil
}

// resolveRegion returns the country codes for a region; nil when unset.
func resolveRegion(region string) ([]string, error) {
	if region == "" {
		return nil, nil
	}
	r, ok := taxonomy.ParseRegion(region)
	if !ok {
		return nil, invalid("region", "unknown region %q", region)
	}
	return taxonomy.CountryCodes(r), nil
}

// resolveTopic returns the topic label; "" when unset.
func resolveTopic(topic string) (string, error) {
	if topic == "" {
		return "", nil
	}
	t, ok := taxonomy.ParseTopic(topic)
	if !ok {
		return "", invalid("topic", "unknown topic %q", topic)
	}
	return t.Label(), nil
}

// Window resolves window params the same way the listing operations do.
func (s *Service) Window(p WindowParams) (database.Window, error) {
	return s.resolveWindow(p)
}
