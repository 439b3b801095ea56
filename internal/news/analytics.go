package news

import (
	"context"
	"time"

	"github.com/TobiSchelling/contextapi/internal/database"
	"github.com/TobiSchelling/contextapi/internal/taxonomy"
)

type analyticsQuery struct {
	entityType taxonomy.EntityType
	window     database.Window
	limit      int
}

func (s *Service) resolveAnalytics(p AnalyticsParams) (analyticsQuery, error) {
	et, ok := taxonomy.ParseEntityType(p.EntityType)
	if !ok {
		return analyticsQuery{}, invalid("type", "must be one of location, person, organization")
	}
	w, err := s.resolveWindow(p.WindowParams)
	if err != nil {
		return analyticsQuery{}, err
	}
	limit, err := resolveLimit(p.Limit)
	if err != nil {
		return analyticsQuery{}, err
	}
	return analyticsQuery{entityType: et, window: w, limit: limit}, nil
}

func (s *Service) topEntities(ctx context.Context, q analyticsQuery) ([]EntityCount, error) {
	rows, err := s.store.TopEntities(ctx, q.entityType.MentionLabel(), q.window, q.limit)
	if err != nil {
		return nil, err
	}
	out := make([]EntityCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, EntityCount{Type: string(q.entityType), Name: r.Name, Count: r.Count})
	}
	return out, nil
}

// TopEntities ranks entities by distinct-article count, then by name.
func (s *Service) TopEntities(ctx context.Context, p AnalyticsParams) ([]EntityCount, error) {
	q, err := s.resolveAnalytics(p)
	if err != nil {
		return nil, err
	}
	return s.topEntities(ctx, q)
}

// TopEntitiesWithHistory ranks entities and adds an hourly or daily series
// for the ranked entities only. An empty ranking skips the history query.
func (s *Service) TopEntitiesWithHistory(ctx context.Context, p AnalyticsParams) ([]EntityHistory, error) {
	interval, ok := taxonomy.ParseInterval(p.Interval)
	if !ok {
		return nil, invalid("interval", "must be one of hourly, daily")
	}
	q, err := s.resolveAnalytics(p)
	if err != nil {
		return nil, err
	}

	top, err := s.topEntities(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return []EntityHistory{}, nil
	}

	names := make([]string, len(top))
	for i, e := range top {
		names[i] = e.Name
	}
	bucket := 24 * time.Hour
	if interval == taxonomy.Hourly {
		bucket = time.Hour
	}
	history, err := s.store.EntityHistory(ctx, q.entityType.MentionLabel(), names, q.window, bucket)
	if err != nil {
		return nil, err
	}

	out := make([]EntityHistory, 0, len(top))
	for _, e := range top {
		points := make([]HistoryPoint, 0, len(history[e.Name]))
		for _, h := range history[e.Name] {
			points = append(points, HistoryPoint{Timestamp: h.Timestamp, Count: h.Count})
		}
		out = append(out, EntityHistory{EntityCount: e, History: points})
	}
	return out, nil
}
