package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TobiSchelling/contextapi/internal/news"
)

type windowQuery struct {
	Period   string     `form:"period"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02" time_utc:"1"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02" time_utc:"1"`
}

func (q windowQuery) params() news.WindowParams {
	return news.WindowParams{Period: q.Period, FromDate: q.FromDate, ToDate: q.ToDate}
}

type storiesQuery struct {
	windowQuery
	Region string `form:"region"`
	Topic  string `form:"topic"`
	Limit  *int   `form:"limit"`
}

type feedQuery struct {
	Period string `form:"period"`
	Region string `form:"region"`
	Topic  string `form:"topic"`
	Limit  *int   `form:"limit"`
	Offset int    `form:"offset"`
}

func (q feedQuery) params() news.FeedParams {
	return news.FeedParams{Period: q.Period, Region: q.Region, Topic: q.Topic, Limit: q.Limit, Offset: q.Offset}
}

type articlesQuery struct {
	windowQuery
	Limit *int `form:"limit"`
}

type analyticsQuery struct {
	windowQuery
	Limit    *int   `form:"limit"`
	Interval string `form:"interval"`
}

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listStories(c *gin.Context) {
	var q storiesQuery
	if !bindQuery(c, &q) {
		return
	}
	stories, err := s.svc.ListStories(c.Request.Context(), news.StoryListParams{
		WindowParams: q.params(),
		Region:       q.Region,
		Topic:        q.Topic,
		Limit:        q.Limit,
	})
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stories)
}

func (s *Server) feed(c *gin.Context) {
	var q feedQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := s.svc.Feed(c.Request.Context(), q.params())
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getStory(c *gin.Context) {
	detail, err := s.svc.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Story not found")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) listSources(c *gin.Context) {
	sources, err := news.Sources()
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, sources)
}

func (s *Server) listArticles(c *gin.Context) {
	var q articlesQuery
	if !bindQuery(c, &q) {
		return
	}
	articles, err := s.svc.ListArticles(c.Request.Context(), news.ArticleListParams{
		WindowParams: q.params(),
		Limit:        q.Limit,
	})
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (s *Server) getArticle(c *gin.Context) {
	article, err := s.svc.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Article not found")
		return
	}
	c.JSON(http.StatusOK, article)
}

// analytics serves the ranking for one entity type; an interval adds a
// time series per entity.
func (s *Server) analytics(entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q analyticsQuery
		if !bindQuery(c, &q) {
			return
		}
		p := news.AnalyticsParams{
			WindowParams: q.params(),
			EntityType:   entityType,
			Limit:        q.Limit,
			Interval:     q.Interval,
		}

		if q.Interval == "" {
			ranked, err := s.svc.TopEntities(c.Request.Context(), p)
			if err != nil {
				writeError(c, err, "")
				return
			}
			c.JSON(http.StatusOK, ranked)
			return
		}

		series, err := s.svc.TopEntitiesWithHistory(c.Request.Context(), p)
		if err != nil {
			writeError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, series)
	}
}

func (s *Server) topStories(c *gin.Context) {
	var q struct {
		Period string `form:"period"`
	}
	if !bindQuery(c, &q) {
		return
	}
	regions, err := s.svc.TopStoriesByRegion(c.Request.Context(), q.Period)
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, regions)
}
