package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TobiSchelling/contextapi/internal/database"
	"github.com/TobiSchelling/contextapi/internal/logging"
	"github.com/TobiSchelling/contextapi/internal/news"
	"github.com/TobiSchelling/contextapi/internal/taxonomy"
)

type indexData struct {
	Window     string
	Query      feedQuery
	Page       *news.FeedPage
	Regions    []taxonomy.Region
	Periods    []string
	NextOffset int
	PrevOffset int
}

type storyData struct {
	Story *news.StoryDetail
}

type errorData struct {
	Status  int
	Message string
}

func (s *Server) indexPage(c *gin.Context) {
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.render(c, http.StatusBadRequest, "error.html", errorData{Status: http.StatusBadRequest, Message: "Invalid query parameters"})
		return
	}

	page, err := s.svc.Feed(c.Request.Context(), q.params())
	if err != nil {
		s.pageError(c, err)
		return
	}

	var window string
	if w, err := s.svc.Window(news.WindowParams{Period: q.Period}); err == nil {
		window = database.FormatWindowDisplay(w)
	}

	prev := q.Offset - page.Limit
	if prev < 0 {
		prev = 0
	}
	s.render(c, http.StatusOK, "index.html", indexData{
		Window:     window,
		Query:      q,
		Page:       page,
		Regions:    taxonomy.Regions,
		Periods:    []string{string(taxonomy.Today), string(taxonomy.Week), string(taxonomy.Month)},
		NextOffset: q.Offset + page.Limit,
		PrevOffset: prev,
	})
}

func (s *Server) storyPage(c *gin.Context) {
	detail, err := s.svc.GetStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.pageError(c, err)
		return
	}
	s.render(c, http.StatusOK, "story.html", storyData{Story: detail})
}

func (s *Server) pageError(c *gin.Context, err error) {
	var verr *news.ValidationError
	switch {
	case errors.Is(err, news.ErrNotFound):
		s.render(c, http.StatusNotFound, "error.html", errorData{Status: http.StatusNotFound, Message: "Story not found"})
	case errors.As(err, &verr):
		s.render(c, http.StatusBadRequest, "error.html", errorData{Status: http.StatusBadRequest, Message: verr.Error()})
	default:
		logging.Errorf("rendering %s: %v", c.Request.URL.Path, err)
		s.render(c, http.StatusInternalServerError, "error.html", errorData{Status: http.StatusInternalServerError, Message: "Something went wrong"})
	}
}
