package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/contextapi/internal/logging"
	"github.com/TobiSchelling/contextapi/internal/news"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the server.
type Options struct {
	// RequestTimeout bounds every request, including preview fetches.
	RequestTimeout time.Duration
	// AccessLog enables gin's request logging.
	AccessLog bool
}

// Server is the HTTP server for the news API and its HTML pages.
type Server struct {
	svc     *news.Service
	store   Pinger
	pages   map[string]*template.Template
	engine  *gin.Engine
	timeout time.Duration
}

// New creates a new Server.
func New(svc *news.Service, store Pinger, opts Options) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown":      renderMarkdown,
		"formatPeriod":  formatPeriod,
		"join":          strings.Join,
		"regionDisplay": regionDisplay,
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of the base so their "content" blocks
	// do not collide.
	pageNames := []string{"index.html", "story.html", "error.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	s := &Server{svc: svc, store: store, pages: pages, timeout: opts.RequestTimeout}
	s.engine = s.setupRouter(opts.AccessLog)
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRouter(accessLog bool) *gin.Engine {
	r := gin.New()
	if accessLog {
		r.Use(gin.LoggerWithWriter(logging.Writer()))
	}
	r.Use(gin.Recovery(), requestID(), s.deadline())

	staticSub, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(staticSub))

	r.GET("/health", s.health)

	newsAPI := r.Group("/news")
	{
		newsAPI.GET("/stories", s.listStories)
		newsAPI.GET("/stories/news-feed", s.feed)
		newsAPI.GET("/stories/feed.rss", s.feedRSS)
		newsAPI.GET("/stories/:id", s.getStory)
		newsAPI.GET("/sources", s.listSources)
		newsAPI.GET("/articles", s.listArticles)
		newsAPI.GET("/articles/:id", s.getArticle)
		newsAPI.GET("/analytics/top-locations", s.analytics("location"))
		newsAPI.GET("/analytics/top-people", s.analytics("person"))
		newsAPI.GET("/analytics/top-organizations", s.analytics("organization"))
	}
	r.GET("/landing/top-stories", s.topStories)

	r.GET("/", s.indexPage)
	r.GET("/stories/:id", s.storyPage)

	return r
}

// requestID tags every request for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// deadline bounds the whole request. Preview fetches still in flight when it
// fires are abandoned.
func (s *Server) deadline() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error, notFound string) {
	var verr *news.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": verr.Error(), "field": verr.Field})
	case errors.Is(err, news.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": notFound})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"detail": "Request timed out"})
	default:
		logging.Errorf("request %s %s failed [%s]: %v", c.Request.Method, c.Request.URL.Path, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

// bindQuery binds query parameters; malformed values are validation errors.
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid query parameters: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) render(c *gin.Context, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// formatPeriod renders a card's RFC 3339 period as a date.
func formatPeriod(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 02, 2006")
}

func regionDisplay(region string) string {
	words := strings.Split(region, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Serve runs the server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
