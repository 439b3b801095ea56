package server

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TobiSchelling/contextapi/internal/news"
)

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	GUID        rssGUID       `xml:"guid"`
	PubDate     string        `xml:"pubDate"`
	Description string        `xml:"description"`
	Categories  []string      `xml:"category"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}

// feedRSS exports one feed page as RSS 2.0. Links point at the HTML story
// pages of this server.
func (s *Server) feedRSS(c *gin.Context) {
	var q feedQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := s.svc.Feed(c.Request.Context(), q.params())
	if err != nil {
		writeError(c, err, "")
		return
	}

	base := baseURL(c.Request)
	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "Context News",
			Link:          base + "/",
			Description:   "Clustered news stories",
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
			Items:         make([]rssItem, 0, len(page.Items)),
		},
	}
	for _, card := range page.Items {
		doc.Channel.Items = append(doc.Channel.Items, cardItem(base, card))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		writeError(c, fmt.Errorf("encoding rss: %w", err), "")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), out...))
}

func cardItem(base string, card news.StoryCard) rssItem {
	link := base + "/stories/" + card.StoryID
	item := rssItem{
		Title:       card.Title,
		Link:        link,
		GUID:        rssGUID{Value: card.StoryID},
		Description: fmt.Sprintf("%d articles from %d sources", card.ArticleCount, card.SourcesCount),
		Categories:  card.Topics,
	}
	if t, err := time.Parse(time.RFC3339, card.StoryPeriod); err == nil {
		item.PubDate = t.Format(time.RFC1123Z)
	}
	if card.ImageURL != nil {
		item.Enclosure = &rssEnclosure{URL: *card.ImageURL, Type: imageType(*card.ImageURL)}
	}
	return item
}

func imageType(u string) string {
	path := strings.ToLower(u)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".gif"):
		return "image/gif"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
