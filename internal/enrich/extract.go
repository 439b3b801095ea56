package enrich

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// ogImageKeys are tried in order against every meta tag. Values match
// case-insensitively; attribute order inside the tag does not matter.
var ogImageKeys = []struct{ attr, value string }{
	{"property", "og:image"},
	{"property", "og:image:url"},
	{"name", "og:image"},
}

// ExtractOGImage returns the first og:image reference of an HTML document.
// contentType is the response Content-Type and selects the decoder for
// non-UTF-8 pages. Relative references are resolved against base.
func ExtractOGImage(body io.Reader, contentType string, base *url.URL) (string, bool) {
	r, err := charset.NewReader(body, contentType)
	if err != nil {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", false
	}

	metas := doc.Find("meta")
	for _, key := range ogImageKeys {
		var found string
		metas.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v, ok := s.Attr(key.attr)
			if !ok || !strings.EqualFold(strings.TrimSpace(v), key.value) {
				return true
			}
			content, ok := s.Attr("content")
			content = strings.TrimSpace(content)
			if ok && content != "" {
				found = content
				return false
			}
			return true
		})
		if found != "" {
			return resolve(found, base), true
		}
	}
	return "", false
}

func resolve(ref string, base *url.URL) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return base.ResolveReference(u).String()
}
