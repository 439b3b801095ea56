// Package enrich looks up social preview images for article URLs.
package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/TobiSchelling/contextapi/internal/logging"
)

// maxBodyBytes bounds how much of a page is read looking for the head.
const maxBodyBytes = 1 << 20

// Options configures a Fetcher. Zero values take the defaults.
type Options struct {
	Timeout        time.Duration
	MaxRedirects   int
	MaxConcurrency int
	UserAgent      string
}

// Fetcher resolves preview images through a shared Cache. Failures of any
// kind become a cached nil; nothing is returned as an error.
type Fetcher struct {
	cache     *Cache
	client    *http.Client
	group     singleflight.Group
	userAgent string
	limit     int
}

// NewFetcher creates a fetcher using the given cache.
func NewFetcher(cache *Cache, opts Options) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = 10
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 16
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ContextAPI/1.0 (news aggregator)"
	}
	maxRedirects := opts.MaxRedirects
	return &Fetcher{
		cache: cache,
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		limit:     opts.MaxConcurrency,
	}
}

// Cache returns the fetcher's cache.
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

// PreviewImage returns the preview image for one URL. Concurrent callers for
// the same URL share a single network fetch. The shared fetch is detached
// from any one caller's cancellation and bounded by the client timeout; a
// caller whose ctx ends stops waiting and gets nil.
func (f *Fetcher) PreviewImage(ctx context.Context, pageURL string) *string {
	if img, ok := f.cache.Get(pageURL); ok {
		return img
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := f.group.DoChan(pageURL, func() (any, error) {
		// Another flight may have filled the cache while we queued.
		if img, ok := f.cache.Get(pageURL); ok {
			return img, nil
		}
		img, err := f.fetch(fetchCtx, pageURL)
		if err != nil {
			logging.Debugf("preview image for %s: %v", pageURL, err)
		}
		f.cache.Set(pageURL, img)
		return img, nil
	})

	select {
	case res := <-ch:
		return res.Val.(*string)
	case <-ctx.Done():
		return nil
	}
}

// PreviewImages resolves every distinct URL concurrently, at most
// MaxConcurrency at a time. The result has an entry for every input URL.
// One URL failing never affects another; cancelling ctx abandons the rest.
func (f *Fetcher) PreviewImages(ctx context.Context, urls []string) map[string]*string {
	distinct := make([]string, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		distinct = append(distinct, u)
	}

	results := make([]*string, len(distinct))
	var g errgroup.Group
	g.SetLimit(f.limit)
	for i, u := range distinct {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = f.PreviewImage(ctx, u)
			return nil
		})
	}
	g.Wait()

	out := make(map[string]*string, len(urls))
	for i, u := range distinct {
		out[u] = results[i]
	}
	return out
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (*string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &httpError{code: resp.StatusCode}
	}

	img, ok := ExtractOGImage(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"), resp.Request.URL)
	if !ok {
		return nil, fmt.Errorf("no og:image")
	}
	return &img, nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.code, http.StatusText(e.code))
}
