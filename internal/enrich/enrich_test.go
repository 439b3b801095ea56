package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestFetcher(opts Options) (*Fetcher, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)}
	cache := NewCache(time.Hour)
	cache.now = clock.Now
	return NewFetcher(cache, opts), clock
}

func page(head string) string {
	return "<html><head><title>t</title>" + head + "</head><body>hello</body></html>"
}

func TestExtractOGImageAttributeOrder(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{"property first", page(`<meta property="og:image" content="https://img.example/a.jpg">`), "https://img.example/a.jpg", true},
		{"content first", page(`<meta content="https://img.example/b.jpg" property="og:image" />`), "https://img.example/b.jpg", true},
		{"first of several", page(`<meta property="og:image" content="https://img.example/1.jpg"><meta property="og:image" content="https://img.example/2.jpg">`), "https://img.example/1.jpg", true},
		{"empty content skipped", page(`<meta property="og:image" content=""><meta property="og:image" content="https://img.example/c.jpg">`), "https://img.example/c.jpg", true},
		{"name variant", page(`<meta name="og:image" content="https://img.example/d.jpg">`), "https://img.example/d.jpg", true},
		{"uppercase property", page(`<meta property="OG:IMAGE" content="https://img.example/e.jpg">`), "https://img.example/e.jpg", true},
		{"mixed case name", page(`<META NAME="Og:Image" CONTENT="https://img.example/f.jpg">`), "https://img.example/f.jpg", true},
		{"missing", page(`<meta property="og:title" content="x">`), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractOGImage(strings.NewReader(tt.html), "text/html; charset=utf-8", nil)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractOGImageResolvesRelative(t *testing.T) {
	base, _ := url.Parse("https://news.example/world/story.html")
	got, ok := ExtractOGImage(strings.NewReader(page(`<meta property="og:image" content="/img/lead.png">`)), "text/html", base)
	require.True(t, ok)
	assert.Equal(t, "https://news.example/img/lead.png", got)
}

func TestExtractOGImageDecodesCharset(t *testing.T) {
	latin1 := "<html><head><meta property=\"og:image\" content=\"https://img.example/caf\xe9.jpg\"></head></html>"
	got, ok := ExtractOGImage(strings.NewReader(latin1), "text/html; charset=iso-8859-1", nil)
	require.True(t, ok)
	assert.Equal(t, "https://img.example/café.jpg", got)
}

func TestPreviewImageCachedWithinTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, page(`<meta property="og:image" content="https://img.example/lead.jpg">`))
	}))
	defer srv.Close()

	f, clock := newTestFetcher(Options{})
	ctx := context.Background()

	first := f.PreviewImage(ctx, srv.URL)
	require.NotNil(t, first)
	assert.Equal(t, "https://img.example/lead.jpg", *first)

	clock.Advance(59 * time.Minute)
	second := f.PreviewImage(ctx, srv.URL)
	require.NotNil(t, second)
	assert.Equal(t, int32(1), hits.Load())

	clock.Advance(2 * time.Minute)
	f.PreviewImage(ctx, srv.URL)
	assert.Equal(t, int32(2), hits.Load())
}

func TestPreviewImageNegativeCaching(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f, clock := newTestFetcher(Options{})
	ctx := context.Background()

	assert.Nil(t, f.PreviewImage(ctx, srv.URL))
	assert.Nil(t, f.PreviewImage(ctx, srv.URL))
	assert.Equal(t, int32(1), hits.Load())

	img, ok := f.Cache().Get(srv.URL)
	assert.True(t, ok)
	assert.Nil(t, img)

	clock.Advance(time.Hour)
	f.PreviewImage(ctx, srv.URL)
	assert.Equal(t, int32(2), hits.Load())
}

func TestPreviewImageMissingTagCachedAsNone(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, page(""))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Options{})
	assert.Nil(t, f.PreviewImage(context.Background(), srv.URL))
	assert.Nil(t, f.PreviewImage(context.Background(), srv.URL))
	assert.Equal(t, int32(1), hits.Load())
}

func TestPreviewImageConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	dead := srv.URL
	srv.Close()

	f, _ := newTestFetcher(Options{})
	assert.Nil(t, f.PreviewImage(context.Background(), dead))
	_, ok := f.Cache().Get(dead)
	assert.True(t, ok, "connection failures are cached")
}

func TestPreviewImageTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f, _ := newTestFetcher(Options{Timeout: 50 * time.Millisecond})
	start := time.Now()
	assert.Nil(t, f.PreviewImage(context.Background(), srv.URL))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPreviewImageFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/article", http.StatusFound)
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		fmt.Fprint(w, page(`<meta property="og:image" content="/lead.jpg">`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f, _ := newTestFetcher(Options{UserAgent: "test-agent"})
	img := f.PreviewImage(context.Background(), srv.URL+"/short")
	require.NotNil(t, img)
	assert.Equal(t, srv.URL+"/lead.jpg", *img)
}

func TestPreviewImageRedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Options{MaxRedirects: 3})
	assert.Nil(t, f.PreviewImage(context.Background(), srv.URL+"/loop"))
}

func TestPreviewImagesFanOut(t *testing.T) {
	const delay = 300 * time.Millisecond
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(delay)
		fmt.Fprintf(w, page(`<meta property="og:image" content="https://img.example%s.jpg">`), r.URL.Path)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Options{})
	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c", srv.URL + "/d", srv.URL + "/a", ""}

	start := time.Now()
	images := f.PreviewImages(context.Background(), urls)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 3*delay, "fetches should overlap")
	assert.Equal(t, int32(4), hits.Load(), "duplicate URL fetched once")
	assert.Len(t, images, 4)
	require.NotNil(t, images[srv.URL+"/c"])
	assert.Equal(t, "https://img.example/c.jpg", *images[srv.URL+"/c"])
}

func TestPreviewImagesOneFailureDoesNotAffectOthers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page(`<meta property="og:image" content="https://img.example/img1.jpg">`))
	})
	mux.HandleFunc("/bad", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f, _ := newTestFetcher(Options{})
	images := f.PreviewImages(context.Background(), []string{srv.URL + "/bad", srv.URL + "/good"})

	assert.Nil(t, images[srv.URL+"/bad"])
	require.NotNil(t, images[srv.URL+"/good"])
	assert.Equal(t, "https://img.example/img1.jpg", *images[srv.URL+"/good"])
}

func TestPreviewImageConcurrentCallersShareFetch(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		fmt.Fprint(w, page(`<meta property="og:image" content="https://img.example/shared.jpg">`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Options{})
	var wg sync.WaitGroup
	results := make([]*string, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = f.PreviewImage(context.Background(), srv.URL)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "https://img.example/shared.jpg", *r)
	}
}

func TestPreviewImagesCancelledCallerStopsWaiting(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, page(`<meta property="og:image" content="https://img.example/late.jpg">`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	images := f.PreviewImages(ctx, []string{srv.URL + "/slow"})
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Nil(t, images[srv.URL+"/slow"])

	// The abandoned fetch still completes and fills the cache.
	close(release)
	require.Eventually(t, func() bool {
		img, ok := f.Cache().Get(srv.URL + "/slow")
		return ok && img != nil && *img == "https://img.example/late.jpg"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPreviewImageOtherCallerCancelDoesNotAffectWaiter(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		fmt.Fprint(w, page(`<meta property="og:image" content="https://img.example/a.jpg">`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(Options{})

	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan *string, 1)
	go func() { doneA <- f.PreviewImage(ctxA, srv.URL) }()
	<-started

	doneB := make(chan *string, 1)
	go func() { doneB <- f.PreviewImage(context.Background(), srv.URL) }()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.Nil(t, <-doneA)

	close(release)
	select {
	case img := <-doneB:
		require.NotNil(t, img)
		assert.Equal(t, "https://img.example/a.jpg", *img)
	case <-time.After(3 * time.Second):
		t.Fatal("waiting caller never returned")
	}
	assert.Equal(t, int32(1), hits.Load())
}
