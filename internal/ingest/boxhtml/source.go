package boxhtml

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/fortuna/courtside/internal/ingest"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// FileSource reads a saved box-score page from disk.
type FileSource struct {
	Path string
}

// Name implements ingest.Source.
func (s FileSource) Name() string { return "html:" + s.Path }

// Fetch implements ingest.Source.
func (s FileSource) Fetch(ctx context.Context) (*ingest.BoxScore, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// URLSource downloads a static box-score page.
type URLSource struct {
	URL    string
	Client *http.Client
}

// Name implements ingest.Source.
func (s URLSource) Name() string { return s.URL }

// Fetch implements ingest.Source.
func (s URLSource) Fetch(ctx context.Context) (*ingest.BoxScore, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", s.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d", s.URL, resp.StatusCode)
	}
	return Parse(io.LimitReader(resp.Body, 8<<20))
}

// Renderer loads pages in headless Chrome, for box scores drawn by script.
type Renderer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

// NewRenderer starts an allocator for headless Chrome. Close releases it.
func NewRenderer() *Renderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Renderer{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  30 * time.Second,
	}
}

// Close releases resources
func (r *Renderer) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Render returns the page's HTML once a box-score table is visible.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	browserCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(`table.box-score`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp error: %w", err)
	}
	if htmlContent == "" {
		return "", fmt.Errorf("empty HTML content returned")
	}
	return htmlContent, nil
}

// RenderedSource renders URL with a Renderer before parsing it.
type RenderedSource struct {
	URL      string
	Renderer *Renderer
}

// Name implements ingest.Source.
func (s RenderedSource) Name() string { return "rendered:" + s.URL }

// Fetch implements ingest.Source.
func (s RenderedSource) Fetch(ctx context.Context) (*ingest.BoxScore, error) {
	page, err := s.Renderer.Render(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	return Parse(strings.NewReader(page))
}
