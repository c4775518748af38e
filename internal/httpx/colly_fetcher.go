package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is a desktop browser identity. Several job boards serve
// an empty shell to anything that looks like a bot.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64)"

const (
	acceptHTML = "text/html"
	acceptJSON = "application/json"
)

// ErrBodyTooLarge is wrapped in a FetchError when a response exceeds
// Options.MaxBodyBytes. Truncated pages are never returned.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Options tunes a CollyFetcher. Zero values fall back to defaults.
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	MaxBodyBytes  int
	RatePerSecond float64
	Burst         int
	RespectRobots bool
}

// CollyFetcher wraps Colly for single-attempt page fetching with a
// browser-like request identity. Feed fetches share a per-host limiter;
// single page fetches are user-initiated and never wait on each other.
type CollyFetcher struct {
	opts  Options
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch error (status %d)", e.Status)
	}
	return fmt.Sprintf("fetch error (status %d): %v", e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewCollyFetcher(opts Options) *CollyFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 << 20
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 4
	}
	return &CollyFetcher{
		opts:  opts,
		hosts: make(map[string]*rate.Limiter),
	}
}

// Fetch returns the HTML body of rawURL. Network failures, timeouts,
// oversized bodies and non-2xx responses are reported as *FetchError.
// There is no retry.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	body, err := f.fetch(ctx, rawURL, acceptHTML, false)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON is Fetch for JSON feeds, throttled per host.
func (f *CollyFetcher) FetchJSON(ctx context.Context, rawURL string) ([]byte, error) {
	return f.fetch(ctx, rawURL, acceptJSON, true)
}

func (f *CollyFetcher) fetch(ctx context.Context, rawURL, accept string, throttled bool) ([]byte, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	if throttled {
		if err := f.waitForHost(ctx, hostKey(target)); err != nil {
			return nil, &FetchError{Err: err}
		}
	}

	body, status, err := f.fetchOnce(ctx, target, accept)
	if err != nil {
		return nil, &FetchError{Status: status, Err: err}
	}
	return body, nil
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, target, accept string) ([]byte, int, error) {
	c := f.newCollector()

	var body []byte
	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	hdr := http.Header{}
	hdr.Set("User-Agent", f.opts.UserAgent)
	hdr.Set("Accept", accept)

	if err := c.Request(http.MethodGet, target, nil, collyCtx, hdr); err != nil {
		return nil, status, err
	}
	if reqErr != nil {
		return nil, status, reqErr
	}
	if ctx.Err() != nil {
		return nil, status, ctx.Err()
	}
	if status < 200 || status > 299 {
		return nil, status, fmt.Errorf("status %d", status)
	}
	if len(body) > f.opts.MaxBodyBytes {
		return nil, status, ErrBodyTooLarge
	}
	return body, status, nil
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(colly.UserAgent(f.opts.UserAgent))
	c.IgnoreRobotsTxt = !f.opts.RespectRobots
	c.ParseHTTPErrorResponse = true
	c.AllowURLRevisit = true
	// One byte over the cap tells a full body from a truncated one.
	c.MaxBodySize = f.opts.MaxBodyBytes + 1
	c.SetRequestTimeout(f.opts.Timeout)

	c.OnRequest(func(r *colly.Request) {
		ctx := context.Background()
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok {
				ctx = reqCtx
			}
		}
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

func (f *CollyFetcher) waitForHost(ctx context.Context, host string) error {
	return f.limiter(host).Wait(ctx)
}

func (f *CollyFetcher) limiter(host string) *rate.Limiter {
	key := normalizeHost(host)
	if key == "" {
		key = "default"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.hosts[key]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(f.opts.RatePerSecond), f.opts.Burst)
	f.hosts[key] = l
	return l
}

func normalizeURL(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u, err = url.Parse("https://" + rawURL)
		if err != nil {
			return "", err
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "default"
	}
	return normalizeHost(u.Hostname())
}
