package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/award-shares/internal/logger"
	"github.com/pfrederiksen/award-shares/internal/metrics"
	"github.com/pfrederiksen/award-shares/internal/stats"
)

const (
	BaseURL         = "https://www.basketball-reference.com"
	UserAgent       = "award-shares/1.0 (github.com/pfrederiksen/award-shares)"
	Timeout         = 30 * time.Second
	RetryCount      = 3
	RetryWait       = 2 * time.Second
	RetryMaxWait    = 30 * time.Second
	RequestInterval = 3 * time.Second
)

// FetchError is returned when a page cannot be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the server answered 404.
func (e *FetchError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Scraper fetches pages from basketball-reference.com
type Scraper struct {
	client  *resty.Client
	baseURL string
	limiter *rate.Limiter
	metrics *metrics.Recorder
}

// Option configures a Scraper.
type Option func(*options)

type options struct {
	baseURL      string
	userAgent    string
	timeout      time.Duration
	retries      int
	retryWait    time.Duration
	retryMaxWait time.Duration
	interval     time.Duration
	metrics      *metrics.Recorder
	transport    http.RoundTripper
}

// WithBaseURL points the scraper at another host, e.g. an httptest server.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetries sets the retry count and the backoff bounds. A count of 0 disables retries.
func WithRetries(count int, wait, maxWait time.Duration) Option {
	return func(o *options) {
		if count >= 0 {
			o.retries = count
		}
		if wait > 0 {
			o.retryWait = wait
		}
		if maxWait > 0 {
			o.retryMaxWait = maxWait
		}
	}
}

// WithRequestInterval sets the minimum spacing between requests. Zero disables the limit.
func WithRequestInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.interval = d
		}
	}
}

// WithMetrics records fetch counters on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	o := options{
		baseURL:      BaseURL,
		userAgent:    UserAgent,
		timeout:      Timeout,
		retries:      RetryCount,
		retryWait:    RetryWait,
		retryMaxWait: RetryMaxWait,
		interval:     RequestInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}

	limit := rate.Inf
	if o.interval > 0 {
		limit = rate.Every(o.interval)
	}

	s := &Scraper{
		baseURL: o.baseURL,
		limiter: rate.NewLimiter(limit, 1),
		metrics: o.metrics,
	}

	client := resty.New()
	client.SetLogger(restyLogger{})
	if o.transport != nil {
		client.SetTransport(o.transport)
	}
	client.SetTimeout(o.timeout)
	client.SetHeader("User-Agent", o.userAgent)
	client.SetHeader("Accept", "text/html")
	client.SetRetryCount(o.retries)
	client.SetRetryWaitTime(o.retryWait)
	client.SetRetryMaxWaitTime(o.retryMaxWait)
	client.AddRetryCondition(shouldRetry)
	client.AddRetryHook(func(resp *resty.Response, err error) {
		s.metrics.Retry()
		fields := logger.Fields{
			"url":    requestURL(resp),
			"status": statusOf(resp),
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		logger.Debug("Retrying fetch", fields)
	})
	// Every attempt, retries included, waits for the limiter.
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return s.limiter.Wait(req.Context())
	})

	s.client = client
	return s
}

// shouldRetry retries transport errors, 429 and 5xx. Context cancellation is final.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// restyLogger routes resty's internal messages through the structured logger.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	logger.Error("HTTP client error", logger.Fields{"detail": fmt.Sprintf(format, v...)}, nil)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	logger.Warn("HTTP client warning", logger.Fields{"detail": fmt.Sprintf(format, v...)})
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	logger.Debug("HTTP client debug", logger.Fields{"detail": fmt.Sprintf(format, v...)})
}

func requestURL(resp *resty.Response) string {
	if resp == nil || resp.Request == nil {
		return ""
	}
	return resp.Request.URL
}

func statusOf(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}

// Fetch returns the body of the page at url.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	resp, err := s.client.R().SetContext(ctx).Get(url)
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.ObserveFetch(elapsed, "transport")
		return nil, &FetchError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		s.metrics.ObserveFetch(elapsed, fmt.Sprintf("status_%d", resp.StatusCode()))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode()}
	}

	s.metrics.ObserveFetch(elapsed, "")
	logger.Debug("Fetched page", logger.Fields{
		"url":      url,
		"bytes":    len(resp.Body()),
		"duration": elapsed.String(),
	})
	return resp.Body(), nil
}

// Document fetches url and parses it as HTML.
func (s *Scraper) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseDocument(body)
}

func parseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// TeamTotalsURL returns the league season page carrying the team totals table,
// e.g. /leagues/NBA_1999.html for the 1998-99 season.
func (s *Scraper) TeamTotalsURL(league string, year int) string {
	return fmt.Sprintf("%s/leagues/%s_%d.html", s.baseURL, strings.ToUpper(league), year)
}

// AwardsURL returns the awards page for a season year.
func (s *Scraper) AwardsURL(year int) string {
	return fmt.Sprintf("%s/awards/awards_%d.html", s.baseURL, year)
}

// PlayerURL returns a player's page.
func (s *Scraper) PlayerURL(id stats.PlayerID) string {
	return s.baseURL + id.Path()
}
