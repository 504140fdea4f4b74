package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzip"

	domerrors "github.com/pi-elearning/chatbot-go/internal/errors"
	"github.com/pi-elearning/chatbot-go/internal/logger"
	"github.com/pi-elearning/chatbot-go/internal/sliceutil"
)

// userAgent identifies this service to the catalog backend's access logs.
const userAgent = "chatbot-go/catalog-client"

// MetricsRecorder records catalog fetch metrics. Satisfied by *metrics.Metrics.
type MetricsRecorder interface {
	RecordCatalogFetch(endpoint, status string)
	RecordCatalogDuration(duration float64)
	RecordCatalogFallback(source string)
}

// SnapshotStore persists the last successfully fetched course list so the
// offline fallback can serve real data across restarts.
type SnapshotStore interface {
	SaveCourses(ctx context.Context, courses []Course) error
	LoadCourses(ctx context.Context) ([]Course, error)
}

// Client is the course catalog API client with endpoint fallback.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	snapshot   SnapshotStore
	metrics    MetricsRecorder
	logger     *logger.Logger
}

// NewClient creates a catalog client. timeout bounds one endpoint attempt.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, retryDelay time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:    baseURL,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     log.WithModule("catalog"),
	}
}

// SetSnapshot enables snapshot persistence of successful fetches.
func (c *Client) SetSnapshot(s SnapshotStore) {
	c.snapshot = s
}

// SetMetrics enables fetch metrics recording.
func (c *Client) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// BaseURL returns the configured catalog base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchCourses retrieves the course list, degrading through the fallback
// chain: primary endpoint, per-user endpoint, local snapshot, built-in
// dataset. The result is never empty and the method never returns an error;
// the caller cannot distinguish sources and does not need to.
func (c *Client) FetchCourses(ctx context.Context, userID, authToken string) []Course {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordCatalogDuration(time.Since(start).Seconds())
		}
	}()

	// Primary endpoint: full catalog.
	courses, err := c.getCourses(ctx, "primary", c.baseURL+"/api/courses", authToken)
	if err == nil && len(courses) > 0 {
		courses = sliceutil.UniqueBy(courses, func(c Course) string { return c.ID })
		c.storeSnapshot(ctx, courses)
		return courses
	}
	if err != nil {
		c.logger.WithError(err).Warn("Primary catalog endpoint failed")
	}

	// Secondary endpoint: per-user course list.
	if userID != "" {
		courses, err = c.getCourses(ctx, "user", c.baseURL+"/api/courses/user/"+userID, authToken)
		if err == nil && len(courses) > 0 {
			if c.metrics != nil {
				c.metrics.RecordCatalogFallback("user")
			}
			courses = sliceutil.UniqueBy(courses, func(c Course) string { return c.ID })
			c.storeSnapshot(ctx, courses)
			return courses
		}
		if err != nil {
			c.logger.WithError(err).Warn("Per-user catalog endpoint failed")
		}
	}

	// Local snapshot of the last successful fetch.
	if c.snapshot != nil {
		if cached, err := c.snapshot.LoadCourses(ctx); err == nil && len(cached) > 0 {
			if c.metrics != nil {
				c.metrics.RecordCatalogFallback("snapshot")
			}
			c.logger.WithField("count", len(cached)).Info("Serving catalog from snapshot")
			return cached
		}
	}

	// Last resort: the built-in dataset. Matching must always have candidates.
	if c.metrics != nil {
		c.metrics.RecordCatalogFallback("builtin")
	}
	c.logger.Warn("All catalog sources failed, serving built-in dataset")
	return builtinCourses()
}

// ResolveCategory looks up the category of a module via /api/modules/{id}.
// Best effort: callers leave the category absent on failure.
func (c *Client) ResolveCategory(ctx context.Context, moduleID, authToken string) (string, error) {
	if moduleID == "" {
		return "", domerrors.ErrInvalidInput
	}

	body, err := c.get(ctx, "module", c.baseURL+"/api/modules/"+moduleID, authToken)
	if err != nil {
		return "", fmt.Errorf("resolve category for module %s: %w", moduleID, err)
	}

	var envelope moduleEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("parse module payload: %w", err)
	}
	if envelope.Data.Category == "" {
		return "", domerrors.ErrNotFound
	}
	return envelope.Data.Category, nil
}

// getCourses fetches and decodes one course list endpoint.
func (c *Client) getCourses(ctx context.Context, endpoint, url, authToken string) ([]Course, error) {
	body, err := c.get(ctx, endpoint, url, authToken)
	if err != nil {
		return nil, err
	}

	var envelope dataEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		if c.metrics != nil {
			c.metrics.RecordCatalogFetch(endpoint, "malformed")
		}
		return nil, domerrors.NewCatalogError(url, 0, fmt.Errorf("parse payload: %w", err))
	}

	return envelope.Data, nil
}

// get performs a GET with bearer auth, retry with backoff, and gzip decoding.
func (c *Client) get(ctx context.Context, endpoint, url, authToken string) ([]byte, error) {
	var body []byte

	err := retryWithBackoff(ctx, c.maxRetries, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &permanentError{err: fmt.Errorf("create request: %w", err)}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "gzip")
		req.Header.Set("User-Agent", userAgent)
		if authToken != "" {
			req.Header.Set("Authorization", "Bearer "+authToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return domerrors.NewCatalogError(url, 0, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			callErr := domerrors.NewCatalogError(url, resp.StatusCode, domerrors.ErrCatalogUnavailable)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				// Client errors won't heal on retry.
				return &permanentError{err: callErr}
			}
			return callErr
		}

		var reader io.Reader = resp.Body
		if resp.Header.Get("Content-Encoding") == "gzip" {
			gzipReader, err := gzip.NewReader(resp.Body)
			if err != nil {
				return domerrors.NewCatalogError(url, 0, fmt.Errorf("decompress gzip: %w", err))
			}
			defer func() { _ = gzipReader.Close() }()
			reader = gzipReader
		}

		body, err = io.ReadAll(reader)
		if err != nil {
			return domerrors.NewCatalogError(url, 0, fmt.Errorf("read body: %w", err))
		}
		return nil
	})

	if c.metrics != nil {
		if err != nil {
			c.metrics.RecordCatalogFetch(endpoint, "error")
		} else {
			c.metrics.RecordCatalogFetch(endpoint, "success")
		}
	}
	return body, err
}

// storeSnapshot persists a successful fetch, best effort.
func (c *Client) storeSnapshot(ctx context.Context, courses []Course) {
	if c.snapshot == nil {
		return
	}
	if err := c.snapshot.SaveCourses(ctx, courses); err != nil {
		c.logger.WithError(err).Warn("Failed to persist catalog snapshot")
	}
}
