package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/mfocus/internal/model"
)

const (
	DefaultBaseURL = "http://localhost:5600"
	DefaultLimit   = 10000
	requestTimeout = 15 * time.Second
	maxBodySize    = 64 << 20 // 64 MB
)

// ErrBucketNotFound indicates the ActivityWatch server has no such bucket.
var ErrBucketNotFound = errors.New("activitywatch: bucket not found")

// DefaultBucket returns the window watcher bucket name for this host.
func DefaultBucket() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return "aw-watcher-window_" + host
}

// ActivityWatch reads events from a window watcher bucket over the REST API.
type ActivityWatch struct {
	baseURL string
	bucket  string
	limit   int
	http    *http.Client
}

// NewActivityWatch creates a client. Empty or zero arguments fall back to the defaults.
func NewActivityWatch(baseURL, bucket string, limit int) *ActivityWatch {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if bucket == "" {
		bucket = DefaultBucket()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &ActivityWatch{
		baseURL: baseURL,
		bucket:  bucket,
		limit:   limit,
		http:    &http.Client{},
	}
}

// Bucket returns the bucket this client reads.
func (a *ActivityWatch) Bucket() string {
	return a.bucket
}

// Events fetches up to the configured limit of events in [start, end).
func (a *ActivityWatch) Events(ctx context.Context, start, end time.Time) ([]model.WindowEvent, error) {
	q := url.Values{}
	q.Set("start", start.UTC().Format(time.RFC3339Nano))
	q.Set("end", end.UTC().Format(time.RFC3339Nano))
	q.Set("limit", strconv.Itoa(a.limit))

	path := fmt.Sprintf("/api/0/buckets/%s/events?%s", url.PathEscape(a.bucket), q.Encode())
	body, err := a.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var raw []RawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("activitywatch: parsing events: %w", err)
	}
	return convert(raw)
}

// Ping checks that the server answers /api/0/info.
func (a *ActivityWatch) Ping(ctx context.Context) error {
	_, err := a.get(ctx, "/api/0/info")
	return err
}

func (a *ActivityWatch) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("activitywatch: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("activitywatch: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, a.bucket)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("activitywatch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("activitywatch: reading response: %w", err)
	}
	return body, nil
}
