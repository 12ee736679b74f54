package sync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-listings/internal/config"
	"go-listings/internal/features/integration"

	"go.uber.org/zap"
)

const (
	defaultFetchTimeout = 30 * time.Second
	maxFetchAttempts    = 3
	defaultAPIKeyHeader = "X-API-Key"
)

// wrapperKeys are the response-envelope keys whose array value is unwrapped
// into the record list.
var wrapperKeys = []string{"data", "results", "items", "properties", "listings", "imoveis"}

type FetchErrorKind string

const (
	FetchTransport     FetchErrorKind = "transport"
	FetchHTTP          FetchErrorKind = "http"
	FetchThrottled     FetchErrorKind = "throttled"
	FetchInvalidFormat FetchErrorKind = "invalid_format"
)

// FetchError is the terminal failure of a fetch, carrying the taxonomy kind
// so callers can distinguish throttling from hard failure.
type FetchError struct {
	Kind   FetchErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s failed (%s, status %d): %v", e.URL, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// BackoffPolicy maps an attempt number to the delay before the next try.
type BackoffPolicy func(attempt int) time.Duration

// LinearBackoff waits ~1s multiplied by the attempt number.
func LinearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

// ThrottleBackoff waits ~2s multiplied by the attempt number, giving a
// throttling upstream more room than a flaky one.
func ThrottleBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 2 * time.Second
}

// Fetcher retrieves pages of raw external records over authenticated HTTP.
type Fetcher struct {
	Client          *http.Client
	Timeout         time.Duration
	MaxAttempts     int
	Backoff         BackoffPolicy
	ThrottleBackoff BackoffPolicy
	Logger          *zap.Logger
}

func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	timeout := defaultFetchTimeout
	if cfg.FetchTimeoutSec > 0 {
		timeout = time.Duration(cfg.FetchTimeoutSec) * time.Second
	}

	return &Fetcher{
		Client:          &http.Client{},
		Timeout:         timeout,
		MaxAttempts:     maxFetchAttempts,
		Backoff:         LinearBackoff,
		ThrottleBackoff: ThrottleBackoff,
		Logger:          logger,
	}
}

// Fetch returns one page of raw records from the integration's endpoint.
// Transport failures and throttling are retried with backoff up to the
// attempt ceiling; exhausting retries surfaces the last FetchError.
func (f *Fetcher) Fetch(ctx context.Context, cfg *integration.Integration, limit int) ([]map[string]interface{}, error) {
	endpoint, err := buildURL(cfg.BaseURL, limit)
	if err != nil {
		return nil, &FetchError{Kind: FetchInvalidFormat, URL: cfg.BaseURL, Err: err}
	}

	var lastErr *FetchError
	for attempt := 1; attempt <= f.MaxAttempts; attempt++ {
		records, fetchErr := f.attempt(ctx, cfg, endpoint)
		if fetchErr == nil {
			return records, nil
		}
		lastErr = fetchErr

		if fetchErr.Kind == FetchInvalidFormat {
			// Format errors are terminal, no retry
			return nil, fetchErr
		}

		if attempt == f.MaxAttempts {
			break
		}

		delay := f.Backoff(attempt)
		if fetchErr.Kind == FetchThrottled {
			delay = f.ThrottleBackoff(attempt)
		}

		f.Logger.Warn("fetch attempt failed, retrying",
			zap.String("url", endpoint),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(fetchErr),
		)

		select {
		case <-ctx.Done():
			return nil, &FetchError{Kind: FetchTransport, URL: endpoint, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// Probe performs a limit=1 fetch against a candidate configuration and
// reports round-trip latency, used to validate a config before activation.
func (f *Fetcher) Probe(ctx context.Context, cfg *integration.Integration) (time.Duration, error) {
	start := time.Now()
	_, err := f.Fetch(ctx, cfg, 1)
	return time.Since(start), err
}

func (f *Fetcher) attempt(ctx context.Context, cfg *integration.Integration, endpoint string) ([]map[string]interface{}, *FetchError) {
	reqCtx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransport, URL: endpoint, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "go-listings-sync")
	applyAuth(req, cfg)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransport, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &FetchError{Kind: FetchThrottled, URL: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("rate limited")}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Kind: FetchHTTP, URL: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "json") {
		return nil, &FetchError{Kind: FetchInvalidFormat, URL: endpoint, Err: fmt.Errorf("non-JSON content type %q", contentType)}
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &FetchError{Kind: FetchInvalidFormat, URL: endpoint, Err: fmt.Errorf("undecodable body: %w", err)}
	}

	return normalizeRecords(payload), nil
}

func buildURL(base string, limit int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if limit > 0 {
		q := u.Query()
		q.Set("limit", strconv.Itoa(limit))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func applyAuth(req *http.Request, cfg *integration.Integration) {
	switch cfg.AuthType {
	case integration.AuthAPIKey:
		header := cfg.APIKeyHeader
		if header == "" {
			header = defaultAPIKeyHeader
		}
		req.Header.Set(header, cfg.AuthSecret)
	case integration.AuthBearer:
		req.Header.Set("Authorization", "Bearer "+cfg.AuthSecret)
	case integration.AuthBasic:
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(cfg.AuthSecret)))
	}
}

// normalizeRecords flattens the response body into a record list: an array
// is used as-is, a known wrapper object is unwrapped, and any other object
// is treated as a single-record list.
func normalizeRecords(payload interface{}) []map[string]interface{} {
	switch body := payload.(type) {
	case []interface{}:
		return toRecordList(body)
	case map[string]interface{}:
		for _, key := range wrapperKeys {
			if wrapped, ok := body[key].([]interface{}); ok {
				return toRecordList(wrapped)
			}
		}
		return []map[string]interface{}{body}
	default:
		return []map[string]interface{}{}
	}
}

func toRecordList(items []interface{}) []map[string]interface{} {
	records := []map[string]interface{}{}
	for _, item := range items {
		if record, ok := item.(map[string]interface{}); ok {
			records = append(records, record)
		}
	}
	return records
}
