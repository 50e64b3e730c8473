// Package regsource provides regdate.Loader implementations for the CLI:
// an HTTP loader against an embedder-operated registration endpoint and a
// static loader for offline runs.
package regsource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// HTTPLoader fetches registration dates from
// GET <base>/authors/<author>/registration, expecting
// {"registeredAt":"YYYY-MM-DD"}. A 404 or null date means the account is
// unknown to the source.
type HTTPLoader struct {
	baseURL string
	client  *http.Client
}

func NewHTTPLoader(baseURL string, logger *zap.Logger) *HTTPLoader {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledZap{logger.Sugar()})
	client := retryClient.StandardClient()
	client.Timeout = 15 * time.Second

	return &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type registrationResponse struct {
	RegisteredAt string `json:"registeredAt"`
}

func (l *HTTPLoader) Load(ctx context.Context, author string) (time.Time, bool, error) {
	endpoint := l.baseURL + "/authors/" + url.PathEscape(author) + "/registration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return time.Time{}, false, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return time.Time{}, false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return time.Time{}, false, nil
	case resp.StatusCode != http.StatusOK:
		return time.Time{}, false, fmt.Errorf("registration endpoint returned %s", resp.Status)
	}

	var payload registrationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return time.Time{}, false, fmt.Errorf("decode registration response: %w", err)
	}
	if payload.RegisteredAt == "" {
		return time.Time{}, false, nil
	}
	date, err := time.Parse("2006-01-02", payload.RegisteredAt)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse registration date %q: %w", payload.RegisteredAt, err)
	}
	return date, true, nil
}

// StaticLoader serves dates from a fixed map and reports everything else as
// unknown. Useful for offline runs and tests.
type StaticLoader struct {
	Dates map[string]time.Time
}

func (l *StaticLoader) Load(_ context.Context, author string) (time.Time, bool, error) {
	date, ok := l.Dates[author]
	return date, ok, nil
}

// leveledZap adapts zap to retryablehttp's leveled logger. Client errors are
// logged as warnings because the client retries them.
type leveledZap struct {
	inner *zap.SugaredLogger
}

func (l leveledZap) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l leveledZap) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l leveledZap) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Infow(msg, keysAndValues...)
}

func (l leveledZap) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Debugw(msg, keysAndValues...)
}
