package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	dashboardDataPath = "/dashboard-data"
	cacheBustParam    = "_t"

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 32 << 20
)

var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// FeedQuery holds the optional server-side filters of the feed.
type FeedQuery struct {
	City      string
	Doctor    string
	Status    string
	Procedure string
	Insurance string
}

// Values encodes the non-empty filters under the feed's parameter names.
func (q FeedQuery) Values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			values.Set(key, value)
		}
	}
	set("cidade", q.City)
	set("medico", q.Doctor)
	set("status", q.Status)
	set("procedimento", q.Procedure)
	set("convenio", q.Insurance)
	return values
}

// Client fetches raw appointment items from the feed.
type Client interface {
	FetchAppointments(ctx context.Context, query FeedQuery) ([]any, error)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// FetchAppointments issues one GET to <base>/dashboard-data. Any non-2xx status is an error.
func (c *HTTPClient) FetchAppointments(ctx context.Context, query FeedQuery) ([]any, error) {
	parsed, err := url.Parse(c.baseURL + dashboardDataPath)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	params := query.Values()
	params.Set(cacheBustParam, strconv.FormatInt(c.now().UnixMilli(), 10))
	parsed.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return DecodeItems(body)
}

// DecodeItems accepts a bare array, an object with an "appointments" array, or a single object
// (a one-element list). Empty bodies, null and scalars yield no items.
func DecodeItems(body []byte) ([]any, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []any{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feed body: %w", err)
	}

	switch v := payload.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if appointments, ok := v["appointments"].([]any); ok {
			return appointments, nil
		}
		return []any{v}, nil
	}
	return []any{}, nil
}
