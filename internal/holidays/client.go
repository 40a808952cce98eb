package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/travolabs/crowdcast/internal/httputil"
	"github.com/travolabs/crowdcast/internal/metrics"
)

// DefaultFeedURL is a Nager.Date-compatible public holiday endpoint;
// year and country code are interpolated per request.
const DefaultFeedURL = "https://date.nager.at/api/v3/PublicHolidays"

// Holiday is one fetched public holiday.
type Holiday struct {
	Date time.Time
	Name string
}

type feedEntry struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// Client fetches public holidays from a remote feed. Fetch failures
// are reported to the caller but must never affect a prediction:
// callers fall back to the calendar's fixed set.
type Client struct {
	baseURL     string
	countryCode string
	httpClient  *http.Client
}

func NewClient(baseURL, countryCode string) *Client {
	if baseURL == "" {
		baseURL = DefaultFeedURL
	}
	return &Client{
		baseURL:     baseURL,
		countryCode: countryCode,
		httpClient:  httputil.NewClient(),
	}
}

// Fetch retrieves the holiday list for a year, retrying transient
// failures with exponential backoff. Client errors are permanent.
func (c *Client) Fetch(ctx context.Context, year int) ([]Holiday, error) {
	url := fmt.Sprintf("%s/%d/%s", c.baseURL, year, c.countryCode)

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", httputil.UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("fetch holidays: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("fetch holidays: status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch holidays: status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		metrics.HolidayFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	var entries []feedEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		metrics.HolidayFetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("unmarshal holidays: %w", err)
	}

	holidays := make([]Holiday, 0, len(entries))
	for _, e := range entries {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue
		}
		name := e.LocalName
		if name == "" {
			name = e.Name
		}
		holidays = append(holidays, Holiday{Date: date, Name: name})
	}
	metrics.HolidayFetchesTotal.WithLabelValues("ok").Inc()
	return holidays, nil
}
