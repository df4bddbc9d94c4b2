package playback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/joesive47/skillnexus-lms-sub005/core/progress"
)

// Client talks to the watch-progress HTTP endpoints with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ ReportSender = (*Client)(nil)

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SendReport(ctx context.Context, report progress.ProgressReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshalling progress report")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/progress", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building progress request")
	}
	c.setHeaders(req)

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending progress report")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return errors.New(fmt.Sprintf("sending progress report: status %d", res.StatusCode))
	}
	return nil
}

// GetProgress fetches the stored record for a lesson; it returns nil when no
// record exists yet.
func (c *Client) GetProgress(ctx context.Context, lessonID string) (*progress.WatchProgress, error) {
	u := c.baseURL + "/v1/progress?" + url.Values{"lesson_id": {lessonID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building progress request")
	}
	c.setHeaders(req)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching progress")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, errors.New(fmt.Sprintf("fetching progress: status %d", res.StatusCode))
	}
	var rec *progress.WatchProgress
	if err = json.NewDecoder(res.Body).Decode(&rec); err != nil {
		return nil, errors.Wrap(err, "decoding progress")
	}
	return rec, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
