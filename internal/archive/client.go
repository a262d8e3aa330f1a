package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ytvault/archive-server-go/internal/model"
)

// Client calls the web-archive recovery endpoint. Recovery walks snapshot
// history server-side, so calls run for minutes; cancellation happens through
// the request context.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Recover runs one recovery attempt for the entity and returns the structured
// outcome. An unsuccessful recovery (no snapshots, all snapshots failed) is
// still a nil error: the outcome carries the failure reason.
func (c *Client) Recover(ctx context.Context, entityType model.EntityType, entityID string, filter *model.RecoveryFilter) (*model.RecoveryResult, error) {
	endpoint := fmt.Sprintf("%s/%ss/%s/recover", c.baseURL, entityType, url.PathEscape(entityID))

	query := url.Values{}
	if filter != nil {
		if filter.StartYear != nil {
			query.Set("start_year", strconv.Itoa(*filter.StartYear))
		}
		if filter.EndYear != nil {
			query.Set("end_year", strconv.Itoa(*filter.EndYear))
		}
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build recover request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recover %s %s: %w", entityType, entityID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recover %s %s: unexpected status %d", entityType, entityID, resp.StatusCode)
	}

	var result model.RecoveryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode recover response: %w", err)
	}
	return &result, nil
}
