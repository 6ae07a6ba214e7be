package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

type categorizeRequest struct {
	Item string `json:"item"`
}

type categorizeResponse struct {
	Category string `json:"category"`
}

// Client asks the categorisation API for a category.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		url: strings.TrimRight(baseURL, "/") + "/api/ai/categorize",
		// The resolver's context deadline is the real bound; this only
		// catches callers that pass a context without one.
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Categorize(ctx context.Context, name string) (model.Category, error) {
	body, err := json.Marshal(categorizeRequest{Item: name})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("categorize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("categorize: status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var cr categorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if cr.Category == "" {
		return "", fmt.Errorf("categorize: empty category: %w", ErrUnavailable)
	}
	return model.Category(cr.Category), nil
}
