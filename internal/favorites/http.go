package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

// HTTP talks to the favorites endpoints of the list API.
type HTTP struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/favorites",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// apiError turns a failed response into a RemoteError carrying the server's
// own message when it sent one.
func apiError(op string, resp *http.Response) error {
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
		return model.NewRemoteError(op, fmt.Errorf("API Error: %d", resp.StatusCode))
	}
	return model.NewRemoteError(op, fmt.Errorf("%s", er.Error))
}

func (h *HTTP) List(ctx context.Context) ([]model.Favorite, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, model.NewRemoteError("list favorites", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("list favorites", resp)
	}

	var favs []model.Favorite
	if err := json.NewDecoder(resp.Body).Decode(&favs); err != nil {
		return nil, model.NewRemoteError("list favorites", fmt.Errorf("decode response: %w", err))
	}
	return favs, nil
}

func (h *HTTP) Add(ctx context.Context, f model.Favorite) error {
	body, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal favorite: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return model.NewRemoteError("add favorite", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError("add favorite", resp)
	}
	return nil
}

func (h *HTTP) Remove(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.baseURL+"/"+url.PathEscape(name), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return model.NewRemoteError("remove favorite", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError("remove favorite", resp)
	}
	return nil
}
