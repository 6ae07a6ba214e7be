// Package push registers a Web Push subscription with the list API so the
// backend can notify this client about list changes.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/dukerupert/shoplist/internal/model"
)

var ErrInvalidSubscription = errors.New("invalid push subscription")

type saveRequest struct {
	Subscription *webpush.Subscription `json:"subscription"`
}

// Registrar posts subscriptions to the save-subscription endpoint.
type Registrar struct {
	url        string
	httpClient *http.Client
}

func NewRegistrar(baseURL string) *Registrar {
	return &Registrar{
		url:        strings.TrimRight(baseURL, "/") + "/api/save-subscription",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ParseSubscription decodes a browser PushSubscription as produced by
// PushSubscription.toJSON().
func ParseSubscription(data []byte) (*webpush.Subscription, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubscription, err)
	}
	if sub.Endpoint == "" {
		return nil, fmt.Errorf("%w: missing endpoint", ErrInvalidSubscription)
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return nil, fmt.Errorf("%w: missing keys", ErrInvalidSubscription)
	}
	return &sub, nil
}

// Save registers sub. Failures come back as RemoteError so the caller can
// show the message.
func (r *Registrar) Save(ctx context.Context, sub *webpush.Subscription) error {
	body, err := json.Marshal(saveRequest{Subscription: sub})
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return model.NewRemoteError("save subscription", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.NewRemoteError("save subscription", fmt.Errorf("push service returned %d", resp.StatusCode))
	}
	return nil
}

// GenerateVAPIDKeys returns a new base64url encoded P-256 key pair.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("generate VAPID keys: %w", err)
	}
	return publicKey, privateKey, nil
}
