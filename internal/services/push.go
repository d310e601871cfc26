package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultPushEndpoint = "https://onesignal.com/api/v1/notifications"

// PushNotificationRequest is the OneSignal create-notification payload,
// targeted at a single subscriber.
type PushNotificationRequest struct {
	AppID            string            `json:"app_id"`
	IncludePlayerIDs []string          `json:"include_player_ids"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
}

type PushClient struct {
	appID    string
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewPushClient(appID, apiKey string) *PushClient {
	return &PushClient{
		appID:    appID,
		apiKey:   apiKey,
		endpoint: DefaultPushEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewPushClientWithEndpoint overrides the provider endpoint, for tests.
func NewPushClientWithEndpoint(appID, apiKey, endpoint string) *PushClient {
	c := NewPushClient(appID, apiKey)
	c.endpoint = endpoint
	return c
}

// BuildPayload assembles the notification for one subscriber. An empty title
// falls back to a default heading.
func (c *PushClient) BuildPayload(playerID, title, body string) PushNotificationRequest {
	if title == "" {
		title = "Deadline Reminder"
	}

	return PushNotificationRequest{
		AppID:            c.appID,
		IncludePlayerIDs: []string{playerID},
		Headings:         map[string]string{"en": title},
		Contents:         map[string]string{"en": body},
	}
}

func (c *PushClient) Send(ctx context.Context, payload PushNotificationRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}

	return nil
}
