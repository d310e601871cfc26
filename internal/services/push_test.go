package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload(t *testing.T) {
	c := NewPushClient("app-id", "api-key")

	payload := c.BuildPayload("player-1", "Long run", "Marathon is due on Sep 15")
	assert.Equal(t, "app-id", payload.AppID)
	assert.Equal(t, []string{"player-1"}, payload.IncludePlayerIDs)
	assert.Equal(t, "Long run", payload.Headings["en"])
	assert.Equal(t, "Marathon is due on Sep 15", payload.Contents["en"])

	// Blank titles fall back to the default heading.
	payload = c.BuildPayload("player-1", "", "body")
	assert.Equal(t, "Deadline Reminder", payload.Headings["en"])
}

func TestSend(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, DefaultPushEndpoint,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Basic api-key", req.Header.Get("Authorization"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

			var payload PushNotificationRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
			assert.Equal(t, "app-id", payload.AppID)
			assert.Equal(t, []string{"player-1"}, payload.IncludePlayerIDs)

			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{"id": "abc-123"})
		})

	c := NewPushClient("app-id", "api-key")
	c.client = &http.Client{Transport: transport}

	payload := c.BuildPayload("player-1", "Long run", "due soon")
	require.NoError(t, c.Send(context.Background(), payload))

	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestSendRejectedByProvider(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, DefaultPushEndpoint,
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]any{
			"errors": []string{"app_id not found"},
		}))

	c := NewPushClient("app-id", "api-key")
	c.client = &http.Client{Transport: transport}

	err := c.Send(context.Background(), c.BuildPayload("player-1", "t", "b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
