package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrRecipientGone signals the relay reported the recipient's push
// subscription as dead (HTTP 410). Consumed by the external
// subscription-cleanup process; callers here just log it.
var ErrRecipientGone = errors.New("push recipient gone")

// PushRelayClient forwards notifications to the managed push relay.
// Delivery is best effort: callers treat every error as log-only.
type PushRelayClient struct {
	BaseURL      string
	ServiceToken string
	Client       *http.Client
}

func NewPushRelayClient(baseURL, serviceToken string) *PushRelayClient {
	return &PushRelayClient{
		BaseURL:      baseURL,
		ServiceToken: serviceToken,
		Client:       HTTPClient,
	}
}

type pushPayload struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"url,omitempty"`
}

// Send posts one notification to the relay.
func (c *PushRelayClient) Send(userID, title, body, url string) error {
	payload, err := json.Marshal(pushPayload{UserID: userID, Title: title, Body: body, URL: url})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/api/v1/push/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.ServiceToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: user %s", ErrRecipientGone, userID)
	case resp.StatusCode >= 300:
		return fmt.Errorf("push relay returned %d for user %s", resp.StatusCode, userID)
	}
	return nil
}
