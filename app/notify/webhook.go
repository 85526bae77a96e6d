package notify

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// WebhookNotifier posts notification payloads to a configured webhook URL.
// Delivery is fire and forget: failures are logged and reported through
// the return value, never propagated.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type webhookPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	SentAt    string `json:"sent_at"`
}

func (n *WebhookNotifier) Notify(recipient, subject, body string) bool {
	payload := webhookPayload{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		SentAt:    time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal notification payload", "recipient", recipient, "error", err)
		return false
	}

	resp, err := n.httpClient.Post(n.url, "application/json", bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to deliver notification", "recipient", recipient, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("Notification webhook rejected payload", "recipient", recipient, "status", resp.StatusCode)
		return false
	}

	slog.Debug("Notification delivered", "recipient", recipient, "subject", subject)
	return true
}
