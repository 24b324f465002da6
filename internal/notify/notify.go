package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Notifier pousse les événements métier vers un canal externe
// (nouvelle réservation, nouveau message de contact).
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type Message struct {
	Titre    string
	Texte    string
	Severite string
}

// WebhookNotifier poste le message sur un webhook compatible Slack.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier retourne nil si l'URL n'est pas configurée; les
// appelants traitent un notifier nil comme un no-op.
func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	if webhookURL == "" {
		return nil
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	if n == nil || n.webhookURL == "" {
		return errors.New("webhook non configuré")
	}

	body, err := json.Marshal(map[string]any{"text": format(msg)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.New("notification refusée par le webhook")
	}
	return nil
}

func format(msg Message) string {
	emoji := ":information_source:"
	switch msg.Severite {
	case "warning":
		emoji = ":warning:"
	case "critical":
		emoji = ":rotating_light:"
	}
	if msg.Titre != "" {
		return emoji + " *" + msg.Titre + "*\n" + msg.Texte
	}
	return emoji + " " + msg.Texte
}
