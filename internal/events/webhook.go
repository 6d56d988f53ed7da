// internal/events/webhook.go
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	webhookTimeout    = 10 * time.Second
	webhookMaxTries   = 4
	webhookRetryDelay = 500 * time.Millisecond
)

// WebhookNotifier forwards events to an external HTTP endpoint as JSON.
// Delivery is best-effort with bounded retries; the engine itself never
// retries operations, so the only retry loop in the system lives here, at
// the outermost notification boundary.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a notifier posting to url.
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
		logger: logger.Named("webhook"),
	}
}

// Register subscribes the notifier to every curve lifecycle event on bus.
func (w *WebhookNotifier) Register(bus *Bus) []Subscription {
	types := []EventType{CurveInitialized, TradeExecuted, GraduationTriggered, CurveCompleted}
	subs := make([]Subscription, 0, len(types))
	for _, t := range types {
		subs = append(subs, bus.Subscribe(t, w))
	}
	return subs
}

// Handle implements the Handler interface.
func (w *WebhookNotifier) Handle(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	operation := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return struct{}{}, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return struct{}{}, nil
	}

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = webhookRetryDelay
	backoffPolicy.MaxInterval = webhookRetryDelay * 10

	notify := func(err error, duration time.Duration) {
		w.logger.Debug("Retrying webhook delivery",
			zap.Error(err),
			zap.Duration("backoff", duration))
	}

	if _, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(webhookMaxTries),
		backoff.WithNotify(notify)); err != nil {
		w.logger.Warn("Webhook delivery failed",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
		return err
	}
	return nil
}
