package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/saasforge/saasforge/internal/adapter/otel"
	"github.com/saasforge/saasforge/internal/config"
	"github.com/saasforge/saasforge/internal/domain/webhook"
	"github.com/saasforge/saasforge/internal/middleware"
	"github.com/saasforge/saasforge/internal/port/database"
	"github.com/saasforge/saasforge/internal/port/messagequeue"
	"github.com/saasforge/saasforge/internal/resilience"
)

// Signature and event headers set on every delivery.
const (
	headerSignature = "X-SaaSForge-Signature"
	headerEvent     = "X-SaaSForge-Event"
	headerDelivery  = "X-SaaSForge-Delivery"
)

// Endpoints that fail this many posts in a row stop receiving deliveries
// until the cooldown elapses. Failed attempts during that window count
// against the delivery's retry budget.
const (
	breakerFailures = 5
	breakerCooldown = 30 * time.Second
)

// WebhookService manages registrations, fans record changes out to
// matching registrations, and delivers payloads with retries.
type WebhookService struct {
	store    database.Store
	queue    messagequeue.Queue
	metrics  *otel.Metrics
	client   *http.Client
	cfg      config.Webhook
	pool     *resilience.Pool
	breakers *resilience.BreakerSet
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(store database.Store, queue messagequeue.Queue, m *otel.Metrics, cfg config.Webhook) *WebhookService {
	return &WebhookService{
		store:    store,
		queue:    queue,
		metrics:  m,
		client:   &http.Client{Timeout: cfg.Timeout},
		cfg:      cfg,
		pool:     resilience.NewPool(cfg.MaxConcurrent),
		breakers: resilience.NewBreakerSet(breakerFailures, breakerCooldown),
	}
}

// Create registers a webhook for the calling tenant. A missing secret is
// generated so every delivery can be signed.
func (s *WebhookService) Create(ctx context.Context, w *webhook.Webhook) (*webhook.Webhook, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if w.Secret == "" {
		secret, err := generateSecret()
		if err != nil {
			return nil, err
		}
		w.Secret = secret
	}
	w.IsActive = true

	if err := s.store.CreateWebhook(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// List returns the calling tenant's registrations.
func (s *WebhookService) List(ctx context.Context) ([]webhook.Webhook, error) {
	return s.store.ListWebhooks(ctx)
}

// Delete removes a registration.
func (s *WebhookService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteWebhook(ctx, id)
}

// StartDispatcher consumes record changes and queues one delivery per
// matching active registration. The returned function cancels the
// subscription.
func (s *WebhookService) StartDispatcher(ctx context.Context) (func(), error) {
	return s.queue.Subscribe(ctx, messagequeue.SubjectRecordChanged, s.dispatch)
}

func (s *WebhookService) dispatch(ctx context.Context, _ string, data []byte) error {
	var change RecordChange
	if err := json.Unmarshal(data, &change); err != nil {
		return fmt.Errorf("unmarshal record change: %w", err)
	}

	ctx = middleware.WithTenantID(ctx, change.TenantID)
	hooks, err := s.store.ListWebhooksForEvent(ctx, change.Collection, change.Event)
	if err != nil {
		return err
	}

	for _, h := range hooks {
		d := webhook.Delivery{
			DeliveryID: uuid.NewString(),
			WebhookID:  h.ID,
			TenantID:   h.TenantID,
			Collection: change.Collection,
			Event:      change.Event,
			URL:        h.URL,
			Secret:     h.Secret,
			Record:     change.Record,
			OccurredAt: change.OccurredAt,
		}
		payload, err := json.Marshal(d)
		if err != nil {
			slog.Error("marshal webhook delivery", "webhook_id", h.ID, "error", err)
			continue
		}
		if err := s.queue.Publish(ctx, messagequeue.SubjectWebhookDeliver, payload); err != nil {
			return fmt.Errorf("queue delivery for webhook %s: %w", h.ID, err)
		}
	}
	return nil
}

// StartDeliveryWorker consumes queued deliveries and posts them to their
// registered URLs.
func (s *WebhookService) StartDeliveryWorker(ctx context.Context) (func(), error) {
	return s.queue.Subscribe(ctx, messagequeue.SubjectWebhookDeliver, s.deliver)
}

func (s *WebhookService) deliver(ctx context.Context, _ string, data []byte) error {
	var d webhook.Delivery
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("unmarshal webhook delivery: %w", err)
	}

	ctx, span := otel.StartDeliverySpan(ctx, d.WebhookID, d.Collection, d.Event)
	defer span.End()

	body, err := json.Marshal(map[string]any{
		"delivery_id": d.DeliveryID,
		"collection":  d.Collection,
		"event":       d.Event,
		"record":      d.Record,
		"occurred_at": d.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook body: %w", err)
	}

	// Deliveries to the same host share a circuit breaker.
	breaker := s.breakers.For(endpointHost(d.URL))

	var lastErr error
	err = s.pool.Run(ctx, func() error {
		for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.cfg.RetryBackoff * time.Duration(attempt)):
				}
			}

			lastErr = breaker.Execute(func() error {
				return s.post(ctx, &d, body)
			})
			if lastErr == nil {
				if s.metrics != nil {
					s.metrics.WebhookDeliveries.Add(ctx, 1)
				}
				return nil
			}
			slog.Warn("webhook delivery attempt failed",
				"webhook_id", d.WebhookID,
				"delivery_id", d.DeliveryID,
				"attempt", attempt+1,
				"error", lastErr,
			)
		}
		return lastErr
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if s.metrics != nil {
		s.metrics.WebhookFailures.Add(ctx, 1)
	}
	// Exhausted deliveries are dropped after logging; the registration
	// stays active.
	slog.Error("webhook delivery exhausted retries",
		"webhook_id", d.WebhookID,
		"delivery_id", d.DeliveryID,
		"url", d.URL,
		"error", lastErr,
	)
	return nil
}

func (s *WebhookService) post(ctx context.Context, d *webhook.Delivery, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEvent, d.Event)
	req.Header.Set(headerDelivery, d.DeliveryID)
	if d.Secret != "" {
		req.Header.Set(headerSignature, "sha256="+Sign(d.Secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// endpointHost keys breakers by host so every URL on a dead endpoint
// trips together.
func endpointHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate webhook secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
