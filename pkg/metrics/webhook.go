package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records outcomes of incoming payment webhook events.
type WebhookMetrics struct {
	duration  *prometheus.HistogramVec
	settled   *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	failed    *prometheus.CounterVec
	published prometheus.Counter
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_event_duration_seconds",
		Help:    "Time spent handling a webhook event.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_settled",
		Help: "Webhook events processed to completion.",
	}, []string{"event_type"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_skipped",
		Help: "Webhook events skipped as duplicates or no-ops.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_failed",
		Help: "Webhook events that returned an error.",
	}, []string{"event_type"})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published",
		Help: "Outbox events published to the broker.",
	})
	reg.MustRegister(duration, settled, skipped, failed, published)
	return &WebhookMetrics{
		duration:  duration,
		settled:   settled,
		skipped:   skipped,
		failed:    failed,
		published: published,
	}
}

// ObserveDuration records the handling duration for the event type.
func (w *WebhookMetrics) ObserveDuration(eventType string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncSettled increments the settled counter for the event type.
func (w *WebhookMetrics) IncSettled(eventType string) {
	if w == nil || w.settled == nil {
		return
	}
	w.settled.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncSkipped increments the skipped counter for the event type.
func (w *WebhookMetrics) IncSkipped(eventType string) {
	if w == nil || w.skipped == nil {
		return
	}
	w.skipped.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for the event type.
func (w *WebhookMetrics) IncFailed(eventType string) {
	if w == nil || w.failed == nil {
		return
	}
	w.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncPublished increments the outbox published counter.
func (w *WebhookMetrics) IncPublished() {
	if w == nil || w.published == nil {
		return
	}
	w.published.Inc()
}

func normalizeLabel(eventType string) string {
	if eventType == "" {
		return "unknown"
	}
	return eventType
}
