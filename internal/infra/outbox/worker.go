package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker dispatches reservation events from the outbox to the broker. Every
// tick it first requeues claims left behind by a crashed worker, then drains
// due events until the outbox is empty. Publish failures push the event back
// to FAILED with a retry delay instead of losing it.
type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	ClaimTTL    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Store.ReleaseStale(ctx, w.claimTTL()); err != nil {
				return err
			}
			if err := w.drain(ctx); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	for {
		doc, err := w.Store.ClaimNext(ctx, w.workerID())
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		if err := w.dispatch(ctx, doc); err != nil {
			return err
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, doc *EventDocument) error {
	payload, headers, err := w.envelope(doc)
	if err != nil {
		return w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	if err := w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers); err != nil {
		return w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	return w.Store.MarkSent(ctx, doc.ID)
}

// envelope wraps the stored event in a CloudEvents JSON body. The reservation
// and room identifiers ride as broker headers so consumers can filter without
// decoding the payload.
func (w *Worker) envelope(doc *EventDocument) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            doc.Name + ".v1",
		"source":          w.source(),
		"subject":         doc.Aggregate,
		"time":            doc.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
		"event-type":   doc.Name,
		"aggregate-id": doc.Aggregate,
	}
	if room, ok := data["room_id"].(string); ok && room != "" {
		headers["room-id"] = room
	}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor routes the reservation lifecycle family onto one ordered topic.
// Keying by aggregate id then keeps a single reservation's created, status
// and adjustment events in order for consumers. Unknown families land on a
// catch-all topic rather than being dropped.
func (w *Worker) topicFor(name string) string {
	topic := "innkeep.events.v1"
	if len(name) > len("reservation.") && name[:len("reservation.")] == "reservation." {
		topic = "reservations.events.v1"
	}
	if w.TopicPrefix != "" {
		topic = w.TopicPrefix + topic
	}
	return topic
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) claimTTL() time.Duration {
	if w.ClaimTTL <= 0 {
		return time.Minute
	}
	return w.ClaimTTL
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://innkeep"
}
