package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicRoutesReservationFamilyTogether(t *testing.T) {
	w := &Worker{}

	assert.Equal(t, "reservations.events.v1", w.topicFor("reservation.created"))
	assert.Equal(t, "reservations.events.v1", w.topicFor("reservation.status_changed"))
	assert.Equal(t, "reservations.events.v1", w.topicFor("reservation.adjustments_recomputed"))
	assert.Equal(t, "innkeep.events.v1", w.topicFor("ratecard.published"))
}

func TestTopicPrefixApplied(t *testing.T) {
	w := &Worker{TopicPrefix: "staging."}

	assert.Equal(t, "staging.reservations.events.v1", w.topicFor("reservation.created"))
}

func TestEnvelopeCarriesIdentifiersInHeaders(t *testing.T) {
	w := &Worker{Source: "app://innkeep-test"}
	occurred := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &EventDocument{
		ID:         "evt-1",
		Name:       "reservation.created",
		Payload:    []byte(`{"reservation_id":"res-1","room_id":"r-101"}`),
		OccurredAt: occurred,
		Aggregate:  "res-1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}

	payload, headers, err := w.envelope(doc)
	require.NoError(t, err)

	assert.Equal(t, "application/cloudevents+json", headers["content-type"])
	assert.Equal(t, "reservation.created", headers["event-type"])
	assert.Equal(t, "res-1", headers["aggregate-id"])
	assert.Equal(t, "r-101", headers["room-id"])
	assert.Equal(t, "00-abc-def-01", headers["traceparent"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(payload, &evt))
	assert.Equal(t, "1.0", evt["specversion"])
	assert.Equal(t, "reservation.created.v1", evt["type"])
	assert.Equal(t, "app://innkeep-test", evt["source"])
	assert.Equal(t, "res-1", evt["subject"])
	data, ok := evt["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "r-101", data["room_id"])
}

func TestEnvelopeRejectsMalformedPayload(t *testing.T) {
	w := &Worker{}
	doc := &EventDocument{ID: "evt-2", Name: "reservation.created", Payload: []byte("not json")}

	_, _, err := w.envelope(doc)
	assert.Error(t, err)
}
