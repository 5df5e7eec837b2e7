package outbox

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/fitness/internal/events"
)

type stubProducer struct {
	mu     sync.Mutex
	err    error
	writes []writtenBatch
}

type writtenBatch struct {
	topic    string
	messages []kafka.Message
}

func (s *stubProducer) WriteMessages(_ context.Context, topic string, msgs ...kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	copied := make([]kafka.Message, len(msgs))
	copy(copied, msgs)
	s.writes = append(s.writes, writtenBatch{topic: topic, messages: copied})
	return nil
}

type stubRegistry struct {
	mu    sync.Mutex
	id    int
	err   error
	calls []string
}

func (s *stubRegistry) EnsureSchema(_ context.Context, subject, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, subject)
	if s.err != nil {
		return 0, s.err
	}
	return s.id, nil
}

func testMessage(eventID int64, eventType string) Message {
	route, _ := events.Lookup(eventType)
	return Message{
		EventID:       eventID,
		UserID:        "user-1",
		AggregateType: route.AggregateType,
		AggregateID:   "17",
		EventType:     eventType,
		Topic:         route.Topic,
		SchemaSubject: route.SchemaSubject,
		PartitionKey:  "user-1",
		Payload:       []byte(`{"activity_id":17}`),
	}
}

func TestEncodeWireFormat(t *testing.T) {
	frame := encodeWireFormat(258, []byte("{}"))

	require.Len(t, frame, 7)
	require.Equal(t, byte(0), frame[0])
	require.Equal(t, uint32(258), binary.BigEndian.Uint32(frame[1:5]))
	require.Equal(t, "{}", string(frame[5:]))
}

func TestBuildRecordSetsRoutingHeaders(t *testing.T) {
	at := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	msg := testMessage(1, events.TypeActivityLogged)

	record := buildRecord(msg, 9, at)

	require.Equal(t, []byte("user-1"), record.Key)
	require.Equal(t, at, record.Time)
	headers := make(map[string]string, len(record.Headers))
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, events.TypeActivityLogged, headers[HeaderEventType])
	require.Equal(t, "user-1", headers[HeaderUserID])
	require.Equal(t, msg.SchemaSubject, headers[HeaderSchemaSubject])
	require.Equal(t, "17", headers[HeaderAggregateID])
}

func TestDeliverGroupsByTopicAndCachesSchemaIDs(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 21}
	d := NewDispatcher(nil, producer, registry, time.Second, 10)

	messages := []Message{
		testMessage(1, events.TypeActivityLogged),
		testMessage(2, events.TypeBookmarkToggled),
		testMessage(3, events.TypeActivityLogged),
	}
	require.NoError(t, d.deliver(context.Background(), messages))

	require.Len(t, producer.writes, 2)
	require.Equal(t, events.TopicActivities, producer.writes[0].topic)
	require.Len(t, producer.writes[0].messages, 2)
	require.Equal(t, events.TopicBookmarks, producer.writes[1].topic)
	require.Len(t, producer.writes[1].messages, 1)
	require.Len(t, registry.calls, 2, "one registry call per subject")
}

func TestDeliverRejectsUnknownEventType(t *testing.T) {
	producer := &stubProducer{}
	registry := &stubRegistry{id: 1}
	d := NewDispatcher(nil, producer, registry, time.Second, 10)

	msg := testMessage(1, events.TypeActivityLogged)
	msg.EventType = "activity.unknown"

	err := d.deliver(context.Background(), []Message{msg})
	require.ErrorContains(t, err, "no schema metadata for event_type=activity.unknown")
	require.Empty(t, producer.writes)
	require.Empty(t, registry.calls)
}

func TestDeliverPropagatesProducerError(t *testing.T) {
	producer := &stubProducer{err: errors.New("broker down")}
	d := NewDispatcher(nil, producer, &stubRegistry{id: 3}, time.Second, 10)

	err := d.deliver(context.Background(), []Message{testMessage(1, events.TypeActivityDeleted)})
	require.ErrorContains(t, err, "broker down")
}

func TestBackoffDelay(t *testing.T) {
	m := NewDLQManager(nil, 0, 0)
	require.Equal(t, 5, m.maxRetries)

	require.Equal(t, time.Minute, m.backoffDelay(0))
	require.Equal(t, time.Minute, m.backoffDelay(1))
	require.Equal(t, 2*time.Minute, m.backoffDelay(2))
	require.Equal(t, 8*time.Minute, m.backoffDelay(4))
	require.Equal(t, time.Hour, m.backoffDelay(10))
	require.Equal(t, time.Hour, m.backoffDelay(64))
}

func TestSchemaRegistryReturnsExistingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/subjects/fitness.activity_events-activity.logged/versions/latest", r.URL.Path)
		_, _ = io.WriteString(w, `{"id": 12, "version": 1}`)
	}))
	defer srv.Close()

	client := NewSchemaRegistryClient(srv.URL + "/")
	id, err := client.EnsureSchema(context.Background(), "fitness.activity_events-activity.logged", "{}")
	require.NoError(t, err)
	require.Equal(t, 12, id)
}

func TestSchemaRegistryRegistersMissingSubject(t *testing.T) {
	var registered map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.Equal(t, "/subjects/bookmarks-value/versions", r.URL.Path)
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/vnd.schemaregistry"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&registered))
		_, _ = io.WriteString(w, `{"id": 33}`)
	}))
	defer srv.Close()

	client := NewSchemaRegistryClient(srv.URL)
	id, err := client.EnsureSchema(context.Background(), "bookmarks-value", `{"type":"object"}`)
	require.NoError(t, err)
	require.Equal(t, 33, id)
	require.Equal(t, "JSON", registered["schemaType"])
	require.Equal(t, `{"type":"object"}`, registered["schema"])
}

func TestSchemaRegistrySurfacesServerErrors(t *testing.T) {
	posted := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posted = true
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewSchemaRegistryClient(srv.URL)
	_, err := client.EnsureSchema(context.Background(), "subject", "{}")
	require.ErrorContains(t, err, "status 500")
	require.False(t, posted, "registration is only attempted for missing subjects")
}
