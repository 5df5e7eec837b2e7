package consumer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeProcessed    = "processed"
	outcomeHandlerError = "handler_error"
	outcomeUndecodable  = "undecodable"
)

var (
	messagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "messages_total",
		Help:      "Kafka messages seen by the consumer, by outcome.",
	}, []string{"topic", "event_type", "outcome"})

	eventAge = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fitness",
		Subsystem: "consumer",
		Name:      "event_age_seconds",
		Help:      "Time between publishing an event and committing it.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(messagesTotal, eventAge)
}

func recordProcessed(msg Message) {
	messagesTotal.WithLabelValues(msg.Topic, msg.EventType, outcomeProcessed).Inc()
	if !msg.Timestamp.IsZero() {
		eventAge.WithLabelValues(msg.Topic).Observe(time.Since(msg.Timestamp).Seconds())
	}
}

func recordHandlerError(msg Message) {
	messagesTotal.WithLabelValues(msg.Topic, msg.EventType, outcomeHandlerError).Inc()
}

// Undecodable messages have no trustworthy event type.
func recordDecodeError(topic string) {
	messagesTotal.WithLabelValues(topic, "", outcomeUndecodable).Inc()
}
