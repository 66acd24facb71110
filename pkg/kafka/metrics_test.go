package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatherMetricNames collects all metric names from the default registry.
func gatherMetricNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	return names
}

// counterValue reads the current value of a labeled counter. For producer
// metrics (single "topic" label), pass group as "".
func counterValue(t *testing.T, metricName, topic, group string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, fam := range families {
		if fam.GetName() != metricName {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["topic"] == topic && (group == "" || labels["consumer_group"] == group) {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestConsumerMetrics_Registered(t *testing.T) {
	// Counters with no observations do not appear in Gather() until touched.
	ConsumerMessagesReceived.WithLabelValues("test-topic", "test-group")
	ConsumerMessagesProcessed.WithLabelValues("test-topic", "test-group")
	ConsumerMessagesFailed.WithLabelValues("test-topic", "test-group")
	ConsumerProcessingDuration.WithLabelValues("test-topic", "test-group")

	names := gatherMetricNames(t)

	for _, name := range []string{
		"kafka_consumer_messages_received_total",
		"kafka_consumer_messages_processed_total",
		"kafka_consumer_messages_failed_total",
		"kafka_consumer_processing_duration_seconds",
	} {
		assert.True(t, names[name], "expected metric %q to be registered", name)
	}
}

func TestProducerMetrics_Registered(t *testing.T) {
	ProducerMessagesPublished.WithLabelValues("test-topic")
	ProducerPublishErrors.WithLabelValues("test-topic")
	ProducerPublishDuration.WithLabelValues("test-topic")

	names := gatherMetricNames(t)

	for _, name := range []string{
		"kafka_producer_messages_published_total",
		"kafka_producer_publish_errors_total",
		"kafka_producer_publish_duration_seconds",
	} {
		assert.True(t, names[name], "expected metric %q to be registered", name)
	}
}

func TestPublish_FailureIncrementsErrorCounter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	producer := NewProducer(DefaultProducerConfig([]string{"127.0.0.1:1"}), logger)
	defer producer.Close() //nolint:errcheck

	topic := Topic("activity", "recorded") + ".metrics-test"
	event, err := NewEvent("activity.recorded", "user-1", "user", "lms", map[string]string{"action": "login"})
	require.NoError(t, err)

	before := counterValue(t, "kafka_producer_publish_errors_total", topic, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = producer.Publish(ctx, topic, event)
	require.Error(t, err)

	after := counterValue(t, "kafka_producer_publish_errors_total", topic, "")
	assert.InDelta(t, before+1, after, 0.001)
	assert.Zero(t, counterValue(t, "kafka_producer_messages_published_total", topic, ""))
}
