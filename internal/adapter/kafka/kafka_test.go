package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/config"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	region, err := domain.RegionFromBound("india", 68, 6, 97, 37)
	require.NoError(t, err)

	r := pipeline.Report{
		ID: "report-1",
		Request: pipeline.Request{
			Region:  region,
			Current: domain.YearRange(2023),
		},
		Summary:     domain.ZonalSummary{Region: "india"},
		GeneratedAt: now,
	}

	msg, err := serializeToMessage(r)
	require.NoError(t, err)

	assert.Equal(t, []byte("india"), msg.Key)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "report_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("report-1"), msg.Headers[0].Value)
	assert.Equal(t, "current_window", msg.Headers[1].Key)
	assert.Equal(t, []byte("2023-01-01..2023-12-31"), msg.Headers[1].Value)
	assert.Equal(t, "generated_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "report-1", payload["id"])
	assert.Contains(t, string(msg.Value), `"name":"india"`)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:     []string{"broker1:9092", "broker2:9092"},
		KafkaReportTopic: "rainfall-anomaly-reports",
	}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "rainfall-anomaly-reports", w.writer.Topic)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
	assert.IsType(t, &kafkago.LeastBytes{}, w.writer.Balancer)
}
