package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/adapter/report"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/config"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces anomaly reports to a Kafka topic.
// It implements pipeline.ReportPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes a report and writes it to the report topic.
func (w *Writer) Publish(ctx context.Context, r pipeline.Report) error {
	msg, err := serializeToMessage(r)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write report %s: %w", r.ID, err)
	}
	w.logger.Debug("report published", "report_id", r.ID, "topic", w.writer.Topic, "bytes", len(msg.Value))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a report into a Kafka message keyed by region so
// reports for one region stay ordered on a partition.
func serializeToMessage(r pipeline.Report) (kafkago.Message, error) {
	data, err := report.Marshal(r)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   []byte(r.Request.Region.Name()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_id", Value: []byte(r.ID)},
			{Key: "current_window", Value: []byte(r.Request.Current.String())},
			{Key: "generated_at", Value: []byte(r.GeneratedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
