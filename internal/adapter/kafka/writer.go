package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/rainwater-estimator-service/internal/domain"
	"github.com/couchcryptid/rainwater-estimator-service/internal/observability"
)

const contentTypeJSON = "application/json"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes finished assessment reports to a Kafka topic for
// downstream document rendering. It implements domain.ReportSink.
type Writer struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the report topic.
func NewWriter(brokers []string, topic string, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// Publish serializes the report and writes it keyed by report ID.
func (w *Writer) Publish(ctx context.Context, report domain.AssessmentReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		w.metrics.ReportsPublished.WithLabelValues("error").Inc()
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.ReportsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish report %s: %w", report.ID, err)
	}
	w.metrics.ReportsPublished.WithLabelValues("success").Inc()
	w.logger.Debug("report published", "report_id", report.ID, "band", report.SuitabilityBand)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AssessmentReport into a Kafka message.
func serializeToMessage(report domain.AssessmentReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte(contentTypeJSON)},
			{Key: "suitability_band", Value: []byte(report.SuitabilityBand)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
