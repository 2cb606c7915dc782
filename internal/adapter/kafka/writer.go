package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/datacommons-client/internal/config"
	"github.com/couchcryptid/datacommons-client/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafkago.Writer the adapter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes enriched data rows to a Kafka topic.
// It implements pipeline.RowLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
	}
	return &Writer{writer: w, logger: logger, clock: clockwork.NewRealClock()}
}

// LoadRows serializes and publishes the rows in a single WriteMessages call.
// Rows sharing a key land on the same partition, so a row's history stays ordered.
func (w *Writer) LoadRows(ctx context.Context, rows []domain.DataRow) error {
	if len(rows) == 0 {
		return nil
	}
	syncedAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(rows[i], syncedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d rows: %w", len(msgs), err)
	}
	w.logger.Debug("rows published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey identifies a row by entity, variable and observation date.
func MessageKey(row domain.DataRow) string {
	date := ""
	if row.Variable.Observation.Date != nil {
		date = *row.Variable.Observation.Date
	}
	return strings.Join([]string{row.Entity.DCID, row.Variable.DCID, date}, "|")
}

// serializeToMessage marshals a DataRow into a Kafka message.
func serializeToMessage(row domain.DataRow, syncedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize data row: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(row)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "entity", Value: []byte(row.Entity.DCID)},
			{Key: "variable", Value: []byte(row.Variable.DCID)},
			{Key: "synced_at", Value: []byte(syncedAt.Format(time.RFC3339))},
		},
	}, nil
}
