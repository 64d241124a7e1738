package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"ocean-query-service/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// AnswerEvent is the audit record published for every resolved query.
type AnswerEvent struct {
	ID                   string    `json:"id"`
	RequestID            string    `json:"request_id,omitempty"`
	Query                string    `json:"query"`
	Parameter            string    `json:"parameter"`
	Place                string    `json:"place,omitempty"`
	RequestedYear        *int      `json:"requested_year,omitempty"`
	Year                 int       `json:"year"`
	Value                float64   `json:"value"`
	SampleID             int64     `json:"sample_id"`
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	TargetLatitude       float64   `json:"target_latitude"`
	TargetLongitude      float64   `json:"target_longitude"`
	DistanceKm           float64   `json:"distance_km"`
	Date                 string    `json:"date"`
	UsedFallbackYear     bool      `json:"used_fallback_year"`
	UsedFallbackLocation bool      `json:"used_fallback_location"`
	ResolvedAt           time.Time `json:"resolved_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes AnswerEvents to a Kafka topic.
// It implements ports.AnswerPublisher.
type KafkaPublisher struct {
	writer messageWriter
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewKafkaPublisher creates a producer for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, clock clockwork.Clock, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("new kafka publisher: no brokers")
	}
	if topic == "" {
		return nil, errors.New("new kafka publisher: topic is empty")
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
	}
	return newKafkaPublisher(w, clock, logger), nil
}

func newKafkaPublisher(w messageWriter, clock clockwork.Clock, logger *slog.Logger) *KafkaPublisher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{writer: w, clock: clock, logger: logger}
}

// Publish sends one event per answer in a single WriteMessages call.
func (p *KafkaPublisher) Publish(ctx context.Context, requestID string, q domain.ParsedQuery, answers []domain.ResolvedAnswer) error {
	if len(answers) == 0 {
		return nil
	}

	now := p.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(answers))
	for i, a := range answers {
		msg, err := serializeToMessage(newAnswerEvent(requestID, q, a, now))
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish answers: %w", err)
	}
	p.logger.DebugContext(ctx, "answers published", "req_id", requestID, "count", len(msgs))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newAnswerEvent(requestID string, q domain.ParsedQuery, a domain.ResolvedAnswer, now time.Time) AnswerEvent {
	return AnswerEvent{
		ID:                   uuid.NewString(),
		RequestID:            requestID,
		Query:                q.Text,
		Parameter:            string(a.Parameter),
		Place:                a.Place,
		RequestedYear:        a.RequestedYear,
		Year:                 a.Year,
		Value:                a.Value,
		SampleID:             a.SampleID,
		Latitude:             a.Coordinates.Lat,
		Longitude:            a.Coordinates.Lon,
		TargetLatitude:       a.Target.Lat,
		TargetLongitude:      a.Target.Lon,
		DistanceKm:           a.DistanceKm,
		Date:                 a.Date.Format(time.DateOnly),
		UsedFallbackYear:     a.UsedFallbackYear,
		UsedFallbackLocation: a.UsedFallbackLocation,
		ResolvedAt:           now,
	}
}

// serializeToMessage marshals an AnswerEvent into a Kafka message keyed by
// request id so one request's answers land on one partition.
func serializeToMessage(event AnswerEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize answer event: %w", err)
	}
	key := event.RequestID
	if key == "" {
		key = event.ID
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "parameter", Value: []byte(event.Parameter)},
			{Key: "resolved_at", Value: []byte(event.ResolvedAt.Format(time.RFC3339))},
		},
	}, nil
}
