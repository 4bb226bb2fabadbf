// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"petmatch/internal/models"
)

const EventMatchCreated = "match.created"

// MatchCreated is the payload of a match.created event.
type MatchCreated struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	LostPostID  int64     `json:"lost_post_id"`
	FoundPostID int64     `json:"found_post_id"`
	Distance    float64   `json:"distance"`
	TriggeredBy string    `json:"triggered_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		topic = EventMatchCreated
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

// MatchCreated publishes a stored match keyed by its lost post, so events of
// one lost post stay ordered.
func (p *KafkaPublisher) MatchCreated(ctx context.Context, match models.Match, trigger models.PostType) error {
	payload, err := json.Marshal(MatchCreated{
		EventID:     uuid.NewString(),
		EventType:   EventMatchCreated,
		LostPostID:  match.LostPostID,
		FoundPostID: match.FoundPostID,
		Distance:    match.Distance,
		TriggeredBy: string(trigger),
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode match event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(match.LostPostID, 10)),
		Value: payload,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", EventMatchCreated, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
