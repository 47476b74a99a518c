package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/wager-ledger-poc/pkg/contracts/events"
)

// KafkaPublisher publica eventos de domínio do wager-service.
// Um writer por tópico, chave = wagerID para ordenação por partição.
type KafkaPublisher struct {
	PlacedWriter  *kafka.Writer
	SettledWriter *kafka.Writer
}

func NewKafkaPublisher(placed, settled *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{PlacedWriter: placed, SettledWriter: settled}
}

func (p *KafkaPublisher) PublishWagerPlaced(ctx context.Context, e events.WagerPlaced) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.PlacedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.WagerID), Value: b})
}

func (p *KafkaPublisher) PublishWagerSettled(ctx context.Context, e events.WagerSettled) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.SettledWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.WagerID), Value: b})
}
