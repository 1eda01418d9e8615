package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/social-bets-platform/pkg/contracts/events"
)

// Writer é o subconjunto do kafka.Writer que o publisher usa; em testes
// entra um fake
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica atualizações de placar no tópico score_updates,
// consumidas pelos demais serviços da plataforma
type KafkaPublisher struct {
	writer Writer
}

func NewKafkaPublisher(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// PublishScoreUpdate serializa o evento e envia com o gameID como chave,
// garantindo ordem por jogo na partição
func (p *KafkaPublisher) PublishScoreUpdate(ctx context.Context, e events.ScoreUpdate) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.GameID),
		Value: b,
		Time:  time.Now(),
	})
}
