package kafka

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// NewWriter cria o writer do feed de eventos do serviço. Aceita múltiplos
// brokers separados por vírgula; AllowAutoTopicCreation dispensa setup
// manual de tópico em ambiente local.
func NewWriter(brokers string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}
