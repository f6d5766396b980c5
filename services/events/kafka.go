package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"coursehub/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DefaultBatchTimeout bounds how long a synchronous write waits for its
// batch to fill. kafka-go's own default is a full second.
const DefaultBatchTimeout = 10 * time.Millisecond

// KafkaPublisher writes events as JSON keyed by registration id, so every
// event of one registration lands on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string, batchTimeout time.Duration) *KafkaPublisher {
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

func (k *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	key := evt.RegistrationID
	if key == "" {
		key = evt.CourseID
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	})
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// Init installs a Kafka publisher when brokers are configured. An empty
// broker list keeps the no-op publisher.
func Init(brokerList, topic string, batchTimeout time.Duration) {
	var brokers []string
	for _, b := range strings.Split(brokerList, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		logger.Info("Kafka is disabled (KAFKA_BROKERS is empty)")
		return
	}
	SetPublisher(NewKafkaPublisher(brokers, topic, batchTimeout))
	logger.Info("Kafka publisher initialized", zap.Strings("brokers", brokers), zap.String("topic", topic))
}
