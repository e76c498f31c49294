package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	kafkaFlushTimeout    = 5 * time.Second
	kafkaDeliveryTimeout = 30 * time.Second
)

// KafkaSink mirrors every real-time event onto a Kafka topic, keyed by event
// name. Produces are asynchronous; failures are logged and never retried by us.
// When the producer buffer is full the event is dropped.
type KafkaSink struct {
	client       *kgo.Client
	topic        string
	flushTimeout time.Duration
	log          *logrus.Logger
}

func NewKafkaSink(brokers []string, topic string, logger *logrus.Logger) (*KafkaSink, error) {
	return newKafkaSink(brokers, topic, logger)
}

func newKafkaSink(brokers []string, topic string, logger *logrus.Logger, extra ...kgo.Opt) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka sink needs at least one broker")
	}
	opts := append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerLinger(50*time.Millisecond),
		kgo.RecordDeliveryTimeout(kafkaDeliveryTimeout),
	}, extra...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create kafka client: %w", err)
	}
	logger.Infof("Kafka sink producing to topic %s via %v", topic, brokers)
	return &KafkaSink{client: client, topic: topic, flushTimeout: kafkaFlushTimeout, log: logger}, nil
}

func (k *KafkaSink) ProduceMessage(key string, value []byte) {
	record := &kgo.Record{Topic: k.topic, Key: []byte(key), Value: value}
	k.client.TryProduce(context.Background(), record, func(r *kgo.Record, err error) {
		if errors.Is(err, kgo.ErrMaxBuffered) {
			k.log.Warnf("Kafka sink: buffer full, dropping %s", r.Key)
			return
		}
		if err != nil {
			k.log.Warnf("Kafka sink: failed to produce %s to %s: %v", r.Key, r.Topic, err)
			return
		}
		k.log.Debugf("Kafka sink: produced %s at %s/%d@%d", r.Key, r.Topic, r.Partition, r.Offset)
	})
}

func (k *KafkaSink) Forward(event string, frame []byte) {
	k.ProduceMessage(event, frame)
}

func (k *KafkaSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), k.flushTimeout)
	defer cancel()
	err := k.client.Flush(ctx)
	k.client.Close()
	if err != nil {
		return fmt.Errorf("kafka sink flush: %w", err)
	}
	return nil
}
