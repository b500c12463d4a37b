package ingest

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rushteam/brewrec/core"
	"github.com/rushteam/brewrec/pkg/logging"
)

// KafkaConfig 是 Kafka 消费配置。
type KafkaConfig struct {
	Brokers  []string `koanf:"brokers" validate:"omitempty,dive,hostname_port"`
	Topic    string   `koanf:"topic" validate:"required_with=Brokers"`
	Group    string   `koanf:"group"`
	ClientID string   `koanf:"client_id"`
}

// Enabled 配置了 broker 时才启用。
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// KafkaConsumer 从 Kafka 消费行为消息写入 Recorder。
// 单条消息解析或写入失败只记录日志并计数，不阻塞后续消息。
type KafkaConsumer struct {
	client *kgo.Client
	rec    Recorder

	handled atomic.Int64
	failed  atomic.Int64
}

// NewKafkaConsumer 创建消费者（消费组模式，自动提交位点）。
func NewKafkaConsumer(cfg KafkaConfig, rec Recorder) (*KafkaConsumer, error) {
	if !cfg.Enabled() || cfg.Topic == "" {
		return nil, core.NewInvalidInput(core.ModuleBehavior, "kafka brokers and topic are required")
	}
	if rec == nil {
		return nil, core.NewInvalidInput(core.ModuleBehavior, "kafka consumer needs a recorder")
	}
	if cfg.Group == "" {
		cfg.Group = "brewrec-ingest"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "brewrec-ingest"
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
	)
	if err != nil {
		return nil, core.WrapUnavailable(core.ModuleBehavior, "create kafka client", err)
	}
	return &KafkaConsumer{client: client, rec: rec}, nil
}

// Run 持续消费直到 ctx 结束或客户端关闭。
func (c *KafkaConsumer) Run(ctx context.Context) error {
	log := logging.Component("ingest.kafka")
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Warn().Err(err).Str("topic", topic).Int32("partition", partition).Msg("fetch failed")
		})
		fetches.EachRecord(func(r *kgo.Record) {
			if err := Handle(ctx, c.rec, r.Value); err != nil {
				c.failed.Add(1)
				log.Warn().Err(err).
					Str("topic", r.Topic).
					Str("offset", strconv.FormatInt(r.Offset, 10)).
					Msg("skip behavior message")
				return
			}
			c.handled.Add(1)
		})
	}
}

// Stats 返回已处理与失败的消息数。
func (c *KafkaConsumer) Stats() (handled, failed int64) {
	return c.handled.Load(), c.failed.Load()
}

// Close 关闭客户端（离开消费组）。
func (c *KafkaConsumer) Close() {
	c.client.Close()
}
