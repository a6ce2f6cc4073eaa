// Package kafka publishes coverage snapshot events.
package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/coverage-intelligence/internal/config"
	"github.com/turtacn/coverage-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coverage-intelligence/pkg/errors"
)

var (
	ErrProducerClosed = errors.New(errors.ErrCodeProducerClosed, "producer closed")
	ErrPublishFailed  = errors.New(errors.ErrCodePublishFailed, "publish failed")
)

// Header keys set on every snapshot message.
const (
	HeaderEventType = "event_type"
	HeaderSource    = "source"
)

const defaultMaxMessageBytes = 4 << 20

// ProducerMetrics holds producer counters.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
	LastSentAt     atomic.Value // time.Time
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// SnapshotProducer writes snapshot payloads to one topic, keyed by platform
// so a platform's snapshots stay ordered on one partition.
type SnapshotProducer struct {
	writer          WriterInterface
	topic           string
	eventType       string
	source          string
	maxMessageBytes int
	logger          logging.Logger
	closed          atomic.Bool
	metrics         *ProducerMetrics
}

// ProducerOption customizes a SnapshotProducer.
type ProducerOption func(*SnapshotProducer)

// WithEventType sets the event_type header.
func WithEventType(t string) ProducerOption {
	return func(p *SnapshotProducer) { p.eventType = t }
}

// WithSource sets the source header.
func WithSource(s string) ProducerOption {
	return func(p *SnapshotProducer) { p.source = s }
}

// WithWriter replaces the kafka writer.
func WithWriter(w WriterInterface) ProducerOption {
	return func(p *SnapshotProducer) { p.writer = w }
}

// NewSnapshotProducer builds a hash-balanced kafka writer from cfg.
func NewSnapshotProducer(cfg config.KafkaConfig, log logging.Logger, opts ...ProducerOption) (*SnapshotProducer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	p := &SnapshotProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.SnapshotTopic,
			Balancer:     &kafka.Hash{},
			MaxAttempts:  cfg.MaxRetries + 1,
			BatchTimeout: 50 * time.Millisecond,
			WriteTimeout: writeTimeout,
			RequiredAcks: requiredAcks(cfg.Acks),
			Compression:  compression(cfg.Compression),
			Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
		},
		topic:           cfg.SnapshotTopic,
		eventType:       cfg.SnapshotTopic,
		source:          "coverage-intelligence",
		maxMessageBytes: defaultMaxMessageBytes,
		logger:          log,
		metrics:         &ProducerMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func requiredAcks(acks string) kafka.RequiredAcks {
	switch acks {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

func compression(codec string) kafka.Compression {
	switch codec {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0)
	}
}

// PublishSnapshot writes payload under key.
func (p *SnapshotProducer) PublishSnapshot(ctx context.Context, key string, payload []byte) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if key == "" {
		return errors.InvalidParam("snapshot key required")
	}
	if len(payload) == 0 {
		return errors.InvalidParam("snapshot payload required")
	}
	if len(payload) > p.maxMessageBytes {
		return errors.Newf(errors.ErrCodeInvalidParam, "snapshot of %d bytes exceeds %d", len(payload), p.maxMessageBytes)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(p.eventType)},
			{Key: HeaderSource, Value: []byte(p.source)},
		},
		Time: time.Now().UTC(),
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		p.logger.Error("snapshot publish failed",
			logging.String("topic", p.topic), logging.String("key", key), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodePublishFailed, ErrPublishFailed.Message)
	}

	p.metrics.MessagesSent.Add(1)
	p.metrics.BytesSent.Add(int64(len(payload)))
	p.metrics.LastSentAt.Store(time.Now())
	p.logger.Debug("snapshot published",
		logging.String("topic", p.topic),
		logging.String("key", key),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// Metrics returns a copy of the counters.
func (p *SnapshotProducer) Metrics() *ProducerMetrics {
	m := &ProducerMetrics{}
	m.MessagesSent.Store(p.metrics.MessagesSent.Load())
	m.MessagesFailed.Store(p.metrics.MessagesFailed.Load())
	m.BytesSent.Store(p.metrics.BytesSent.Load())
	if v := p.metrics.LastSentAt.Load(); v != nil {
		m.LastSentAt.Store(v)
	}
	return m
}

// Close flushes and closes the writer.  It is idempotent.
func (p *SnapshotProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("snapshot producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

// ValidateConfig checks the fields the producer needs.
func ValidateConfig(cfg config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.InvalidParam("kafka brokers required")
	}
	if cfg.SnapshotTopic == "" {
		return errors.InvalidParam("kafka snapshot topic required")
	}
	if cfg.MaxRetries < 0 {
		return errors.InvalidParam("kafka max retries must be >= 0")
	}
	return nil
}
