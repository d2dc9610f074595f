// Package broadcaster publishes delivery events from the outbox to Kafka.
package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"gator/infra/metrics"
	exitwal "gator/infra/wal/exit"
)

// DefaultMaxRetries bounds publish attempts per outbox entry.
const DefaultMaxRetries = 5

type Broadcaster struct {
	outbox     *exitwal.Outbox
	producer   sarama.SyncProducer
	topic      string
	maxRetries uint32
	metrics    *metrics.Metrics
	log        logr.Logger
}

type Config struct {
	Topic      string
	MaxRetries uint32
	Metrics    *metrics.Metrics
	Logger     logr.Logger
}

// ------------------------------------------------
// CONSTRUCTORS
// ------------------------------------------------

func New(outbox *exitwal.Outbox, producer sarama.SyncProducer, cfg Config) *Broadcaster {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	return &Broadcaster{
		outbox:     outbox,
		producer:   producer,
		topic:      cfg.Topic,
		maxRetries: cfg.MaxRetries,
		metrics:    cfg.Metrics,
		log:        cfg.Logger,
	}
}

// NewProducer creates a SyncProducer that waits for all in-sync replicas,
// retrying the initial connection a few times.
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	var prod sarama.SyncProducer
	var err error

	for i := 0; i < 10; i++ {
		prod, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			return prod, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, errors.Wrap(err, "failed to start producer after retries")
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run drains the outbox every interval until ctx is done.
func (b *Broadcaster) Run(ctx context.Context, interval time.Duration) {
	b.log.Info("broadcaster started", "topic", b.topic, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.DrainOnce()
			return
		case <-ticker.C:
			b.DrainOnce()
		}
	}
}

type pending struct {
	seq uint64
	rec exitwal.Record
}

// DrainOnce publishes every entry that is not yet acknowledged and still
// within its retry budget. It returns the number acknowledged.
func (b *Broadcaster) DrainOnce() int {
	var batch []pending
	for _, state := range []exitwal.State{exitwal.StateNew, exitwal.StateSent, exitwal.StateFailed} {
		err := b.outbox.ScanByState(state, func(seq uint64, rec exitwal.Record) error {
			if rec.Retries < b.maxRetries {
				batch = append(batch, pending{seq: seq, rec: rec})
			}
			return nil
		})
		if err != nil {
			b.log.Error(err, "outbox scan failed", "state", state)
			return 0
		}
	}

	acked := 0
	for _, p := range batch {
		if b.publish(p.seq, p.rec) {
			acked++
		}
	}
	return acked
}

// publish moves one entry SENT -> ACKED, or to FAILED with one more retry.
func (b *Broadcaster) publish(seq uint64, rec exitwal.Record) bool {
	if err := b.outbox.UpdateState(seq, exitwal.StateSent, rec.Retries); err != nil {
		b.log.Error(err, "mark sent failed", "seq", seq)
		return false
	}

	msg := &sarama.ProducerMessage{
		Topic: b.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(seq, 10)),
		Value: sarama.ByteEncoder(rec.Payload),
	}

	_, _, err := b.producer.SendMessage(msg)
	b.metrics.RecordPublish(err == nil)
	if err != nil {
		retries := rec.Retries + 1
		b.log.Error(err, "publish failed", "seq", seq, "retries", retries)
		if err := b.outbox.UpdateState(seq, exitwal.StateFailed, retries); err != nil {
			b.log.Error(err, "mark failed failed", "seq", seq)
		}
		return false
	}

	if err := b.outbox.UpdateState(seq, exitwal.StateAcked, rec.Retries); err != nil {
		b.log.Error(err, "mark acked failed", "seq", seq)
		return false
	}
	return true
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
