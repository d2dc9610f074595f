// Package config loads process configuration. Every flag takes its default
// from an environment variable, so flags override env which overrides the
// built-in default.
package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

const (
	EventFormatProto = "proto"
	EventFormatJSON  = "json"
)

type Config struct {
	GRPCAddr    string
	MetricsAddr string

	// Empty dirs disable the journal, the outbox and the snapshot.
	JournalDir         string
	JournalSegmentSize int64
	JournalOverwrite   bool
	OutboxDir          string
	SnapshotDir        string

	KafkaBrokers      []string
	DeliveredTopic    string
	ETATopic          string
	EventFormat       string
	BroadcastInterval time.Duration

	LogLevel string

	// Args holds the positional arguments left after flag parsing.
	Args []string
}

// Default returns the built-in defaults overlaid with the environment.
func Default() (*Config, error) {
	c := &Config{}
	var err error
	read := func(f func() error) {
		if err == nil {
			err = f()
		}
	}

	read(func() (e error) { c.GRPCAddr, e = GetEnv("GATOR_GRPC_ADDR", ":50051"); return })
	read(func() (e error) { c.MetricsAddr, e = GetEnv("GATOR_METRICS_ADDR", ":9090"); return })
	read(func() (e error) { c.JournalDir, e = GetEnv("GATOR_JOURNAL_DIR", ""); return })
	read(func() (e error) {
		c.JournalSegmentSize, e = GetEnv("GATOR_JOURNAL_SEGMENT_SIZE", int64(64<<20))
		return
	})
	read(func() (e error) { c.JournalOverwrite, e = GetEnv("GATOR_JOURNAL_OVERWRITE", false); return })
	read(func() (e error) { c.OutboxDir, e = GetEnv("GATOR_OUTBOX_DIR", ""); return })
	read(func() (e error) { c.SnapshotDir, e = GetEnv("GATOR_SNAPSHOT_DIR", ""); return })
	read(func() (e error) { c.KafkaBrokers, e = GetEnv("KAFKA_BROKER_ADDR", []string{}); return })
	read(func() (e error) { c.DeliveredTopic, e = GetEnv("GATOR_DELIVERED_TOPIC", "orders.delivered"); return })
	read(func() (e error) { c.ETATopic, e = GetEnv("GATOR_ETA_TOPIC", "orders.eta"); return })
	read(func() (e error) { c.EventFormat, e = GetEnv("GATOR_EVENT_FORMAT", EventFormatProto); return })
	read(func() (e error) {
		c.BroadcastInterval, e = GetEnv("GATOR_BROADCAST_INTERVAL", 250*time.Millisecond)
		return
	})
	read(func() (e error) { c.LogLevel, e = GetEnv("GATOR_LOG_LEVEL", "info"); return })

	return c, err
}

// AddFlags binds the Config fields to fs using their current values as
// defaults.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.GRPCAddr, "grpc-addr", c.GRPCAddr, "Address the gRPC server listens on.")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Address the Prometheus endpoint listens on.")
	fs.StringVar(&c.JournalDir, "journal-dir", c.JournalDir, "Command journal directory. Empty disables journaling.")
	fs.Int64Var(&c.JournalSegmentSize, "journal-segment-size", c.JournalSegmentSize, "Journal segment size in bytes.")
	fs.BoolVar(&c.JournalOverwrite, "journal-overwrite", c.JournalOverwrite, "Discard a journal left by a previous run.")
	fs.StringVar(&c.OutboxDir, "outbox-dir", c.OutboxDir, "Delivery outbox directory. Empty disables the outbox.")
	fs.StringVar(&c.SnapshotDir, "snapshot-dir", c.SnapshotDir, "Directory for the schedule snapshot written at Quit.")
	fs.StringSliceVar(&c.KafkaBrokers, "kafka-brokers", c.KafkaBrokers, "Kafka broker addresses.")
	fs.StringVar(&c.DeliveredTopic, "delivered-topic", c.DeliveredTopic, "Topic for delivery events.")
	fs.StringVar(&c.ETATopic, "eta-topic", c.ETATopic, "Topic for ETA update notifications.")
	fs.StringVar(&c.EventFormat, "event-format", c.EventFormat, "Event encoding: proto or json.")
	fs.DurationVar(&c.BroadcastInterval, "broadcast-interval", c.BroadcastInterval, "Outbox drain interval.")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error.")
}

func (c *Config) Validate() error {
	switch c.EventFormat {
	case EventFormatProto, EventFormatJSON:
	default:
		return errors.Newf("invalid event format %q: must be %s or %s", c.EventFormat, EventFormatProto, EventFormatJSON)
	}
	if c.JournalSegmentSize <= 0 {
		return errors.Newf("invalid journal segment size %d", c.JournalSegmentSize)
	}
	if c.BroadcastInterval <= 0 {
		return errors.Newf("invalid broadcast interval %s", c.BroadcastInterval)
	}
	return nil
}

// Load reads the environment, then parses args (without the program name)
// on a fresh flag set named name.
func Load(name string, args []string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	c.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}
	c.Args = fs.Args()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
