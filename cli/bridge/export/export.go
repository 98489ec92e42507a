package export

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/export/sink/nats"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/export/sink/postgresql"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/export/sink/rabbitmq"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/export/sink/redis"
)

var ErrNoSinks = errors.New("no sinks configured")
var ErrUnknownSink = errors.New("sink kind isn't supported")

// Sink is a fully configured export destination.
type Sink interface {
	Connector
	Publisher
}

// Publisher pushes serialized snapshots to an external system.
type Publisher interface {
	Publish(interface{ ToBytes() ([]byte, error) }) error
}

// Connector manages the connection of an export destination.
type Connector interface {
	// Init opens the connection using the sink's config section
	Init(map[string]string) error

	// Close releases the connection
	Close() error
}

// Repository fans every snapshot out to all configured sinks.
type Repository struct {
	sinks      []Publisher
	connectors []Connector
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// AddSink attaches a destination for published snapshots.
func (r *Repository) AddSink(s Publisher) {
	r.sinks = append(r.sinks, s)
}

// Publish delivers the snapshot to every sink, stopping at the first error.
func (r *Repository) Publish(m interface{ ToBytes() ([]byte, error) }) error {
	for _, s := range r.sinks {
		if err := s.Publish(m); err != nil {
			return err
		}
	}
	return nil
}

// LoadSinks builds and connects sinks from the config structure.
func (r *Repository) LoadSinks(sinks map[string]map[string]string) error {
	if len(sinks) == 0 {
		return ErrNoSinks
	}

	var s Sink
	for kind, params := range sinks {
		switch kind {
		case "nats":
			s = &nats.Connector{}
		case "redis":
			s = &redis.Connector{}
		case "rabbitmq":
			s = &rabbitmq.Connector{}
		case "postgresql":
			s = &postgresql.Connector{}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownSink, kind)
		}

		if err := s.Init(params); err != nil {
			return err
		}

		r.AddSink(s)
		r.connectors = append(r.connectors, s)
		log.Infof("Export sink %s connected", kind)
	}
	return nil
}

// Close releases every connection opened by LoadSinks.
func (r *Repository) Close() error {
	var first error
	for _, c := range r.connectors {
		if err := c.Close(); err != nil {
			log.WithField("err", err).Error("Failed to close export sink")
			if first == nil {
				first = err
			}
		}
	}
	return first
}
