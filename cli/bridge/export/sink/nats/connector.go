package nats

/*
Settings that may (but do not have to) appear in the sink config section:

address = "nats://127.0.0.1:4222"
subject = "telemetry.snapshot"
*/

import (
	"fmt"

	natsio "github.com/nats-io/nats.go"
)

type Connector struct {
	connection *natsio.Conn
	subject    string
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("invalid sink configuration")
	}

	address := cfg["address"]
	if address == "" {
		address = natsio.DefaultURL
	}
	c.subject = cfg["subject"]
	if c.subject == "" {
		c.subject = "telemetry.snapshot"
	}

	connection, err := natsio.Connect(address)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %v", err)
	}
	c.connection = connection
	return nil
}

func (c *Connector) Publish(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("invalid snapshot reference")
	}

	data, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %v", err)
	}

	if err = c.connection.Publish(c.subject, data); err != nil {
		return fmt.Errorf("failed to publish snapshot: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	c.connection.Close()
	return nil
}
