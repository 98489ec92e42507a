package rabbitmq

/*
Settings that may (but do not have to) appear in the sink config section:

host = "localhost"
port = "5672"
user = "guest"
password = "guest"
exchange = "telemetry"
*/

import (
	"fmt"

	"github.com/streadway/amqp"
)

type Connector struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("invalid sink configuration")
	}

	host := cfg["host"]
	if host == "" {
		host = "localhost"
	}
	port := cfg["port"]
	if port == "" {
		port = "5672"
	}
	user := cfg["user"]
	if user == "" {
		user = "guest"
	}
	password := cfg["password"]
	if password == "" {
		password = "guest"
	}
	c.exchange = cfg["exchange"]
	if c.exchange == "" {
		c.exchange = "telemetry"
	}

	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, password, host, port)
	if c.connection, err = amqp.Dial(url); err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}
	if c.channel, err = c.connection.Channel(); err != nil {
		return fmt.Errorf("failed to open a channel: %v", err)
	}
	if err = c.channel.ExchangeDeclare(c.exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare an exchange: %v", err)
	}
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

	err = c.channel.Publish(c.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        data,
	})
	if err != nil {
		return fmt.Errorf("failed to publish snapshot: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.connection.Close()
}
