package redis

/*
Settings that may (but do not have to) appear in the sink config section:

address = "localhost:6379"
password = ""
db = "0"
key = "telemetry:latest"
channel = "telemetry"
*/

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/go-redis/redis/v8"
)

type Connector struct {
	connection *goredis.Client
	key        string
	channel    string
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("invalid sink configuration")
	}

	address := cfg["address"]
	if address == "" {
		address = "localhost:6379"
	}
	c.key = cfg["key"]
	if c.key == "" {
		c.key = "telemetry:latest"
	}
	c.channel = cfg["channel"]
	if c.channel == "" {
		c.channel = "telemetry"
	}

	db := 0
	if cfg["db"] != "" {
		var err error
		if db, err = strconv.Atoi(cfg["db"]); err != nil {
			return fmt.Errorf("invalid db number: %v", err)
		}
	}

	c.connection = goredis.NewClient(&goredis.Options{
		Addr:     address,
		Password: cfg["password"],
		DB:       db,
	})
	if err := c.connection.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("Redis is unavailable: %v", err)
	}
	return nil
}

// Publish stores the snapshot under the configured key and announces it on
// the pub/sub channel.
func (c *Connector) Publish(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("invalid snapshot reference")
	}

	data, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %v", err)
	}

	ctx := context.Background()
	if err = c.connection.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %v", err)
	}
	if err = c.connection.Publish(ctx, c.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish snapshot: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	return c.connection.Close()
}
