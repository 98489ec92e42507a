package postgresql

/*
Settings that may (but do not have to) appear in the sink config section:

host = "localhost"
port = "5432"
user = "postgres"
password = "postgres"
database = "telemetry"
table = "telemetry"
sslmode = "disable"
*/

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type Connector struct {
	connection *sql.DB
	table      string
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("invalid sink configuration")
	}

	c.table = cfg["table"]
	if c.table == "" {
		c.table = "telemetry"
	}

	connStr := fmt.Sprintf("dbname=%s host=%s port=%s user=%s password=%s sslmode=%s",
		cfg["database"], cfg["host"], cfg["port"], cfg["user"], cfg["password"], cfg["sslmode"])
	if c.connection, err = sql.Open("postgres", connStr); err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	if err = c.connection.Ping(); err != nil {
		return fmt.Errorf("PostgreSQL is unavailable: %v", err)
	}

	createQuery := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id smallint PRIMARY KEY, snapshot jsonb NOT NULL, updated_at timestamptz NOT NULL DEFAULT now())",
		c.table)
	if _, err = c.connection.Exec(createQuery); err != nil {
		return fmt.Errorf("failed to create the telemetry table: %v", err)
	}
	return nil
}

// Publish keeps a single row holding the latest snapshot.
func (c *Connector) Publish(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("invalid snapshot reference")
	}

	data, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %v", err)
	}

	upsertQuery := fmt.Sprintf(
		"INSERT INTO %s (id, snapshot, updated_at) VALUES (1, $1, now()) ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at",
		c.table)
	if _, err = c.connection.Exec(upsertQuery, data); err != nil {
		return fmt.Errorf("failed to upsert the snapshot: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	return c.connection.Close()
}
