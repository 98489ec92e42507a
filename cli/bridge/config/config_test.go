package config

import (
	"io/ioutil"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigLoad(t *testing.T) {
	// To prevent log output during tests
	log.SetOutput(ioutil.Discard)

	cfg := `link_address: "tcp://10.0.0.5:5760"
conn_ttl: 20
host: "127.0.0.1"
port: "8080"
log_level: "DEBUG"

sinks:
  nats:
    address: "nats://localhost:4222"
    subject: "telemetry.snapshot"
  postgresql:
    host: "localhost"
    port: "5432"
    user: "postgres"
    password: "postgres"
    database: "telemetry"
    table: "telemetry"
    sslmode: "disable"
`

	file, err := ioutil.TempFile("/tmp", "config.yaml")
	if !assert.NoError(t, err) {
		return
	}
	defer os.Remove(file.Name())

	if _, err = file.WriteString(cfg); !assert.NoError(t, err) {
		return
	}

	conf, err := New(file.Name())
	if assert.NoError(t, err) {
		assert.Equal(t, Settings{
			LinkAddress:     "tcp://10.0.0.5:5760",
			ConnTTL:         20,
			RetryMin:        1,
			RetryMax:        30,
			Host:            "127.0.0.1",
			Port:            "8080",
			SubscriberQueue: 16,
			HistorySize:     1024,
			StaleAfter:      5,
			LogLevel:        "DEBUG",
			ExportBuffer:    256,
			Sinks: map[string]map[string]string{
				"nats": {
					"address": "nats://localhost:4222",
					"subject": "telemetry.snapshot",
				},
				"postgresql": {
					"host":     "localhost",
					"port":     "5432",
					"user":     "postgres",
					"password": "postgres",
					"database": "telemetry",
					"table":    "telemetry",
					"sslmode":  "disable",
				},
			},
		},
			conf,
		)
	}
}

func TestConfigDefaultsAndCorrections(t *testing.T) {
	// To prevent log output during tests
	log.SetOutput(ioutil.Discard)

	tests := []struct {
		name         string
		yamlContent  string
		wantAddress  string
		wantRetryMin int
		wantRetryMax int
		wantConnTTL  int
	}{
		{
			name:         "empty config gets defaults",
			yamlContent:  "# empty config\n",
			wantAddress:  "udp://0.0.0.0:14550",
			wantRetryMin: 1,
			wantRetryMax: 30,
			wantConnTTL:  10,
		},
		{
			name:         "explicit values survive",
			yamlContent:  "link_address: \"udp://0.0.0.0:14551\"\nretry_min: 5\nretry_max: 60\nconn_ttl: 3\n",
			wantAddress:  "udp://0.0.0.0:14551",
			wantRetryMin: 5,
			wantRetryMax: 60,
			wantConnTTL:  3,
		},
		{
			name:         "retry_min above retry_max is corrected",
			yamlContent:  "retry_min: 40\nretry_max: 2\n",
			wantAddress:  "udp://0.0.0.0:14550",
			wantRetryMin: 1,
			wantRetryMax: 30,
			wantConnTTL:  10,
		},
		{
			name:         "negative conn_ttl is corrected",
			yamlContent:  "conn_ttl: -1\n",
			wantAddress:  "udp://0.0.0.0:14550",
			wantRetryMin: 1,
			wantRetryMax: 30,
			wantConnTTL:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := ioutil.TempFile("", "bridge_config_*.yaml")
			if !assert.NoError(t, err) {
				return
			}
			defer os.Remove(file.Name())

			if _, err = file.WriteString(tt.yamlContent); !assert.NoError(t, err) {
				return
			}
			file.Close()

			cfg, err := New(file.Name())
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tt.wantAddress, cfg.LinkAddress)
			assert.Equal(t, tt.wantRetryMin, cfg.RetryMin)
			assert.Equal(t, tt.wantRetryMax, cfg.RetryMax)
			assert.Equal(t, tt.wantConnTTL, cfg.ConnTTL)
		})
	}
}

func TestConfigMissingFile(t *testing.T) {
	_, err := New("/tmp/bridge_config_that_does_not_exist.yaml")
	assert.Error(t, err)
}

func TestGetters(t *testing.T) {
	s := Settings{ConnTTL: 10, RetryMin: 1, RetryMax: 30, StaleAfter: 5, Host: "127.0.0.1", Port: "8080", LogLevel: "WARN"}

	assert.Equal(t, "127.0.0.1:8080", s.GetListenAddress())
	assert.Equal(t, log.WarnLevel, s.GetLogLevel())
	assert.Equal(t, "10s", s.GetConnTTL().String())
	assert.Equal(t, "1s", s.GetRetryMin().String())
	assert.Equal(t, "30s", s.GetRetryMax().String())
	assert.Equal(t, "5s", s.GetStaleAfter().String())

	s.LogLevel = "bogus"
	assert.Equal(t, log.InfoLevel, s.GetLogLevel())
}
