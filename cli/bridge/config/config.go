package config

/*
Configuration file description
*/

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"gopkg.in/yaml.v2"
)

type Settings struct {
	LinkAddress     string                       `yaml:"link_address"`
	ConnTTL         int                          `yaml:"conn_ttl"`
	RetryMin        int                          `yaml:"retry_min"`
	RetryMax        int                          `yaml:"retry_max"`
	Host            string                       `yaml:"host"`
	Port            string                       `yaml:"port"`
	SubscriberQueue int                          `yaml:"subscriber_queue"`
	HistorySize     int                          `yaml:"history_size"`
	StaleAfter      int                          `yaml:"stale_after"`
	LogLevel        string                       `yaml:"log_level"`
	LogFilePath     string                       `yaml:"log_file_path"`
	LogMaxAgeDays   int                          `yaml:"log_max_age_days"`
	ExportBuffer    int                          `yaml:"export_buffer"`
	ExportWorkers   int                          `yaml:"export_workers"`
	Sinks           map[string]map[string]string `yaml:"sinks"`
}

// GetConnTTL is the read deadline on the vehicle link.
func (s *Settings) GetConnTTL() time.Duration {
	return time.Duration(s.ConnTTL) * time.Second
}

func (s *Settings) GetRetryMin() time.Duration {
	return time.Duration(s.RetryMin) * time.Second
}

func (s *Settings) GetRetryMax() time.Duration {
	return time.Duration(s.RetryMax) * time.Second
}

func (s *Settings) GetStaleAfter() time.Duration {
	return time.Duration(s.StaleAfter) * time.Second
}

func (s *Settings) GetListenAddress() string {
	return s.Host + ":" + s.Port
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, err
	}

	if c.LinkAddress == "" {
		c.LinkAddress = "udp://0.0.0.0:14550"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.ConnTTL == 0 {
		c.ConnTTL = 10
	}
	if c.RetryMin == 0 {
		c.RetryMin = 1
	}
	if c.RetryMax == 0 {
		c.RetryMax = 30
	}
	if c.SubscriberQueue == 0 {
		c.SubscriberQueue = 16
	}
	if c.HistorySize == 0 {
		c.HistorySize = 1024
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = 5
	}
	if c.ExportBuffer == 0 {
		c.ExportBuffer = 256
	}

	if c.ConnTTL < 0 || c.StaleAfter < 0 {
		log.Errorf("Invalid conn_ttl (%d) or stale_after (%d). Values must be positive. Defaulting to 10 and 5.", c.ConnTTL, c.StaleAfter)
		c.ConnTTL = 10
		c.StaleAfter = 5
	}

	if c.RetryMin < 1 || c.RetryMin > c.RetryMax {
		log.Errorf("Invalid retry_min (%d) or retry_max (%d). Defaulting to 1 and 30.", c.RetryMin, c.RetryMax)
		c.RetryMin = 1
		c.RetryMax = 30
	}

	return c, err
}
