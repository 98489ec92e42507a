package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/config"
)

func TestGetConfig(t *testing.T) {
	_, err := getConfig("")
	assert.EqualError(t, err, "config path is not set")

	_, err = getConfig("/tmp/bridge_config_that_does_not_exist.yaml")
	assert.Error(t, err)

	file, err := os.CreateTemp("", "bridge_*.yaml")
	if !assert.NoError(t, err) {
		return
	}
	defer os.Remove(file.Name())

	if _, err = file.WriteString("link_address: \"udp://0.0.0.0:14551\"\n"); !assert.NoError(t, err) {
		return
	}
	file.Close()

	settings, err := getConfig(file.Name())
	assert.NoError(t, err)
	assert.Equal(t, "udp://0.0.0.0:14551", settings.LinkAddress)
	assert.Equal(t, "8080", settings.Port)
}

func TestConfigureLoggingCreatesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "bridge.log")
	settings := config.Settings{LogLevel: "DEBUG", LogFilePath: logPath, LogMaxAgeDays: 7}

	configureLogging(settings)
	defer log.StandardLogger().ReplaceHooks(make(log.LevelHooks))

	probe := "log bootstrap probe"
	log.Info(probe)

	assert.Equal(t, log.DebugLevel, log.GetLevel())

	content, err := os.ReadFile(logPath)
	if assert.NoError(t, err, "log file should exist after the first record") {
		assert.True(t, strings.Contains(string(content), probe))
	}
}

func TestConfigureLoggingWithoutFile(t *testing.T) {
	settings := config.Settings{LogLevel: "WARN"}

	configureLogging(settings)
	defer log.StandardLogger().ReplaceHooks(make(log.LevelHooks))

	assert.Equal(t, log.WarnLevel, log.GetLevel())
}
