package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/api"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/config"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/export"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/hub"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/link"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/metrics"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/store"
)

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "")
	flag.Parse()
	settings, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		return
	}

	configureLogging(settings)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	st := store.New(settings.HistorySize)
	h := hub.New(settings.SubscriberQueue, m)

	var exporter *export.AsyncRepository
	var exp link.Exporter
	if len(settings.Sinks) > 0 {
		repository := export.NewRepository()
		if err = repository.LoadSinks(settings.Sinks); err != nil {
			log.Fatalf("Failed to connect export sinks: %v", err)
			return
		}
		defer repository.Close()

		exporter = export.NewAsyncRepository(repository, settings.ExportBuffer, settings.ExportWorkers, m)
		exp = exporter
	}

	l, err := link.New(settings.LinkAddress, settings.GetConnTTL(), settings.GetRetryMin(), settings.GetRetryMax(), st, h, exp, m)
	if err != nil {
		log.Fatalf("Failed to set up the vehicle link: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)

	handler := api.NewHandler(st, h, func() string { return l.State().String() }, settings.GetStaleAfter())
	controller := api.NewController(handler, settings.GetListenAddress(), registry)
	go func() {
		log.Infof("Starting API on %s", settings.GetListenAddress())
		if err := controller.Run(); err != nil {
			log.Fatalf("Failed to run API server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	cancel()
	h.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := controller.Shutdown(shutdownCtx); err != nil {
		log.WithField("err", err).Error("Failed to stop API server cleanly")
	}

	if exporter != nil {
		exporter.Close()
	}
}

func getConfig(configFilePath string) (config.Settings, error) {
	var c config.Settings
	var err error

	if configFilePath == "" {
		return c, errors.New("config path is not set")
	}

	c, err = config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("failed to parse config: %v", err)
	}

	return c, nil
}

func configureLogging(settings config.Settings) {
	log.SetLevel(settings.GetLogLevel())

	consoleFmt := &log.TextFormatter{ForceColors: true, FullTimestamp: false}
	log.SetFormatter(consoleFmt)
	log.SetOutput(os.Stdout)

	if settings.LogFilePath != "" {
		logDir := filepath.Dir(settings.LogFilePath)
		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
				log.Fatalf("Failed to create the log directory: %v", err)
			}
		}

		lumberjackLogger := &lumberjack.Logger{
			Filename:   settings.LogFilePath,
			MaxSize:    100,
			MaxBackups: 366,
			MaxAge:     settings.LogMaxAgeDays,
			Compress:   true,
		}

		fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
		hook := lfshook.NewHook(lfshook.WriterMap{
			log.PanicLevel: lumberjackLogger,
			log.FatalLevel: lumberjackLogger,
			log.ErrorLevel: lumberjackLogger,
			log.WarnLevel:  lumberjackLogger,
			log.InfoLevel:  lumberjackLogger,
			log.DebugLevel: lumberjackLogger,
			log.TraceLevel: lumberjackLogger,
		}, fileFmt)

		log.AddHook(hook)
	}
}
