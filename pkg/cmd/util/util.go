// Package util contains the setup shared by the commands.
package util

import (
	"os"
	"sync"
	"time"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/config"
	"github.com/mpapenbr/motorsport-analytics/pkg/utils"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// ParseDuration returns defaultVal if value is not a valid duration
func ParseDuration(name, value string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("Invalid duration value. Using default",
			log.String("key", name),
			log.String("value", value),
			log.Duration("default", defaultVal))
		return defaultVal
	}
	return d
}

// SetupLogger creates the logger from the log-* settings and installs it as
// default logger. A log config file takes precedence over the flags.
func SetupLogger() (*log.Logger, error) {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogConfig != "" {
		cfg, err := log.LoadConfig(config.LogConfig)
		if err != nil {
			return nil, err
		}
		logger, err := log.FromConfig(os.Stderr, cfg, opts...)
		if err != nil {
			return nil, err
		}
		log.ResetDefault(logger)
		return logger, nil
	}
	if config.LogFilter != "" {
		filter, err := log.WithFilter(config.LogFilter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, filter)
	}
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.InfoLevel),
			opts...)
	default:
		logger = log.DevLogger(
			os.Stderr,
			ParseLogLevel(config.LogLevel, log.DebugLevel),
			opts...)
	}
	log.ResetDefault(logger)
	return logger, nil
}

// WaitForRequiredServices blocks until the configured database and cache
// backends accept tcp connections. It terminates the process if a service
// is not available within the wait-for-services duration.
func WaitForRequiredServices() {
	timeout := ParseDuration("wait-for-services", config.WaitForServices, 60*time.Second)

	wg := sync.WaitGroup{}
	checkTCP := func(addr string) {
		defer wg.Done()
		if err := utils.WaitForTCP(addr, timeout); err != nil {
			log.Fatal("required services not ready", log.ErrorField(err))
		}
	}

	addrs := []string{}
	if postgresAddr := utils.ExtractFromDBURL(config.DB); postgresAddr != "" {
		addrs = append(addrs, postgresAddr)
	}
	switch config.CacheStore {
	case "redis":
		addrs = append(addrs, utils.ExtractFromServiceURL(config.RedisURL, "6379"))
	case "nats":
		addrs = append(addrs, utils.ExtractFromServiceURL(config.NatsURL, "4222"))
	}
	for _, addr := range addrs {
		if addr == "" {
			continue
		}
		wg.Add(1)
		go checkTCP(addr)
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	log.Debug("Required services are available")
}
