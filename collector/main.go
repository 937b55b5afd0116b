package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"crashview/collector/api"
	"crashview/collector/cfg"
)

var Build string
var Version string

const (
	SIGHUP = syscall.SIGHUP
)

func init() {

	var cPath string
	var showVersion bool = false
	var showBuild bool = false

	flag.StringVar(&cPath, "config", "", "path to configuration file (json or yaml)")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.BoolVar(&showBuild, "build", false, "show build")

	flag.Parse()

	if showVersion {
		fmt.Printf("Version: %s\n", Version)
		os.Exit(0)
	}

	if showBuild {
		fmt.Printf("Build: %s\n", Build)
		os.Exit(0)
	}

	if cPath != "" {
		conf, err := cfg.FromFile(cPath)
		if err != nil {
			log.WithError(err).Fatal("Error reading configuration file")
		}

		cfg.GlobalConfig = conf
		cfg.GlobalConfigPath = cPath

	} else {
		flag.PrintDefaults()
		log.Fatal("Config file is not set")
	}

	level, err := log.ParseLevel(cfg.GlobalConfig.LogLevel())
	if err == nil {
		log.WithField("level", level).
			Info("Change log level")
		log.SetLevel(level)
	} else {
		log.WithError(err).Warning("Can't setup log level")
	}
}

func main() {
	var service api.GinCollectorService
	if err := service.Init(); err != nil {
		log.WithError(err).Fatal("Can't start collector")
	}

	go func() {
		if err := service.Start(); err != nil {
			log.WithError(err).Fatal("HTTP server stopped")
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for sig := range signals {
		if sig != SIGHUP {
			log.WithField("signal", sig).Info("Collector stopped")
			return
		}
		reloadConfiguration()
	}
}

// reloadConfiguration applies the log level of the re-read file. Directories, queue and
// listen address take effect on restart.
func reloadConfiguration() {
	cfg.GlobalConfigMutex.Lock()
	defer cfg.GlobalConfigMutex.Unlock()

	log.Info("Try to reload configuration")
	if len(cfg.GlobalConfigPath) == 0 {
		return
	}
	conf, err := cfg.FromFile(cfg.GlobalConfigPath)
	if err != nil {
		log.WithError(err).
			Error("Error reading configuration file")
		return
	}

	if conf.LogLevel() != cfg.GlobalConfig.LogLevel() {
		if err := changeLevel(conf.LogLevel()); err != nil {
			return
		}
	}

	cfg.GlobalConfig = conf
	log.Info("Reloaded configuration")
}

func changeLevel(l string) error {
	level, err := log.ParseLevel(l)
	if err != nil {
		log.WithError(err).
			Warn("Can't parse level")
		return err
	}

	log.WithFields(log.Fields{
		"old level": cfg.GlobalConfig.LogLevel(),
		"new level": l,
	}).
		Info("Change log level")
	log.SetLevel(level)
	return nil
}
