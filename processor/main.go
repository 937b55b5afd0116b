package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"crashview/processor/cfg"
	"crashview/processor/service"
)

var Build string
var Version string

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
			log.WithError(err).
				Fatal("Error reading configuration file")
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
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var processor service.ProcessorService
	if err := processor.Init(ctx, cfg.GlobalConfig); err != nil {
		log.WithError(err).Fatal("Can't start processor")
	}
	defer processor.Close()

	processor.Loop(ctx)
	log.Info("Processor stopped")
}
