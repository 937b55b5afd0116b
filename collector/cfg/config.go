package cfg

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config interface {
	Port() uint
	Host() string
	DebugFilesTmpDir() string
	EventsTmpDir() string
	RabbitServer() string
	RabbitQueue() string
	LogLevel() string
	MaxEventSize() int64

	// monitoring
	MonitoringEnable() bool
	MetricsPath() string
}

const defaultMaxEventSize = 10 << 20

var GlobalConfigMutex sync.Mutex
var GlobalConfig Config
var GlobalConfigPath string

// FromFile reads the configuration. Files ending in .yml or .yaml are YAML, anything else JSON.
func FromFile(pathTo string) (Config, error) {
	data, err := os.ReadFile(pathTo)
	if err != nil {
		log.WithError(err).Error("Get config failed")
		return nil, err
	}

	var jconf JsonConfig
	switch strings.ToLower(filepath.Ext(pathTo)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &jconf)
	default:
		err = json.Unmarshal(data, &jconf)
	}
	if err != nil {
		log.WithError(err).Error("Error at cfg parsing")
		return nil, err
	}

	if jconf.TemproryDirs == nil || len(jconf.TemproryDirs.DebugFiles) == 0 {
		return nil, errors.New("The path to the temporary debug files directory is not set")
	}

	if len(jconf.TemproryDirs.Events) == 0 {
		return nil, errors.New("The path to the temporary events directory is not set")
	}

	if jconf.Server == nil {
		jconf.Server = &WebServerCfg{Port: 8080}
	}
	if jconf.Rabbit == nil {
		jconf.Rabbit = &RabbitCfg{}
	}
	if jconf.Log == nil {
		jconf.Log = &LogCfg{Level: "info"}
	}
	if jconf.Monitoring == nil {
		jconf.Monitoring = &MonitoringCfg{}
	}

	return &jconf, nil
}
