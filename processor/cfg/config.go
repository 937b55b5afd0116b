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
	DebugFilesPath() string
	RabbitServer() string
	RabbitQueue() string
	RabbitPostExchange() string
	RabbitPostType() string
	ElasticUrl() string
	Memcache() []string
	RedisAddres() string
	RedisPassword() string
	LogLevel() string
	FrameBlackList() []string
	MetricsAddress() string
}

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

	if len(jconf.DebugFilesPathName) == 0 {
		return nil, errors.New("debug_files_pathname can't be empty")
	}

	if jconf.Rabbit == nil || len(jconf.Rabbit.Server) == 0 || len(jconf.Rabbit.Queue) == 0 {
		return nil, errors.New("rabbit_cfg server and queue must be set")
	}

	if jconf.Cache == nil {
		jconf.Cache = &CacheCfg{}
	}
	if jconf.Log == nil {
		jconf.Log = &LogCfg{Level: "info"}
	}

	return &jconf, nil
}
