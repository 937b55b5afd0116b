package cfg

type WebServerCfg struct {
	Port         uint   `json:"port" yaml:"port"`
	Host         string `json:"host" yaml:"host"`
	MaxEventSize int64  `json:"max_event_size" yaml:"max_event_size"`
}

type TemproryDirs struct {
	DebugFiles string `json:"debug_files" yaml:"debug_files"`
	Events     string `json:"events" yaml:"events"`
}

type RabbitCfg struct {
	Server string `json:"server" yaml:"server"`
	Queue  string `json:"queue" yaml:"queue"`
}

type LogCfg struct {
	Level string `json:"level" yaml:"level"`
}

type MonitoringCfg struct {
	Enable bool   `json:"enable" yaml:"enable"`
	Path   string `json:"path" yaml:"path"`
}

type JsonConfig struct {
	TemproryDirs *TemproryDirs  `json:"temprory_dirs" yaml:"temprory_dirs"`
	Server       *WebServerCfg  `json:"web_server" yaml:"web_server"`
	Rabbit       *RabbitCfg     `json:"rabbit_cfg" yaml:"rabbit_cfg"`
	Log          *LogCfg        `json:"log" yaml:"log"`
	Monitoring   *MonitoringCfg `json:"monitoring" yaml:"monitoring"`
}

func (cfg *JsonConfig) Port() uint {
	return cfg.Server.Port
}

func (cfg *JsonConfig) Host() string {
	return cfg.Server.Host
}

func (cfg *JsonConfig) MaxEventSize() int64 {
	if cfg.Server.MaxEventSize <= 0 {
		return defaultMaxEventSize
	}
	return cfg.Server.MaxEventSize
}

func (cfg *JsonConfig) DebugFilesTmpDir() string {
	return cfg.TemproryDirs.DebugFiles
}

func (cfg *JsonConfig) EventsTmpDir() string {
	return cfg.TemproryDirs.Events
}

func (cfg *JsonConfig) RabbitServer() string {
	return cfg.Rabbit.Server
}

func (cfg *JsonConfig) RabbitQueue() string {
	return cfg.Rabbit.Queue
}

func (cfg *JsonConfig) LogLevel() string {
	return cfg.Log.Level
}

func (cfg *JsonConfig) MonitoringEnable() bool {
	return cfg.Monitoring.Enable
}

func (cfg *JsonConfig) MetricsPath() string {
	if cfg.Monitoring.Path == "" {
		return "/metrics"
	}
	return cfg.Monitoring.Path
}
