package cfg

type RabbitCfg struct {
	Server   string `json:"server" yaml:"server"`
	Queue    string `json:"queue" yaml:"queue"`
	Exchange string `json:"post-exchange" yaml:"post-exchange"`
	Type     string `json:"post-type" yaml:"post-type"`
}

type RedisCfg struct {
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password" yaml:"password"`
}

type CacheCfg struct {
	Memcached []string `json:"memcache" yaml:"memcache"`
	Redis     RedisCfg `json:"redis" yaml:"redis"`
}

type LogCfg struct {
	Level string `json:"level" yaml:"level"`
}

type JsonConfig struct {
	DebugFilesPathName string     `json:"debug_files_pathname" yaml:"debug_files_pathname"`
	Rabbit             *RabbitCfg `json:"rabbit_cfg" yaml:"rabbit_cfg"`
	Cache              *CacheCfg  `json:"cache" yaml:"cache"`
	Elastic            string     `json:"elastic" yaml:"elastic"`
	Log                *LogCfg    `json:"log" yaml:"log"`
	FrameBList         []string   `json:"frame_blacklist" yaml:"frame_blacklist"`
	Metrics            string     `json:"metrics_addr" yaml:"metrics_addr"`
}

func (cfg *JsonConfig) DebugFilesPath() string {
	return cfg.DebugFilesPathName
}

func (cfg *JsonConfig) RabbitServer() string {
	return cfg.Rabbit.Server
}

func (cfg *JsonConfig) RabbitQueue() string {
	return cfg.Rabbit.Queue
}

func (cfg *JsonConfig) RabbitPostExchange() string {
	return cfg.Rabbit.Exchange
}

func (cfg *JsonConfig) RabbitPostType() string {
	return cfg.Rabbit.Type
}

func (cfg *JsonConfig) ElasticUrl() string {
	return cfg.Elastic
}

func (cfg *JsonConfig) Memcache() []string {
	return cfg.Cache.Memcached
}

func (cfg *JsonConfig) RedisAddres() string {
	return cfg.Cache.Redis.Address
}

func (cfg *JsonConfig) RedisPassword() string {
	return cfg.Cache.Redis.Password
}

func (cfg *JsonConfig) LogLevel() string {
	return cfg.Log.Level
}

func (cfg *JsonConfig) FrameBlackList() []string {
	return cfg.FrameBList
}

func (cfg *JsonConfig) MetricsAddress() string {
	return cfg.Metrics
}
