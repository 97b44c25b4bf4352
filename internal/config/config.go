package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Logger   Logger
	Worker   WorkerConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	AppVersion string
	Port       string
	Mode       string
}

type WorkerConfig struct {
	MaxConcurrentJobs   int
	PollIntervalSeconds int
	MaxCPUUsage         float64
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	UseTLS        bool
}

type S3Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	OutputBucket string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

type PipelineConfig struct {
	JobDataDir       string
	ConfigPath       string
	ScrapeConfigPath string
	ScriptAPIURL     string
	ScriptAPIKey     string
	ScriptModel      string
	TTSCommand       string
	TTSVoice         string
	SlideAPIURL      string
	RenderCommand    string
}

const (
	defaultMaxConcurrentJobs   = 2
	defaultPollIntervalSeconds = 5
)

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Worker.MaxConcurrentJobs <= 0 {
		c.Worker.MaxConcurrentJobs = defaultMaxConcurrentJobs
	}
	if c.Worker.PollIntervalSeconds <= 0 {
		c.Worker.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Redis.RedisAddr == "" {
		return fmt.Errorf("invalid config: redis.redisAddr is required")
	}
	if c.Pipeline.JobDataDir == "" {
		return fmt.Errorf("invalid config: pipeline.jobDataDir is required")
	}
	return nil
}
