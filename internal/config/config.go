package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

const DefaultPath = "/etc/daybook/config.yaml"

type Config struct {
	Server  Server  `yaml:"server"`
	Journal Journal `yaml:"journal"`
	Blob    Blob    `yaml:"blob"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	SqlitePath    string `yaml:"sqlitePath"` // used when postgresDsn is empty
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	SentryDsn     string `yaml:"sentryDsn"`
	LogLevel      string `yaml:"logLevel"` // debug, info, warn, error
}

type Journal struct {
	Timezone      string        `yaml:"timezone"`
	UpdateTimeout time.Duration `yaml:"updateTimeout"`
	CreateTimeout time.Duration `yaml:"createTimeout"`
	StatsTTL      time.Duration `yaml:"statsTTL"`

	// ---
	Location *time.Location `yaml:"-"`
}

type Blob struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
	PublicURL string `yaml:"publicURL"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if err := config.applyDefaults(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Default is the configuration used when every key is omitted.
func Default() Config {
	var config Config
	_ = config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() error {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.Server.PostgresDsn == "" && c.Server.SqlitePath == "" {
		c.Server.SqlitePath = "daybook.db"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Journal.Timezone == "" {
		c.Journal.Timezone = "UTC"
	}
	if c.Journal.UpdateTimeout <= 0 {
		c.Journal.UpdateTimeout = 15 * time.Second
	}
	if c.Journal.StatsTTL <= 0 {
		c.Journal.StatsTTL = 5 * time.Minute
	}
	if c.Blob.Bucket == "" {
		c.Blob.Bucket = "daybook"
	}

	loc, err := time.LoadLocation(c.Journal.Timezone)
	if err != nil {
		return fmt.Errorf("invalid journal.timezone %q: %w", c.Journal.Timezone, err)
	}
	c.Journal.Location = loc

	return nil
}
