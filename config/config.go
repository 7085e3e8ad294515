package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MadiBrom/ClassShelf/internal/metadata"
	"github.com/MadiBrom/ClassShelf/pkg/auth"
	"github.com/MadiBrom/ClassShelf/pkg/kafka"
	"github.com/MadiBrom/ClassShelf/pkg/logger"
	"github.com/MadiBrom/ClassShelf/pkg/postgres"
)

type HTTPServer struct {
	Host        string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port        string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	// WriteTimeout is set through WithWriteTimeout, not the environment.
	WriteTimeout time.Duration
}

type Config struct {
	Server      HTTPServer `yaml:"server"`
	Database    postgres.Config
	Kafka       kafka.Config
	Auth        auth.Config
	OpenLibrary metadata.Config
	Log         logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		config := new(Config)
		for _, op := range ops {
			op(config)
		}
		if err := envconfig.Process("", config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
