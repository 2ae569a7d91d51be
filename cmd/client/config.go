package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// BB_SERVER_ADDR is used when %connect is issued without arguments.
	ServerAddr string `envconfig:"SERVER_ADDR" default:"localhost:8000"`
	// BB_COLOURS enables colorized output for better readability.
	Colours bool `envconfig:"COLOURS" default:"true"`
	// BB_DEFAULT_GROUP backs the short %join/%post/%users commands.
	DefaultGroup string `envconfig:"DEFAULT_GROUP" default:"1"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("bb", &cfg)
	return cfg, err
}
