package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pior/mwire"
)

// profile is the connection profile read from a YAML file:
//
//	host: gateway.internal
//	port: 6330
//	timeout: 2s
//	chunk_size: 524288
//	debug: false
type profile struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	Timeout   time.Duration `yaml:"timeout"`
	ChunkSize int           `yaml:"chunk_size"`
	Debug     bool          `yaml:"debug"`
}

func defaultProfile() profile {
	return profile{
		Host:    mwire.DefaultHost,
		Port:    mwire.DefaultPort,
		Timeout: mwire.DefaultTimeout,
	}
}

// loadProfile reads path over the defaults. Keys missing from the file keep
// their default.
func loadProfile(path string) (profile, error) {
	p := defaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

func (p profile) clientConfig(logger *zap.Logger) mwire.Config {
	return mwire.Config{
		Host:      p.Host,
		Port:      p.Port,
		Timeout:   p.Timeout,
		ChunkSize: p.ChunkSize,
		Logger:    logger,
	}
}

func (p profile) logger() (*zap.Logger, error) {
	if !p.Debug {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
