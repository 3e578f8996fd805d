// Package service reads the parts of a service configuration file that affect authentication.
package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goyaml "gopkg.in/yaml.v3"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

// FileNames are the service configuration files looked up in a directory, in order.
var FileNames = []string{"serverless.yml", "serverless.yaml"}

// Config is the authentication-relevant subset of a service configuration.
type Config struct {
	Org        string   `yaml:"org"`
	App        string   `yaml:"app"`
	Service    Name     `yaml:"service"`
	LicenseKey string   `yaml:"licenseKey"`
	Provider   Provider `yaml:"provider"`
}

// Provider holds the deployment target defaults.
type Provider struct {
	Name   string `yaml:"name"`
	Stage  string `yaml:"stage"`
	Region string `yaml:"region"`
}

// Name is a service name written either as a string or as a mapping with a name key.
type Name string

// UnmarshalYAML accepts `service: api` and `service: {name: api}`.
func (n *Name) UnmarshalYAML(node *goyaml.Node) error {
	switch node.Kind {
	case goyaml.ScalarNode:
		*n = Name(node.Value)
		return nil
	case goyaml.MappingNode:
		var named struct {
			Name string `yaml:"name"`
		}
		if err := node.Decode(&named); err != nil {
			return err
		}
		*n = Name(named.Name)
		return nil
	default:
		return fmt.Errorf("%w: service must be a string or a mapping with a name", errUtils.ErrInvalidConfigValue)
	}
}

// Parse decodes a service configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := goyaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoadServiceConfig, err)
	}
	return &cfg, nil
}

// Load reads and parses the service configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrLoadServiceConfig, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug("Loaded service configuration", "path", path)
	return cfg, nil
}

// Find loads the first service configuration file found in dir. It returns (nil, nil) when the
// directory holds none.
func Find(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: %w", errUtils.ErrLoadServiceConfig, err)
		}
		return Load(path)
	}
	return nil, nil
}
