// Package config loads the pipeline configuration file. All settings are
// carried in an explicit Config value handed to the operations; nothing
// reads the environment at call time.
package config

import (
	"fmt"

	"github.com/jinzhu/configor"

	"github.com/shipyard-ci/stagebucket/pkg/packager"
)

// Config is the root of the pipeline configuration file.
type Config struct {
	Provider   ProviderConfig
	StagingDir string `yaml:"stagingdir"`
	Artifacts  []ArtifactConfig
}

// ProviderConfig locates the target bucket and how to reach it.
type ProviderConfig struct {
	Region  string `required:"true"`
	Profile string
	Bucket  string `required:"true"`
	Prefix  string
}

// ArtifactConfig describes one packaging job.
type ArtifactConfig struct {
	Name      string `required:"true"`
	Format    string `required:"true"`
	Version   string
	SourceDir string `required:"true" yaml:"sourcedir"`
	OutputDir string `yaml:"outputdir"`
	Patterns  []string
	Excludes  []string
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := configor.Load(&cfg, path); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	for i, artifact := range cfg.Artifacts {
		if _, err := packager.ParseFormat(artifact.Format); err != nil {
			return nil, fmt.Errorf("artifact %q: %w", artifact.Name, err)
		}
		if artifact.Version == "" {
			cfg.Artifacts[i].Version = "latest"
		}
	}

	return &cfg, nil
}

// Artifact returns the artifact entry named name.
func (c *Config) Artifact(name string) (*ArtifactConfig, error) {
	for i := range c.Artifacts {
		if c.Artifacts[i].Name == name {
			return &c.Artifacts[i], nil
		}
	}
	return nil, fmt.Errorf("no artifact named %q in config", name)
}
