// Package config loads and persists per-repository configuration.
//
// The configuration lives at the root of the knowledge repository itself
// (committed alongside the posts), so every collaborator sees the same base
// branch, remote name, and post suffix.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file at the repository root.
const FileName = ".knowledge_repo.yaml"

// Config holds the per-repository configuration.
type Config struct {
	// BaseBranch is the trunk branch representing published posts.
	BaseBranch string `yaml:"base_branch"`
	// RemoteName is the remote posts are submitted to.
	RemoteName string `yaml:"remote_name"`
	// PostSuffix is the reserved suffix for knowledge post directories.
	PostSuffix string `yaml:"post_suffix"`
	// ResourcesURL, when set, is cloned into .resources at bootstrap.
	ResourcesURL string `yaml:"resources_url,omitempty"`
	// ResourcesBranch pins the resources clone to a branch.
	ResourcesBranch string `yaml:"resources_branch,omitempty"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		BaseBranch:      "master",
		RemoteName:      "origin",
		PostSuffix:      ".kp",
		ResourcesBranch: "stable",
	}
}

// Load reads the configuration file from the repository root.
// A missing file yields the defaults; a malformed file is an error.
func Load(repoPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(repoPath, FileName))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration file to the repository root.
func (c *Config) Save(repoPath string) error {
	c.normalize()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(repoPath, FileName), data, 0644)
}

// normalize fills empty fields back in with defaults.
func (c *Config) normalize() {
	def := Default()
	if strings.TrimSpace(c.BaseBranch) == "" {
		c.BaseBranch = def.BaseBranch
	}
	if strings.TrimSpace(c.RemoteName) == "" {
		c.RemoteName = def.RemoteName
	}
	if strings.TrimSpace(c.PostSuffix) == "" {
		c.PostSuffix = def.PostSuffix
	}
	if strings.TrimSpace(c.ResourcesBranch) == "" {
		c.ResourcesBranch = def.ResourcesBranch
	}
}

// IsPostPath reports whether path names a knowledge post directory.
func (c *Config) IsPostPath(path string) bool {
	return strings.HasSuffix(strings.TrimSuffix(path, "/"), c.PostSuffix)
}
