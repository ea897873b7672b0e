package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Reics/MAGI-01/internal/models"
	"gopkg.in/yaml.v3"
)

// Defaults mirror the original MAGI deployment: the three wise men and a
// generous per-agent bound for local inference.
const (
	defaultTimeoutSeconds = 1040
	defaultCommand        = "ollama"
)

func defaultArgs() []string {
	return []string{"run", "{model}", "--format", "json", "--hidethinking", "--keepalive", "10m"}
}

func defaultAgents() []AgentConfig {
	return []AgentConfig{
		{Name: "melchior-1", Model: "melchior-1"},
		{Name: "balthasar-2", Model: "balthasar-2"},
		{Name: "casper-3", Model: "casper-3"},
	}
}

func LoadAgentsConfig() (*Config, error) {
	path := os.Getenv("AGENTS_CONFIG_PATH")
	if path == "" {
		path = "configs/agents.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultConfig returns the built-in configuration used when no YAML
// file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Debate.TimeoutSeconds == 0 {
		cfg.Debate.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.Debate.Runtime.Command == "" {
		cfg.Debate.Runtime.Command = defaultCommand
	}
	if len(cfg.Debate.Runtime.Args) == 0 {
		cfg.Debate.Runtime.Args = defaultArgs()
	}
	if len(cfg.Debate.Agents) == 0 {
		cfg.Debate.Agents = defaultAgents()
	}
}

func (c *Config) Validate() error {
	if c.Debate.TimeoutSeconds <= 0 {
		return fmt.Errorf("debate.timeout_seconds must be positive, got %d", c.Debate.TimeoutSeconds)
	}

	seen := make(map[string]bool, len(c.Debate.Agents))
	for i, agent := range c.Debate.Agents {
		if agent.Name == "" {
			return fmt.Errorf("debate.agents[%d]: name must not be empty", i)
		}
		if agent.Model == "" {
			return fmt.Errorf("debate.agents[%d] (%s): model must not be empty", i, agent.Name)
		}
		if seen[agent.Name] {
			return fmt.Errorf("debate.agents: duplicate agent name %q", agent.Name)
		}
		seen[agent.Name] = true
	}

	return nil
}

// Roster returns the ordered, immutable agent roster for a session.
func (c *Config) Roster() []models.AgentSpec {
	roster := make([]models.AgentSpec, 0, len(c.Debate.Agents))
	for _, agent := range c.Debate.Agents {
		roster = append(roster, models.AgentSpec{Name: agent.Name, Model: agent.Model})
	}
	return roster
}

// Timeout returns the per-agent invocation bound.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Debate.TimeoutSeconds) * time.Second
}
