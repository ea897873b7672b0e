package config

// Config represents the complete debate configuration
type Config struct {
	Debate DebateConfig `yaml:"debate"`
}

// DebateConfig holds the roster, the per-agent timeout and the runtime
// used to launch agent processes.
type DebateConfig struct {
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Runtime        RuntimeConfig `yaml:"runtime"`
	Agents         []AgentConfig `yaml:"agents"`
}

// RuntimeConfig describes the external inference command. The literal
// "{model}" in Args is replaced with the agent's model reference.
type RuntimeConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// AgentConfig binds an agent name to its model reference.
type AgentConfig struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
}
