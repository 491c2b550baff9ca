package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/chemtui",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Server: ServerConfig{
			URL:          "http://localhost:8000",
			DefaultModel: "deepseek-chat",
		},
		Agent: AgentConfig{
			Temperature:   0.1,
			MaxIterations: 8,
		},
		ArchiveEnabled: true,
	}
}

func GenerateSystemConfigTemplate() string {
	return `# ChemTUI System Configuration
# Location: ~/.config/chemtui/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the exchange archive and user config are stored
data_directory = "~/.local/share/chemtui"
`
}

func GenerateUserConfigTemplate() string {
	return `# ChemTUI User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[server]
# ChemAgent backend URL
url = "http://localhost:8000"

# Default model for new exchanges
default_model = "deepseek-chat"

[agent]
# Sampling temperature passed to the backend
temperature = 0.1

# Reasoning iteration limit per exchange
max_iterations = 8

# Keep a local SQLite archive of completed exchanges
archive_enabled = true
`
}
