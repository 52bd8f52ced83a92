package models

// ForwardConfig configures the structured forwarding sink.
type ForwardConfig struct {
	URL       string `yaml:"url"`
	AuthToken string `yaml:"auth_token"`
	Gzip      bool   `yaml:"gzip"`
}

// Config represents the full profiles.yaml document.
type Config struct {
	// Interactive forces interactive or non-interactive mode. When nil the
	// CLI decides based on whether stdin is a terminal.
	Interactive *bool `yaml:"interactive"`

	Forward  *ForwardConfig     `yaml:"forward"`
	Profiles map[string]Profile `yaml:"profiles"`
}
