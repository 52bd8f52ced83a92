// Package models contains shared data structures used across the application.
package models

import "time"

// Default intervals applied by the profile resolver when a profile
// leaves them unset.
const (
	DefaultPollingInterval        = 3 * time.Second
	DefaultRefreshLoglistInterval = 600 * time.Second
)

// Profile represents one named remote log server target.
// This corresponds to an entry under profiles: in profiles.yaml.
type Profile struct {
	Name     string `yaml:"-"`
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`

	// LogTypes is an optional allow-list matched against the text before
	// the first hyphen in each log name (e.g. "error" for error-blade1.log).
	LogTypes []string `yaml:"log_types"`

	// PollingInterval and RefreshLoglistInterval are in seconds; zero means
	// "use the default". The resolver fills in effective values.
	PollingInterval        int `yaml:"polling_interval"`
	RefreshLoglistInterval int `yaml:"refresh_loglist_interval"`
}

// PollEvery returns the effective delay between poll cycles.
func (p *Profile) PollEvery() time.Duration {
	if p.PollingInterval <= 0 {
		return DefaultPollingInterval
	}
	return time.Duration(p.PollingInterval) * time.Second
}

// RefreshEvery returns the effective delay between log-list refreshes.
func (p *Profile) RefreshEvery() time.Duration {
	if p.RefreshLoglistInterval <= 0 {
		return DefaultRefreshLoglistInterval
	}
	return time.Duration(p.RefreshLoglistInterval) * time.Second
}

// AllowsType reports whether the allow-list permits the given log type.
// An empty allow-list permits everything.
func (p *Profile) AllowsType(logType string) bool {
	if len(p.LogTypes) == 0 {
		return true
	}
	for _, t := range p.LogTypes {
		if t == logType {
			return true
		}
	}
	return false
}
