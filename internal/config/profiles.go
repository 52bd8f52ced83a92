package config

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/embertail-io/embertail/internal/models"
)

// ErrNoSelection is returned when the operator deliberately cancels the
// interactive profile picker. Callers treat it as a graceful exit.
var ErrNoSelection = errors.New("no profile selected")

// PickFunc presents an interactive choice over profiles and returns the
// selected one. ok is false when the operator cancelled.
type PickFunc func(profiles []models.Profile) (selected models.Profile, ok bool, err error)

// ResolveProfile produces exactly one active profile from the loaded
// configuration. The returned value is effective: interval defaults are
// applied to the copy, never written back into cfg.
func ResolveProfile(cfg *models.Config, name string, interactive bool, pick PickFunc, logger *slog.Logger) (models.Profile, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Profiles) == 0 {
		return models.Profile{}, errors.New("no profiles configured")
	}

	var p models.Profile
	switch {
	case len(cfg.Profiles) == 1:
		for _, only := range cfg.Profiles {
			p = only
		}
	case name != "":
		var ok bool
		p, ok = cfg.Profiles[name]
		if !ok {
			return models.Profile{}, fmt.Errorf("unknown profile %q (have: %s)", name, strings.Join(profileNames(cfg), ", "))
		}
	case interactive:
		selected, ok, err := pick(sortedProfiles(cfg))
		if err != nil {
			return models.Profile{}, fmt.Errorf("profile selection: %w", err)
		}
		if !ok {
			return models.Profile{}, ErrNoSelection
		}
		p = selected
	default:
		return models.Profile{}, fmt.Errorf("multiple profiles configured, pass one of: %s", strings.Join(profileNames(cfg), ", "))
	}

	if p.PollingInterval <= 0 {
		logger.Debug("using default polling interval", "profile", p.Name, "seconds", int(models.DefaultPollingInterval.Seconds()))
	} else {
		logger.Debug("using configured polling interval", "profile", p.Name, "seconds", p.PollingInterval)
	}
	if p.RefreshLoglistInterval <= 0 {
		logger.Debug("using default loglist refresh interval", "profile", p.Name, "seconds", int(models.DefaultRefreshLoglistInterval.Seconds()))
	} else {
		logger.Debug("using configured loglist refresh interval", "profile", p.Name, "seconds", p.RefreshLoglistInterval)
	}
	return p, nil
}

func profileNames(cfg *models.Config) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedProfiles(cfg *models.Config) []models.Profile {
	profiles := make([]models.Profile, 0, len(cfg.Profiles))
	for _, name := range profileNames(cfg) {
		profiles = append(profiles, cfg.Profiles[name])
	}
	return profiles
}
