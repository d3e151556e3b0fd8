// Package config resolves the tool configuration from defaults, an
// optional config file, and command-line overrides.
package config

import (
	"fmt"
	"time"
)

const (
	DefaultRetries           = 3
	DefaultLogLevel          = "info"
	DefaultCheckPipUpgrade   = true
	DefaultInstallTimeout    = 90 * time.Second
	DefaultManifestTimeout   = 300 * time.Second
	DefaultPipUpgradeTimeout = 60 * time.Second
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

type Values struct {
	Python            string
	MappingFile       string
	Retries           int
	LogLevel          string
	CheckPipUpgrade   bool
	InstallTimeout    time.Duration
	ManifestTimeout   time.Duration
	PipUpgradeTimeout time.Duration
}

type Overrides struct {
	Python            *string
	MappingFile       *string
	Retries           *int
	LogLevel          *string
	CheckPipUpgrade   *bool
	InstallTimeout    *time.Duration
	ManifestTimeout   *time.Duration
	PipUpgradeTimeout *time.Duration
}

func Defaults() Values {
	return Values{
		Retries:           DefaultRetries,
		LogLevel:          DefaultLogLevel,
		CheckPipUpgrade:   DefaultCheckPipUpgrade,
		InstallTimeout:    DefaultInstallTimeout,
		ManifestTimeout:   DefaultManifestTimeout,
		PipUpgradeTimeout: DefaultPipUpgradeTimeout,
	}
}

func (o *Overrides) Apply(base Values) Values {
	resolved := base
	if o.Python != nil {
		resolved.Python = *o.Python
	}
	if o.MappingFile != nil {
		resolved.MappingFile = *o.MappingFile
	}
	if o.Retries != nil {
		resolved.Retries = *o.Retries
	}
	if o.LogLevel != nil {
		resolved.LogLevel = *o.LogLevel
	}
	if o.CheckPipUpgrade != nil {
		resolved.CheckPipUpgrade = *o.CheckPipUpgrade
	}
	if o.InstallTimeout != nil {
		resolved.InstallTimeout = *o.InstallTimeout
	}
	if o.ManifestTimeout != nil {
		resolved.ManifestTimeout = *o.ManifestTimeout
	}
	if o.PipUpgradeTimeout != nil {
		resolved.PipUpgradeTimeout = *o.PipUpgradeTimeout
	}
	return resolved
}

func (v *Values) Validate() error {
	if v.Retries < 1 {
		return fmt.Errorf("invalid setting retries: %d (must be >= 1)", v.Retries)
	}
	if _, ok := validLogLevels[v.LogLevel]; !ok {
		return fmt.Errorf("invalid setting log_level: %q (must be one of: debug, info, warn, error)", v.LogLevel)
	}
	if err := validatePositiveDuration("timeouts.install", v.InstallTimeout); err != nil {
		return err
	}
	if err := validatePositiveDuration("timeouts.manifest", v.ManifestTimeout); err != nil {
		return err
	}
	return validatePositiveDuration("timeouts.pip_upgrade", v.PipUpgradeTimeout)
}

func validatePositiveDuration(name string, value time.Duration) error {
	if value <= 0 {
		return fmt.Errorf("invalid setting %s: %s (must be > 0)", name, value)
	}
	return nil
}
