package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/depmend/depmend/internal/safeio"
)

const (
	readConfigFileErrFmt = "read config file %s: %w"
	parseConfigErrFmt    = "parse config file %s: %w"
)

var configFileNames = []string{"depmend.yml", "depmend.yaml", "depmend.toml"}

// Load resolves the configuration file for workDir. An explicit path must
// exist; otherwise the well-known file names are probed in order and
// absence of all of them just yields empty overrides.
func Load(workDir, explicitPath string) (Overrides, string, error) {
	workAbs, err := filepath.Abs(workDir)
	if err != nil {
		return Overrides{}, "", fmt.Errorf("resolve working directory: %w", err)
	}

	configPath, found, err := resolveConfigPath(workAbs, strings.TrimSpace(explicitPath))
	if err != nil {
		return Overrides{}, "", err
	}
	if !found {
		return Overrides{}, "", nil
	}

	data, err := safeio.ReadFile(configPath)
	if err != nil {
		return Overrides{}, "", fmt.Errorf(readConfigFileErrFmt, configPath, err)
	}
	cfg, err := parseConfig(configPath, data)
	if err != nil {
		return Overrides{}, "", fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	overrides, err := cfg.toOverrides()
	if err != nil {
		return Overrides{}, "", fmt.Errorf(parseConfigErrFmt, configPath, err)
	}
	return overrides, configPath, nil
}

func resolveConfigPath(workDir, explicitPath string) (string, bool, error) {
	if explicitPath != "" {
		candidate := explicitPath
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(workDir, candidate)
		}
		candidate = filepath.Clean(candidate)
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file not found: %s", candidate)
			}
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
		return candidate, true, nil
	}

	for _, name := range configFileNames {
		candidate := filepath.Join(workDir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !os.IsNotExist(err) {
			return "", false, fmt.Errorf(readConfigFileErrFmt, candidate, err)
		}
	}
	return "", false, nil
}

type rawConfig struct {
	Python          *string     `yaml:"python" toml:"python"`
	MappingFile     *string     `yaml:"mapping_file" toml:"mapping_file"`
	Retries         *int        `yaml:"retries" toml:"retries"`
	LogLevel        *string     `yaml:"log_level" toml:"log_level"`
	CheckPipUpgrade *bool       `yaml:"check_pip_upgrade" toml:"check_pip_upgrade"`
	Timeouts        rawTimeouts `yaml:"timeouts" toml:"timeouts"`
}

type rawTimeouts struct {
	InstallSeconds    *int `yaml:"install" toml:"install"`
	ManifestSeconds   *int `yaml:"manifest" toml:"manifest"`
	PipUpgradeSeconds *int `yaml:"pip_upgrade" toml:"pip_upgrade"`
}

func parseConfig(path string, data []byte) (rawConfig, error) {
	var cfg rawConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return rawConfig{}, fmt.Errorf("invalid TOML config: %w", err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		// An empty document decodes as io.EOF, which is just an empty config.
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return rawConfig{}, fmt.Errorf("invalid YAML config: %w", err)
		}
	}
	return cfg, nil
}

func (c *rawConfig) toOverrides() (Overrides, error) {
	overrides := Overrides{
		Python:          c.Python,
		MappingFile:     c.MappingFile,
		Retries:         c.Retries,
		LogLevel:        c.LogLevel,
		CheckPipUpgrade: c.CheckPipUpgrade,
	}
	var err error
	if overrides.InstallTimeout, err = secondsOverride("timeouts.install", c.Timeouts.InstallSeconds); err != nil {
		return Overrides{}, err
	}
	if overrides.ManifestTimeout, err = secondsOverride("timeouts.manifest", c.Timeouts.ManifestSeconds); err != nil {
		return Overrides{}, err
	}
	if overrides.PipUpgradeTimeout, err = secondsOverride("timeouts.pip_upgrade", c.Timeouts.PipUpgradeSeconds); err != nil {
		return Overrides{}, err
	}
	return overrides, nil
}

func secondsOverride(name string, seconds *int) (*time.Duration, error) {
	if seconds == nil {
		return nil, nil
	}
	if *seconds <= 0 {
		return nil, fmt.Errorf("invalid setting %s: %d (must be > 0)", name, *seconds)
	}
	duration := time.Duration(*seconds) * time.Second
	return &duration, nil
}
