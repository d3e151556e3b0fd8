package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/depmend/depmend/internal/testutil"
)

func TestDefaults(t *testing.T) {
	values := Defaults()
	if values.Retries != 3 {
		t.Fatalf("expected 3 retries, got %d", values.Retries)
	}
	if values.InstallTimeout != 90*time.Second {
		t.Fatalf("unexpected install timeout %s", values.InstallTimeout)
	}
	if values.ManifestTimeout != 300*time.Second {
		t.Fatalf("unexpected manifest timeout %s", values.ManifestTimeout)
	}
	if values.PipUpgradeTimeout != 60*time.Second {
		t.Fatalf("unexpected pip upgrade timeout %s", values.PipUpgradeTimeout)
	}
	if !values.CheckPipUpgrade {
		t.Fatal("expected pip upgrade check enabled by default")
	}
	if err := values.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "depmend.yml"), `
python: /usr/bin/python3.12
retries: 5
log_level: debug
check_pip_upgrade: false
timeouts:
  install: 120
  manifest: 600
`)

	overrides, path, err := Load(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "depmend.yml" {
		t.Fatalf("unexpected config path %s", path)
	}

	values := overrides.Apply(Defaults())
	if values.Python != "/usr/bin/python3.12" {
		t.Fatalf("unexpected python %q", values.Python)
	}
	if values.Retries != 5 {
		t.Fatalf("unexpected retries %d", values.Retries)
	}
	if values.InstallTimeout != 120*time.Second {
		t.Fatalf("unexpected install timeout %s", values.InstallTimeout)
	}
	if values.ManifestTimeout != 600*time.Second {
		t.Fatalf("unexpected manifest timeout %s", values.ManifestTimeout)
	}
	if values.PipUpgradeTimeout != 60*time.Second {
		t.Fatalf("expected untouched pip upgrade timeout, got %s", values.PipUpgradeTimeout)
	}
	if values.CheckPipUpgrade {
		t.Fatal("expected pip upgrade check disabled")
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "depmend.toml"), `
retries = 2
mapping_file = "custom_mapping.json"

[timeouts]
pip_upgrade = 30
`)

	overrides, _, err := Load(dir, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values := overrides.Apply(Defaults())
	if values.Retries != 2 {
		t.Fatalf("unexpected retries %d", values.Retries)
	}
	if values.MappingFile != "custom_mapping.json" {
		t.Fatalf("unexpected mapping file %q", values.MappingFile)
	}
	if values.PipUpgradeTimeout != 30*time.Second {
		t.Fatalf("unexpected pip upgrade timeout %s", values.PipUpgradeTimeout)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	overrides, path, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path, got %q", path)
	}
	values := overrides.Apply(Defaults())
	if values != Defaults() {
		t.Fatalf("expected pure defaults, got %+v", values)
	}
}

func TestLoadEmptyYAMLFile(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "depmend.yml"), "")

	overrides, path, err := Load(dir, "")
	if err != nil {
		t.Fatalf("empty config file must not be an error, got %v", err)
	}
	if path == "" {
		t.Fatal("expected the empty file to be reported as the config path")
	}
	if values := overrides.Apply(Defaults()); values != Defaults() {
		t.Fatalf("expected pure defaults, got %+v", values)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, _, err := Load(t.TempDir(), "nope.yml")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "depmend.yml"), "retires: 5\n")

	if _, _, err := Load(dir, ""); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "depmend.yml"), "timeouts:\n  install: 0\n")

	if _, _, err := Load(dir, ""); err == nil {
		t.Fatal("expected zero timeout to be rejected")
	}
}

func TestValidate(t *testing.T) {
	values := Defaults()
	values.Retries = 0
	if err := values.Validate(); err == nil {
		t.Fatal("expected retries < 1 to fail validation")
	}

	values = Defaults()
	values.LogLevel = "loud"
	if err := values.Validate(); err == nil {
		t.Fatal("expected unknown log level to fail validation")
	}

	values = Defaults()
	values.InstallTimeout = -time.Second
	if err := values.Validate(); err == nil {
		t.Fatal("expected negative timeout to fail validation")
	}
}

func TestOverridesApplyPrecedence(t *testing.T) {
	retries := 7
	level := "error"
	overrides := Overrides{Retries: &retries, LogLevel: &level}

	values := overrides.Apply(Defaults())
	if values.Retries != 7 || values.LogLevel != "error" {
		t.Fatalf("unexpected resolved values %+v", values)
	}
	if values.InstallTimeout != DefaultInstallTimeout {
		t.Fatalf("expected untouched default, got %s", values.InstallTimeout)
	}
}
