package app

import (
	"time"

	"github.com/depmend/depmend/internal/config"
)

type Request struct {
	Paths             []string
	Recursive         bool
	AssumeYes         bool
	Python            string
	MappingPath       string
	Retries           int
	Delay             time.Duration
	InstallTimeout    time.Duration
	ManifestTimeout   time.Duration
	PipUpgradeTimeout time.Duration
	CheckPipUpgrade   bool
	LogLevel          string
}

func DefaultRequest() Request {
	values := config.Defaults()
	return Request{
		Retries:           values.Retries,
		Delay:             5 * time.Second,
		InstallTimeout:    values.InstallTimeout,
		ManifestTimeout:   values.ManifestTimeout,
		PipUpgradeTimeout: values.PipUpgradeTimeout,
		CheckPipUpgrade:   values.CheckPipUpgrade,
		LogLevel:          values.LogLevel,
	}
}

// FromValues seeds a request from resolved configuration.
func FromValues(values config.Values) Request {
	return Request{
		Python:            values.Python,
		MappingPath:       values.MappingFile,
		Retries:           values.Retries,
		Delay:             5 * time.Second,
		InstallTimeout:    values.InstallTimeout,
		ManifestTimeout:   values.ManifestTimeout,
		PipUpgradeTimeout: values.PipUpgradeTimeout,
		CheckPipUpgrade:   values.CheckPipUpgrade,
		LogLevel:          values.LogLevel,
	}
}
