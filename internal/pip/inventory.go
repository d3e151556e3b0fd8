package pip

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depmend/depmend/internal/mapping"
)

const listTimeout = 60 * time.Second

// Distribution is one installed package as reported by the environment.
type Distribution struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MetadataSource enumerates installed-distribution metadata. The pip-backed
// Client is the production implementation; tests substitute fixtures.
type MetadataSource interface {
	ListDistributions(ctx context.Context) ([]Distribution, error)
}

// ListDistributions shells out to `pip list --format=json`.
func (c *Client) ListDistributions(ctx context.Context) ([]Distribution, error) {
	result, err := c.Runner.Run(ctx, listTimeout, c.Python,
		"-m", "pip", "list", "--format=json", "--disable-pip-version-check")
	if err != nil {
		return nil, fmt.Errorf("pip list: %w: %s", err, strings.TrimSpace(result.Stderr))
	}
	var distributions []Distribution
	if err := json.Unmarshal([]byte(result.Stdout), &distributions); err != nil {
		return nil, fmt.Errorf("parse pip list output: %w", err)
	}
	return distributions, nil
}

// Inventory snapshots the installed packages as normalized name -> version.
// Enumeration failure degrades to an empty map: every candidate is then
// treated as missing, which at worst re-installs something already present.
// The snapshot is taken once per run; it is not refreshed after installs.
func Inventory(ctx context.Context, source MetadataSource, logger *log.Logger) map[string]string {
	installed := make(map[string]string)
	distributions, err := source.ListDistributions(ctx)
	if err != nil {
		logger.Error("cannot enumerate installed packages, treating all as missing", "err", err)
		return installed
	}
	for _, dist := range distributions {
		if strings.TrimSpace(dist.Name) == "" {
			logger.Warn("skipping distribution without a name in its metadata", "version", dist.Version)
			continue
		}
		installed[mapping.Normalize(dist.Name)] = dist.Version
	}
	logger.Info("identified installed packages in the current environment", "count", len(installed))
	return installed
}
