// Package workspace classifies and collects the files an invocation will
// operate on: Python sources to scan and requirements manifests to install.
package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Inputs is the classified result of collecting operator-supplied paths.
type Inputs struct {
	Sources   []string
	Manifests []string
	Invalid   []string
}

func (in Inputs) Empty() bool {
	return len(in.Sources) == 0 && len(in.Manifests) == 0
}

// Collect resolves each supplied path into Python sources and requirements
// manifests. Directories are walked when recursive is set, otherwise only
// their immediate children are considered. Paths that do not exist or do
// not match a supported kind land in Invalid.
func Collect(paths []string, recursive bool, logger *log.Logger) Inputs {
	var inputs Inputs
	seen := make(map[string]struct{})

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		switch classify(abs) {
		case kindSource:
			inputs.Sources = append(inputs.Sources, abs)
		case kindManifest:
			inputs.Manifests = append(inputs.Manifests, abs)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("skipping path that could not be read", "path", path, "err", err)
			inputs.Invalid = append(inputs.Invalid, path)
			continue
		}
		if !info.IsDir() {
			if classify(path) == kindUnsupported {
				logger.Warn("skipping unsupported file type", "path", path)
				inputs.Invalid = append(inputs.Invalid, path)
				continue
			}
			add(path)
			continue
		}
		if err := collectDir(path, recursive, add); err != nil {
			logger.Warn("directory walk aborted", "path", path, "err", err)
			inputs.Invalid = append(inputs.Invalid, path)
		}
	}

	sort.Strings(inputs.Sources)
	sort.Strings(inputs.Manifests)
	return inputs
}

func collectDir(root string, recursive bool, add func(string)) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || shouldSkipDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if classify(path) != kindUnsupported {
			add(path)
		}
		return nil
	})
}

type kind int

const (
	kindUnsupported kind = iota
	kindSource
	kindManifest
)

func classify(path string) kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return kindSource
	case ".txt":
		return kindManifest
	}
	return kindUnsupported
}

func shouldSkipDir(name string) bool {
	switch name {
	case ".git", ".idea", "node_modules", "__pycache__", ".venv", "venv", "dist", "build", ".mypy_cache", ".pytest_cache", ".tox", ".eggs":
		return true
	}
	return false
}
