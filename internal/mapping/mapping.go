// Package mapping translates Python import names into installable
// distribution names. A built-in table covers the common cases where the
// two diverge; a user-supplied JSON file can extend or override it.
package mapping

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/depmend/depmend/internal/safeio"
)

// defaultEntries maps import names (lowercase) to distribution names.
var defaultEntries = map[string]string{
	"cv2":        "opencv-python",
	"yaml":       "PyYAML",
	"bs4":        "beautifulsoup4",
	"skimage":    "scikit-image",
	"sklearn":    "scikit-learn",
	"pil":        "Pillow",
	"pandas":     "pandas",
	"numpy":      "numpy",
	"scipy":      "scipy",
	"matplotlib": "matplotlib",
	"requests":   "requests",
	"flask":      "Flask",
	"django":     "Django",
}

// overrideSchema constrains the user mapping file to a flat object of
// string values.
const overrideSchema = `{
	"type": "object",
	"additionalProperties": {"type": "string"}
}`

type Table struct {
	entries map[string]string
}

// NewTable merges user overrides on top of the built-in defaults. Override
// keys win on collision. The table is immutable after construction.
func NewTable(overrides map[string]string) Table {
	entries := make(map[string]string, len(defaultEntries)+len(overrides))
	for name, pkg := range defaultEntries {
		entries[name] = pkg
	}
	for name, pkg := range overrides {
		entries[strings.ToLower(name)] = pkg
	}
	return Table{entries: entries}
}

// Resolve returns the normalized distribution name for an import name.
// Lookup is case-insensitive; names absent from the table fall back to the
// import name itself (the common case where import and distribution match).
func (t Table) Resolve(importName string) string {
	if pkg, ok := t.entries[strings.ToLower(importName)]; ok {
		return Normalize(pkg)
	}
	return Normalize(importName)
}

// Len reports the number of entries in the merged table.
func (t Table) Len() int {
	return len(t.entries)
}

// Normalize converts a distribution name to its canonical comparison form:
// lowercase with underscores replaced by hyphens. Idempotent.
func Normalize(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.ReplaceAll(name, "_", "-")
}

// LoadOverrides reads a user mapping file. Every failure mode (missing file,
// invalid JSON, non-object document) is logged and yields an empty map so
// the built-in defaults stay in effect. Keys are lowercased on load.
func LoadOverrides(path string, logger *log.Logger) map[string]string {
	if path == "" {
		logger.Debug("no user mapping file configured")
		return nil
	}

	data, err := safeio.ReadFile(path)
	if err != nil {
		logger.Error("user mapping file unreadable, keeping defaults", "path", path, "err", err)
		return nil
	}

	if err := validateOverrides(data); err != nil {
		logger.Error("user mapping file rejected, keeping defaults", "path", path, "err", err)
		return nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Error("user mapping file rejected, keeping defaults", "path", path, "err", err)
		return nil
	}

	overrides := make(map[string]string, len(raw))
	for name, pkg := range raw {
		overrides[strings.ToLower(name)] = pkg
	}
	logger.Info("loaded user import mapping", "path", path, "entries", len(overrides))
	return overrides
}

func validateOverrides(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(overrideSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate mapping document: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			issues = append(issues, issue.String())
		}
		return fmt.Errorf("mapping document is not a flat string map: %s", strings.Join(issues, "; "))
	}
	return nil
}
