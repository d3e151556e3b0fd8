package mapping

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/depmend/depmend/internal/testutil"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestResolveKnownImports(t *testing.T) {
	table := NewTable(nil)

	cases := map[string]string{
		"cv2":     "opencv-python",
		"yaml":    "pyyaml",
		"bs4":     "beautifulsoup4",
		"skimage": "scikit-image",
		"sklearn": "scikit-learn",
		"PIL":     "pillow",
		"flask":   "flask",
	}
	for importName, want := range cases {
		if got := table.Resolve(importName); got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", importName, got, want)
		}
	}
}

func TestResolveFallsBackToImportName(t *testing.T) {
	table := NewTable(nil)

	if got := table.Resolve("requests_oauthlib"); got != "requests-oauthlib" {
		t.Fatalf("expected identity fallback with normalization, got %q", got)
	}
	if got := table.Resolve("Tailwind"); got != "tailwind" {
		t.Fatalf("expected lowercased fallback, got %q", got)
	}
}

func TestOverridesWinOverDefaults(t *testing.T) {
	table := NewTable(map[string]string{
		"yaml":   "ruamel.yaml",
		"MyLib":  "my-lib-dist",
		"spacy_": "spacy",
	})

	if got := table.Resolve("yaml"); got != "ruamel.yaml" {
		t.Fatalf("expected override to replace default, got %q", got)
	}
	if got := table.Resolve("mylib"); got != "my-lib-dist" {
		t.Fatalf("expected case-insensitive override lookup, got %q", got)
	}
	if got := table.Resolve("cv2"); got != "opencv-python" {
		t.Fatalf("expected untouched default to survive, got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"PyYAML":          "pyyaml",
		"typing_extensions": "typing-extensions",
		"  Flask ":        "flask",
		"already-normal":  "already-normal",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
	if got := Normalize(Normalize("A_B_C")); got != "a-b-c" {
		t.Fatalf("expected Normalize to be idempotent, got %q", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := testutil.WriteTempFile(t, "mapping.json", `{"Imaging": "Pillow", "cv": "opencv-python"}`)

	overrides := LoadOverrides(path, discardLogger())
	if len(overrides) != 2 {
		t.Fatalf("expected 2 overrides, got %d", len(overrides))
	}
	if got := overrides["imaging"]; got != "Pillow" {
		t.Fatalf("expected lowercased key with original value, got %q", got)
	}
}

func TestLoadOverridesEmptyPath(t *testing.T) {
	if got := LoadOverrides("", discardLogger()); got != nil {
		t.Fatalf("expected nil for empty path, got %#v", got)
	}
}

func TestLoadOverridesMissingFile(t *testing.T) {
	if got := LoadOverrides("/does/not/exist.json", discardLogger()); got != nil {
		t.Fatalf("expected nil for missing file, got %#v", got)
	}
}

func TestLoadOverridesRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"a": `,
		"array":             `["a", "b"]`,
		"non-string values": `{"a": 1}`,
		"nested object":     `{"a": {"b": "c"}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := testutil.WriteTempFile(t, "mapping.json", content)
			if got := LoadOverrides(path, discardLogger()); got != nil {
				t.Fatalf("expected invalid document to be rejected, got %#v", got)
			}
		})
	}
}
