package workspace

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/depmend/depmend/internal/testutil"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestCollectClassifiesFiles(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "main.py")
	manifest := filepath.Join(dir, "requirements.txt")
	other := filepath.Join(dir, "notes.md")
	testutil.MustWriteFile(t, source, "import os\n")
	testutil.MustWriteFile(t, manifest, "requests\n")
	testutil.MustWriteFile(t, other, "x")

	inputs := Collect([]string{source, manifest, other}, false, discardLogger())

	if len(inputs.Sources) != 1 || filepath.Base(inputs.Sources[0]) != "main.py" {
		t.Fatalf("unexpected sources: %v", inputs.Sources)
	}
	if len(inputs.Manifests) != 1 || filepath.Base(inputs.Manifests[0]) != "requirements.txt" {
		t.Fatalf("unexpected manifests: %v", inputs.Manifests)
	}
	if len(inputs.Invalid) != 1 || inputs.Invalid[0] != other {
		t.Fatalf("unexpected invalid paths: %v", inputs.Invalid)
	}
}

func TestCollectMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "ghost.py")

	inputs := Collect([]string{missing}, false, discardLogger())
	if !inputs.Empty() {
		t.Fatalf("expected empty inputs, got %+v", inputs)
	}
	if len(inputs.Invalid) != 1 {
		t.Fatalf("expected missing path recorded as invalid, got %v", inputs.Invalid)
	}
}

func TestCollectDirectoryNonRecursive(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "a.py"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "nested", "b.py"), "")

	inputs := Collect([]string{dir}, false, discardLogger())
	if len(inputs.Sources) != 1 || filepath.Base(inputs.Sources[0]) != "a.py" {
		t.Fatalf("expected only immediate children, got %v", inputs.Sources)
	}
}

func TestCollectDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "a.py"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "nested", "b.py"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "nested", "reqs.txt"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "__pycache__", "c.py"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, ".venv", "lib.py"), "")

	inputs := Collect([]string{dir}, true, discardLogger())
	if len(inputs.Sources) != 2 {
		t.Fatalf("expected cache and venv dirs skipped, got %v", inputs.Sources)
	}
	if len(inputs.Manifests) != 1 {
		t.Fatalf("expected nested manifest found, got %v", inputs.Manifests)
	}
}

func TestCollectDeduplicates(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.py")
	testutil.MustWriteFile(t, source, "")

	inputs := Collect([]string{source, source, dir}, false, discardLogger())
	if len(inputs.Sources) != 1 {
		t.Fatalf("expected duplicates collapsed, got %v", inputs.Sources)
	}
}

func TestCollectSortsResults(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "zebra.py"), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "alpha.py"), "")

	inputs := Collect([]string{dir}, false, discardLogger())
	if len(inputs.Sources) != 2 || filepath.Base(inputs.Sources[0]) != "alpha.py" {
		t.Fatalf("expected sorted sources, got %v", inputs.Sources)
	}
}
