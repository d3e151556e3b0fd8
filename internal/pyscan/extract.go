// Package pyscan discovers external module references in Python source.
// Files are parsed with tree-sitter, so extraction survives syntax errors:
// the parser recovers around malformed regions and imports outside them are
// still found.
package pyscan

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

type Extractor struct {
	language *sitter.Language
	log      *log.Logger
}

func NewExtractor(logger *log.Logger) *Extractor {
	return &Extractor{
		language: python.GetLanguage(),
		log:      logger,
	}
}

// Extract returns the set of top-level absolute import names referenced by
// the file. Relative imports are skipped; they name local modules, not
// installable distributions. A missing or unparsable file yields an empty
// set and a log entry, never an error: one bad file must not end the run.
func (e *Extractor) Extract(ctx context.Context, path string) map[string]struct{} {
	imports := make(map[string]struct{})

	content, err := os.ReadFile(path)
	if err != nil {
		e.log.Error("cannot read Python file", "path", path, "err", err)
		return imports
	}

	parser := sitter.NewParser()
	parser.SetLanguage(e.language)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil || tree == nil {
		e.log.Error("cannot parse Python file", "path", path, "err", err)
		return imports
	}

	root := tree.RootNode()
	if root.HasError() {
		line, column := firstErrorPosition(root)
		e.log.Warn("syntax error in Python file, import extraction may be incomplete",
			"path", path, "line", line, "column", column)
	}

	walk(root, func(node *sitter.Node) {
		switch node.Type() {
		case "import_statement":
			collectImportNames(node, content, imports)
		case "import_from_statement":
			collectFromImport(node, content, imports)
		case "future_import_statement":
			imports["__future__"] = struct{}{}
		}
	})
	return imports
}

// collectImportNames handles `import a.b.c, d as e`: one name per clause,
// truncated to the first dotted segment.
func collectImportNames(node *sitter.Node, content []byte, imports map[string]struct{}) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			addRootSegment(child.Content(content), imports)
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				addRootSegment(name.Content(content), imports)
			}
		}
	}
}

// collectFromImport handles `from a.b import c`. Relative forms
// (`from . import x`, `from ..pkg import y`) carry a relative_import module
// node and are ignored.
func collectFromImport(node *sitter.Node, content []byte, imports map[string]struct{}) {
	module := node.ChildByFieldName("module_name")
	if module == nil || module.Type() != "dotted_name" {
		return
	}
	addRootSegment(module.Content(content), imports)
}

func addRootSegment(dotted string, imports map[string]struct{}) {
	root := strings.SplitN(strings.TrimSpace(dotted), ".", 2)[0]
	if root != "" {
		imports[root] = struct{}{}
	}
}

func walk(node *sitter.Node, visit func(*sitter.Node)) {
	visit(node)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), visit)
	}
}

// firstErrorPosition locates the first ERROR or missing node, for the
// syntax warning. Positions are 1-based.
func firstErrorPosition(node *sitter.Node) (uint32, uint32) {
	if node.IsError() || node.IsMissing() {
		point := node.StartPoint()
		return point.Row + 1, point.Column + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		return firstErrorPosition(child)
	}
	point := node.StartPoint()
	return point.Row + 1, point.Column + 1
}
