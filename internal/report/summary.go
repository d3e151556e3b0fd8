// Package report renders the end-of-run summary.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleFailure = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RunSummary accumulates the outcome of one invocation.
type RunSummary struct {
	InvalidPaths     []string
	Manifests        map[string]bool
	SourceCount      int
	TotalImports     int
	SkippedStdlib    int
	AlreadyInstalled map[string]string
	Installed        []string
	Failed           []string
}

func NewRunSummary() *RunSummary {
	return &RunSummary{
		Manifests:        make(map[string]bool),
		AlreadyInstalled: make(map[string]string),
	}
}

// Success reports whether every attempted installation succeeded.
func (s *RunSummary) Success() bool {
	if len(s.Failed) > 0 {
		return false
	}
	for _, ok := range s.Manifests {
		if !ok {
			return false
		}
	}
	return true
}

// Render formats the summary for the terminal.
func (s *RunSummary) Render() string {
	var buffer bytes.Buffer

	buffer.WriteString(styleTitle.Render("Summary") + "\n")
	fmt.Fprintf(&buffer, "Scanned %d source file(s), %d distinct import(s), %d stdlib module(s) skipped\n",
		s.SourceCount, s.TotalImports, s.SkippedStdlib)

	if len(s.AlreadyInstalled) > 0 {
		buffer.WriteString("\nAlready installed:\n")
		writer := tabwriter.NewWriter(&buffer, 0, 0, 2, ' ', 0)
		for _, name := range sortedKeys(s.AlreadyInstalled) {
			fmt.Fprintf(writer, "  %s\t%s\n", name, styleDim.Render(s.AlreadyInstalled[name]))
		}
		_ = writer.Flush()
	}
	if len(s.Installed) > 0 {
		buffer.WriteString("\n" + styleSuccess.Render("Installed:") + "\n")
		for _, name := range s.Installed {
			fmt.Fprintf(&buffer, "  %s\n", name)
		}
	}
	if len(s.Failed) > 0 {
		buffer.WriteString("\n" + styleFailure.Render("Failed to install:") + "\n")
		for _, name := range s.Failed {
			fmt.Fprintf(&buffer, "  %s\n", name)
		}
	}
	if len(s.Manifests) > 0 {
		buffer.WriteString("\nRequirements manifests:\n")
		for _, path := range sortedManifests(s.Manifests) {
			status := styleSuccess.Render("ok")
			if !s.Manifests[path] {
				status = styleFailure.Render("failed")
			}
			fmt.Fprintf(&buffer, "  %s: %s\n", path, status)
		}
	}
	if len(s.InvalidPaths) > 0 {
		buffer.WriteString("\n" + styleWarning.Render("Skipped paths:") + "\n")
		for _, path := range s.InvalidPaths {
			fmt.Fprintf(&buffer, "  %s\n", path)
		}
	}

	buffer.WriteString("\n")
	if s.Success() {
		buffer.WriteString(styleSuccess.Render("All requested packages are installed.") + "\n")
	} else {
		buffer.WriteString(styleFailure.Render("Some installations failed; see the log above.") + "\n")
	}
	return buffer.String()
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedManifests(values map[string]bool) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
