// Package picker implements the interactive file selection shown when no
// input paths are given on the command line.
package picker

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleNormal   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleMarked   = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// fileListModel is the bubbletea model for multi-selecting candidate files.
type fileListModel struct {
	Files    []string
	Marked   map[int]struct{}
	Cursor   int
	Height   int
	Offset   int
	Done     bool
	Canceled bool
}

func newFileListModel(files []string) fileListModel {
	return fileListModel{
		Files:  files,
		Marked: make(map[int]struct{}),
		Height: 15,
	}
}

func (m fileListModel) Init() tea.Cmd {
	return nil
}

func (m fileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			if _, ok := m.Marked[m.Cursor]; ok {
				delete(m.Marked, m.Cursor)
			} else {
				m.Marked[m.Cursor] = struct{}{}
			}
		case "a":
			if len(m.Marked) == len(m.Files) {
				m.Marked = make(map[int]struct{})
			} else {
				for i := range m.Files {
					m.Marked[i] = struct{}{}
				}
			}
		case "enter":
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m fileListModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Select files to process"))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ navigate  space mark  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Files) {
		end = len(m.Files)
	}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if _, ok := m.Marked[i]; ok {
			mark = styleMarked.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, m.Files[i])
		if i == m.Cursor {
			b.WriteString(styleSelected.Render(line))
		} else {
			b.WriteString(styleNormal.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("  [%d/%d] %d marked", m.Cursor+1, len(m.Files), len(m.Marked))))
	return b.String()
}

// ErrCanceled is returned when the operator leaves the picker without
// confirming a selection.
var ErrCanceled = errors.New("file selection canceled")

// runProgram is a seam so tests can drive the model without a terminal.
var runProgram = func(model tea.Model) (tea.Model, error) {
	return tea.NewProgram(model).Run()
}

// Pick lists candidate .py and .txt files under dir and lets the operator
// choose which ones to process.
func Pick(dir string) ([]string, error) {
	files, err := candidates(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Python sources or requirements manifests found under %s", dir)
	}

	final, err := runProgram(newFileListModel(files))
	if err != nil {
		return nil, fmt.Errorf("run file picker: %w", err)
	}
	model, ok := final.(fileListModel)
	if !ok || model.Canceled || !model.Done {
		return nil, ErrCanceled
	}

	selected := make([]string, 0, len(model.Marked))
	for index := range model.Marked {
		selected = append(selected, model.Files[index])
	}
	sort.Strings(selected)
	return selected, nil
}

func candidates(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != dir && shouldSkipDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".py", ".txt":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func shouldSkipDir(name string) bool {
	switch name {
	case ".git", ".idea", "node_modules", "__pycache__", ".venv", "venv", "dist", "build", ".mypy_cache", ".pytest_cache", ".tox", ".eggs":
		return true
	}
	return false
}
