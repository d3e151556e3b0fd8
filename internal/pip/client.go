package pip

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// interpreterCandidates are probed in order when no launcher is configured.
var interpreterCandidates = []string{"python3", "python", "py"}

const (
	probeTimeout      = 5 * time.Second
	introspectTimeout = 15 * time.Second
)

// ResolveInterpreter locates the Python executable the whole run will use.
// An explicit launcher (CLI flag or config) is honoured as-is; otherwise
// the usual interpreter names are searched on PATH.
func ResolveInterpreter(explicit string) (string, error) {
	if explicit != "" {
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("configured python launcher %q not found: %w", explicit, err)
		}
		return path, nil
	}
	for _, candidate := range interpreterCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter found on PATH (tried %s)", strings.Join(interpreterCandidates, ", "))
}

// Client talks to one resolved interpreter. All pip traffic goes through
// `<python> -m pip` so the interpreter and its package store always match.
type Client struct {
	Python string
	Runner Runner
	Log    *log.Logger
}

func NewClient(python string, runner Runner, logger *log.Logger) *Client {
	return &Client{Python: python, Runner: runner, Log: logger}
}

// Bootstrap verifies the metadata backend once at startup. Without a working
// pip the run cannot classify or install anything, so failure here is fatal
// to the caller.
func (c *Client) Bootstrap(ctx context.Context) error {
	result, err := c.Runner.Run(ctx, probeTimeout, c.Python, "-m", "pip", "--version")
	if err != nil {
		return fmt.Errorf("pip is not usable via %s: %w: %s", c.Python, err, strings.TrimSpace(result.Stderr))
	}
	c.Log.Debug("pip backend resolved", "python", c.Python, "version", strings.TrimSpace(result.Stdout))
	return nil
}

// StdlibModules asks the interpreter for its authoritative stdlib module
// list. Interpreters older than 3.10 lack sys.stdlib_module_names and make
// this fail; callers fall back to a static set.
func (c *Client) StdlibModules(ctx context.Context) ([]string, error) {
	const script = "import sys; print('\\n'.join(sorted(sys.stdlib_module_names)))"
	result, err := c.Runner.Run(ctx, introspectTimeout, c.Python, "-c", script)
	if err != nil {
		return nil, fmt.Errorf("query stdlib module names: %w: %s", err, strings.TrimSpace(result.Stderr))
	}
	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	modules := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			modules = append(modules, line)
		}
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("interpreter reported an empty stdlib module list")
	}
	return modules, nil
}

// StdlibDir reports the directory the stdlib is installed in, for the
// fallback classifier's filesystem scan. Best-effort: an empty string is a
// valid answer.
func (c *Client) StdlibDir(ctx context.Context) string {
	const script = "import os; print(os.path.dirname(os.__file__))"
	result, err := c.Runner.Run(ctx, introspectTimeout, c.Python, "-c", script)
	if err != nil {
		c.Log.Debug("cannot determine stdlib directory", "err", err)
		return ""
	}
	return strings.TrimSpace(result.Stdout)
}
