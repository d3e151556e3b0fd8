package pip

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/depmend/depmend/internal/mapping"
)

// DefaultDelay is the base backoff delay between install attempts.
const DefaultDelay = 5 * time.Second

// Options controls one install target's retry behaviour. Timeouts are
// per-attempt: every retry gets a fresh budget.
type Options struct {
	Retries int
	Delay   time.Duration
	Timeout time.Duration
}

// Installer performs pip installations with bounded retries, exponential
// backoff, and heuristic failure diagnosis. Sleep is a seam so tests can
// observe backoff without waiting.
type Installer struct {
	Client *Client
	Log    *log.Logger
	Sleep  func(time.Duration)
}

func NewInstaller(client *Client, logger *log.Logger) *Installer {
	return &Installer{
		Client: client,
		Log:    logger,
		Sleep:  time.Sleep,
	}
}

// Install attempts to install a single package. It returns true on success
// and false once all attempts are exhausted or an unexpected error aborts
// the loop. Pre-flight checks only warn; they never block an attempt.
func (i *Installer) Install(ctx context.Context, name string, opts Options) bool {
	i.Log.Info("installing package", "package", name)
	i.preflight(ctx, name)

	for attempt := 0; attempt < opts.Retries; attempt++ {
		i.Log.Info("install attempt", "package", name, "attempt", attempt+1, "of", opts.Retries)
		result, err := i.Client.Runner.Run(ctx, opts.Timeout, i.Client.Python,
			"-m", "pip", "install", "--disable-pip-version-check", name)

		switch {
		case err == nil:
			i.Log.Info("package installed", "package", name)
			return true
		case errors.Is(err, ErrExit):
			i.Log.Error("install failed", "package", name, "attempt", attempt+1, "exit", result.ExitCode)
			i.Log.Error("diagnosis: " + diagnose(result.Stderr))
			logStderr(i.Log, result.Stderr)
		case errors.Is(err, ErrTimeout):
			i.Log.Error("install timed out", "package", name, "attempt", attempt+1, "timeout", opts.Timeout)
		default:
			i.Log.Error("unexpected error during install, not retrying", "package", name, "err", err)
			return false
		}

		if attempt == opts.Retries-1 {
			i.Log.Error("giving up on package after exhausting attempts", "package", name, "attempts", opts.Retries)
			return false
		}
		i.backoff(opts.Delay, attempt)
	}
	return false
}

// InstallManifest runs pip's requirements-file mode with the same retry
// loop but no pre-flight heuristics. A missing manifest fails immediately:
// there is nothing a retry could change.
func (i *Installer) InstallManifest(ctx context.Context, path string, opts Options) bool {
	if _, err := os.Stat(path); err != nil {
		i.Log.Error("requirements manifest not found", "path", path, "err", err)
		return false
	}
	i.Log.Info("installing from requirements manifest", "path", path)

	for attempt := 0; attempt < opts.Retries; attempt++ {
		i.Log.Info("manifest install attempt", "path", path, "attempt", attempt+1, "of", opts.Retries)
		result, err := i.Client.Runner.Run(ctx, opts.Timeout, i.Client.Python,
			"-m", "pip", "install", "--disable-pip-version-check", "-r", path)

		switch {
		case err == nil:
			i.Log.Info("requirements manifest processed", "path", path)
			return true
		case errors.Is(err, ErrExit):
			i.Log.Error("manifest install failed", "path", path, "attempt", attempt+1, "exit", result.ExitCode)
			logStderr(i.Log, result.Stderr)
		case errors.Is(err, ErrTimeout):
			i.Log.Error("manifest install timed out", "path", path, "attempt", attempt+1, "timeout", opts.Timeout)
		default:
			i.Log.Error("unexpected error during manifest install, not retrying", "path", path, "err", err)
			return false
		}

		if attempt == opts.Retries-1 {
			i.Log.Error("giving up on manifest after exhausting attempts", "path", path, "attempts", opts.Retries)
			return false
		}
		i.backoff(opts.Delay, attempt)
	}
	return false
}

// UpgradePip upgrades pip itself. Purely best-effort: any failure is
// logged and swallowed.
func (i *Installer) UpgradePip(ctx context.Context, timeout time.Duration) {
	i.Log.Info("checking for pip upgrades")
	result, err := i.Client.Runner.Run(ctx, timeout, i.Client.Python,
		"-m", "pip", "install", "--upgrade", "pip", "--disable-pip-version-check")
	if err != nil {
		i.Log.Error("pip self-upgrade failed", "err", err)
		logStderr(i.Log, result.Stderr)
		return
	}
	stdout := strings.ToLower(result.Stdout)
	switch {
	case strings.Contains(stdout, "successfully installed pip"):
		i.Log.Info("pip upgraded to the latest version")
	case strings.Contains(stdout, "requirement already satisfied"), strings.Contains(stdout, "requirement already up-to-date"):
		i.Log.Info("pip is already up to date")
	default:
		i.Log.Info("pip upgrade command completed")
	}
}

func (i *Installer) backoff(delay time.Duration, attempt int) {
	wait := delay * (1 << attempt)
	i.Log.Warn("waiting before next attempt", "wait", wait)
	i.Sleep(wait)
}

// preflight warns about build prerequisites known to trip up certain
// packages. Findings never abort the install.
func (i *Installer) preflight(ctx context.Context, name string) {
	normalized := mapping.Normalize(name)

	if _, ok := needsCompiler[normalized]; ok {
		if !i.anyToolAvailable(ctx, []string{"gcc", "clang", "cl.exe"}) {
			i.Log.Warn("no C/C++ compiler (gcc, clang, cl.exe) found on PATH", "package", name)
			i.Log.Warn("the install may fail while building native extensions; " + compilerHint())
		}
	}
	if _, ok := needsPgConfig[normalized]; ok {
		if !i.toolAvailable(ctx, "pg_config") {
			i.Log.Warn("pg_config not found on PATH", "package", name)
			i.Log.Warn("install the PostgreSQL development headers (libpq-dev on Debian/Ubuntu, postgresql-devel on Fedora)")
		}
	}
}

func (i *Installer) anyToolAvailable(ctx context.Context, tools []string) bool {
	for _, tool := range tools {
		if i.toolAvailable(ctx, tool) {
			return true
		}
	}
	return false
}

func (i *Installer) toolAvailable(ctx context.Context, tool string) bool {
	_, err := i.Client.Runner.Run(ctx, probeTimeout, tool, "--version")
	if err != nil {
		i.Log.Debug("external tool unavailable", "tool", tool, "err", err)
		return false
	}
	return true
}

func compilerHint() string {
	switch runtime.GOOS {
	case "windows":
		return "install the Build Tools for Visual Studio"
	case "darwin":
		return "install the Xcode command line tools (xcode-select --install)"
	default:
		return "install build-essential (Debian/Ubuntu) or the Development Tools group (Fedora)"
	}
}

func logStderr(logger *log.Logger, stderr string) {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return
	}
	logger.Error("pip stderr:\n" + stderr)
}
