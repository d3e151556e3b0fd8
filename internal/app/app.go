package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/depmend/depmend/internal/logging"
	"github.com/depmend/depmend/internal/mapping"
	"github.com/depmend/depmend/internal/picker"
	"github.com/depmend/depmend/internal/pip"
	"github.com/depmend/depmend/internal/pyscan"
	"github.com/depmend/depmend/internal/report"
	"github.com/depmend/depmend/internal/workspace"
)

var (
	ErrNoInputs                = errors.New("no Python sources or requirements manifests to process")
	ErrConfirmationUnavailable = errors.New("confirmation required but no interactive terminal is attached")
	ErrInstallFailed           = errors.New("one or more installations failed")
	ErrInterrupted             = errors.New("interrupted")
)

type App struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader
	Log *log.Logger

	ResolveInterpreter func(explicit string) (string, error)
	NewRunner          func() pip.Runner
	PickFiles          func(dir string) ([]string, error)
	IsInteractive      func() bool
}

func New(out, errOut io.Writer, in io.Reader) *App {
	return &App{
		Out:                out,
		Err:                errOut,
		In:                 in,
		ResolveInterpreter: pip.ResolveInterpreter,
		NewRunner:          pip.NewRunner,
		PickFiles:          picker.Pick,
		IsInteractive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Execute runs one full invocation: collect inputs, scan imports, diff
// against the installed distributions, and install what is missing. The
// returned string is the rendered summary; it is non-empty even when the
// run ends in ErrInstallFailed.
func (a *App) Execute(ctx context.Context, req Request) (string, error) {
	logger := a.Log
	if logger == nil {
		logger = logging.New(a.Err, logging.ParseLevel(req.LogLevel))
	}

	paths, err := a.resolvePaths(req, logger)
	if err != nil {
		return "", err
	}
	if paths == nil {
		return "", nil
	}

	inputs := workspace.Collect(paths, req.Recursive, logger)
	if inputs.Empty() {
		return "", ErrNoInputs
	}
	summary := report.NewRunSummary()
	summary.InvalidPaths = inputs.Invalid
	summary.SourceCount = len(inputs.Sources)

	interpreter, err := a.ResolveInterpreter(req.Python)
	if err != nil {
		return "", fmt.Errorf("resolve Python interpreter: %w", err)
	}
	client := pip.NewClient(interpreter, a.NewRunner(), logger)
	if err := client.Bootstrap(ctx); err != nil {
		return "", err
	}

	missing, alreadyInstalled := a.resolveMissing(ctx, client, inputs.Sources, req, summary, logger)
	summary.AlreadyInstalled = alreadyInstalled

	if interrupted(ctx) {
		return "", ErrInterrupted
	}

	proceed := true
	if (len(inputs.Manifests) > 0 || len(missing) > 0) && !req.AssumeYes {
		proceed, err = a.confirm(inputs.Manifests, missing)
		if err != nil {
			return "", err
		}
	}

	installer := pip.NewInstaller(client, logger)
	if proceed {
		manifestOpts := pip.Options{Retries: req.Retries, Delay: req.Delay, Timeout: req.ManifestTimeout}
		for _, manifest := range inputs.Manifests {
			if interrupted(ctx) {
				return summary.Render(), ErrInterrupted
			}
			summary.Manifests[manifest] = installer.InstallManifest(ctx, manifest, manifestOpts)
		}
		opts := pip.Options{Retries: req.Retries, Delay: req.Delay, Timeout: req.InstallTimeout}
		for _, name := range missing {
			if interrupted(ctx) {
				return summary.Render(), ErrInterrupted
			}
			if installer.Install(ctx, name, opts) {
				summary.Installed = append(summary.Installed, name)
			} else {
				summary.Failed = append(summary.Failed, name)
			}
		}
	} else {
		logger.Info("installation declined, nothing changed")
	}

	if proceed && req.CheckPipUpgrade && !interrupted(ctx) {
		installer.UpgradePip(ctx, req.PipUpgradeTimeout)
	}
	if interrupted(ctx) {
		return summary.Render(), ErrInterrupted
	}

	if !summary.Success() {
		return summary.Render(), ErrInstallFailed
	}
	return summary.Render(), nil
}

// resolvePaths returns the input paths for this run, falling back to the
// interactive picker when none are given. A nil slice with nil error
// means the operator canceled and the run should end quietly.
func (a *App) resolvePaths(req Request, logger *log.Logger) ([]string, error) {
	if len(req.Paths) > 0 {
		return req.Paths, nil
	}
	if !a.IsInteractive() {
		return nil, ErrNoInputs
	}
	picked, err := a.PickFiles(".")
	if err != nil {
		if errors.Is(err, picker.ErrCanceled) {
			logger.Info("selection canceled, nothing to do")
			return nil, nil
		}
		return nil, err
	}
	if len(picked) == 0 {
		logger.Info("no files selected, nothing to do")
		return nil, nil
	}
	return picked, nil
}

// resolveMissing scans the sources, filters stdlib modules, maps the rest
// to package names, and diffs them against the installed distributions.
func (a *App) resolveMissing(ctx context.Context, client *pip.Client, sources []string, req Request, summary *report.RunSummary, logger *log.Logger) ([]string, map[string]string) {
	classifier := a.buildClassifier(ctx, client, logger)
	table := mapping.NewTable(mapping.LoadOverrides(req.MappingPath, logger))
	extractor := pyscan.NewExtractor(logger)

	imports := make(map[string]struct{})
	for _, source := range sources {
		for name := range extractor.Extract(ctx, source) {
			imports[name] = struct{}{}
		}
	}
	summary.TotalImports = len(imports)

	wanted := make(map[string]struct{})
	for name := range imports {
		if classifier.IsStdlib(name) {
			summary.SkippedStdlib++
			logger.Debug("skipping stdlib module", "module", name)
			continue
		}
		wanted[table.Resolve(name)] = struct{}{}
	}

	installed := pip.Inventory(ctx, client, logger)
	alreadyInstalled := make(map[string]string)
	var missing []string
	for name := range wanted {
		if version, ok := installed[name]; ok {
			alreadyInstalled[name] = version
			continue
		}
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return missing, alreadyInstalled
}

func (a *App) buildClassifier(ctx context.Context, client *pip.Client, logger *log.Logger) *pyscan.Classifier {
	modules, err := client.StdlibModules(ctx)
	if err != nil {
		logger.Warn("could not query stdlib modules from the interpreter, using fallback detection", "err", err)
		return pyscan.FallbackClassifier(client.StdlibDir(ctx), logger)
	}
	return pyscan.NewClassifier(modules)
}

// confirm prompts the operator before installing anything, listing the
// pending manifests and packages. Only an explicit yes proceeds.
func (a *App) confirm(manifests, missing []string) (bool, error) {
	if !a.IsInteractive() {
		return false, ErrConfirmationUnavailable
	}
	if len(manifests) > 0 {
		fmt.Fprintf(a.Out, "The following requirements manifests will be installed:\n")
		for _, path := range manifests {
			fmt.Fprintf(a.Out, "  %s\n", path)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(a.Out, "The following packages will be installed:\n")
		for _, name := range missing {
			fmt.Fprintf(a.Out, "  %s\n", name)
		}
	}
	fmt.Fprintf(a.Out, "Proceed? [y/N] ")

	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func interrupted(ctx context.Context) bool {
	return ctx.Err() != nil
}
