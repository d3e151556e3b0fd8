package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/depmend/depmend/internal/app"
	"github.com/depmend/depmend/internal/config"
)

var (
	ErrHelpRequested        = errors.New("help requested")
	ErrConflictingVerbosity = errors.New("cannot use both --verbose and --quiet")
)

func ParseArgs(args []string) (app.Request, error) {
	req := app.DefaultRequest()
	if len(args) > 0 && isHelpArg(args[0]) {
		return req, ErrHelpRequested
	}
	args = normalizeArgs(args)

	fs := flag.NewFlagSet("depmend", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var recursive, assumeYes, skipPipUpgrade, verbose, quiet bool
	fs.BoolVar(&recursive, "recursive", false, "walk directories recursively")
	fs.BoolVar(&recursive, "r", false, "walk directories recursively")
	fs.BoolVar(&assumeYes, "yes", false, "install without asking for confirmation")
	fs.BoolVar(&assumeYes, "y", false, "install without asking for confirmation")
	fs.BoolVar(&skipPipUpgrade, "skip-pip-upgrade", false, "skip the pip self-upgrade check")
	fs.BoolVar(&verbose, "verbose", false, "debug logging")
	fs.BoolVar(&verbose, "v", false, "debug logging")
	fs.BoolVar(&quiet, "quiet", false, "warnings and errors only")
	fs.BoolVar(&quiet, "q", false, "warnings and errors only")
	mappingPath := fs.String("mapping", "", "import-to-package mapping overrides (JSON)")
	configPath := fs.String("config", "", "config file path")
	pythonPath := fs.String("python", "", "Python interpreter to use")
	retries := fs.Int("retries", 0, "install attempts per package")
	timeoutInstall := fs.Int("timeout-install", 0, "per-attempt install timeout in seconds")
	timeoutManifest := fs.Int("timeout-manifest", 0, "per-attempt requirements file timeout in seconds")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return req, ErrHelpRequested
		}
		return req, err
	}
	if verbose && quiet {
		return req, ErrConflictingVerbosity
	}

	visited := visitedFlags(fs)

	fileOverrides, _, err := config.Load(".", strings.TrimSpace(*configPath))
	if err != nil {
		return req, err
	}
	resolved := fileOverrides.Apply(config.Defaults())

	cliOverrides := config.Overrides{}
	if visited["python"] {
		cliOverrides.Python = pythonPath
	}
	if visited["mapping"] {
		cliOverrides.MappingFile = mappingPath
	}
	if visited["retries"] {
		cliOverrides.Retries = retries
	}
	if visited["timeout-install"] {
		if *timeoutInstall <= 0 {
			return req, fmt.Errorf("--timeout-install must be > 0")
		}
		duration := time.Duration(*timeoutInstall) * time.Second
		cliOverrides.InstallTimeout = &duration
	}
	if visited["timeout-manifest"] {
		if *timeoutManifest <= 0 {
			return req, fmt.Errorf("--timeout-manifest must be > 0")
		}
		duration := time.Duration(*timeoutManifest) * time.Second
		cliOverrides.ManifestTimeout = &duration
	}
	resolved = cliOverrides.Apply(resolved)
	if err := resolved.Validate(); err != nil {
		return req, err
	}

	req = app.FromValues(resolved)
	req.Paths = fs.Args()
	req.Recursive = recursive
	req.AssumeYes = assumeYes
	if skipPipUpgrade {
		req.CheckPipUpgrade = false
	}
	if verbose {
		req.LogLevel = "debug"
	}
	if quiet {
		req.LogLevel = "warn"
	}
	return req, nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			if flagNeedsValue(arg) && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positionals = append(positionals, arg)
	}

	return append(flags, positionals...)
}

func flagNeedsValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	switch arg {
	case "--mapping", "--config", "--python", "--retries", "--timeout-install", "--timeout-manifest":
		return true
	default:
		return false
	}
}

func visitedFlags(fs *flag.FlagSet) map[string]bool {
	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	return visited
}
