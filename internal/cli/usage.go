package cli

const usage = `Usage:
  depmend [options] [PATH ...]

Scans Python sources for imports, maps them to pip package names, and
installs whatever is missing. PATH may be a .py file, a requirements
.txt file, or a directory containing either. With no PATH and an
interactive terminal, a file picker is shown.

Options:
  -r, --recursive            Walk directories recursively
  -y, --yes                  Install without asking for confirmation
  --mapping PATH             Import-to-package mapping overrides (JSON)
  --config PATH              Config file (default: depmend.yml|.yaml|.toml)
  --python PATH              Python interpreter to use (default: autodetect)
  --retries N                Install attempts per package (default: 3)
  --timeout-install SECONDS  Per-attempt install timeout (default: 90)
  --timeout-manifest SECONDS Per-attempt requirements file timeout (default: 300)
  --skip-pip-upgrade         Skip the pip self-upgrade check
  -v, --verbose              Debug logging
  -q, --quiet                Warnings and errors only
  -h, --help                 Show this help text
`

func Usage() string {
	return usage
}
