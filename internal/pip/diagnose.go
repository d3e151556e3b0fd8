package pip

import "strings"

// failureSignature pairs a stderr predicate with an operator-facing hint.
// The table is evaluated in order and the first match wins, so more
// specific signatures must precede generic ones. Tests extend the table
// rather than the control flow.
type failureSignature struct {
	match func(stderr string) bool
	hint  string
}

func containsAny(terms ...string) func(string) bool {
	return func(stderr string) bool {
		for _, term := range terms {
			if strings.Contains(stderr, term) {
				return true
			}
		}
		return false
	}
}

func containsAll(terms ...string) func(string) bool {
	return func(stderr string) bool {
		for _, term := range terms {
			if !strings.Contains(stderr, term) {
				return false
			}
		}
		return true
	}
}

var failureSignatures = []failureSignature{
	{
		match: containsAny("permission denied", "errno 13"),
		hint:  "permission problem: retry with elevated rights or check the install target's permissions",
	},
	{
		match: func(stderr string) bool {
			return strings.Contains(stderr, "failed building wheel") ||
				containsAll("error: command", "failed with exit status")(stderr)
		},
		hint: "wheel build failed: build tools (compiler, headers) or package-specific system libraries may be missing",
	},
	{
		match: containsAny("could not find a version that satisfies the requirement"),
		hint:  "package not found on the index: check the name for typos, or the index server/network",
	},
	{
		match: containsAny("network is unreachable", "connection timed out", "could not resolve host", "proxy error", "ssl:", "tls "),
		hint:  "network failure: check connectivity, DNS resolution, proxy settings, or SSL/TLS certificates",
	},
	{
		match: containsAny("pg_config executable not found"),
		hint:  "pg_config not found: install the PostgreSQL development headers and ensure pg_config is on PATH",
	},
	{
		match: containsAll("microsoft visual c++", "is required"),
		hint:  "Microsoft Visual C++ build tools are required but not installed",
	},
}

const genericFailureHint = "unknown pip failure: consult the full error output"

// diagnose classifies captured pip stderr against the signature table.
func diagnose(stderr string) string {
	lowered := strings.ToLower(stderr)
	for _, signature := range failureSignatures {
		if signature.match(lowered) {
			return signature.hint
		}
	}
	return genericFailureHint
}

// Packages that frequently need a C/C++ toolchain to build from source.
var needsCompiler = map[string]struct{}{
	"numpy": {}, "scipy": {}, "pandas": {}, "lxml": {}, "cryptography": {},
	"pyzmq": {}, "gevent": {}, "grpcio": {}, "libsass": {},
}

// Packages that need the PostgreSQL client development headers.
var needsPgConfig = map[string]struct{}{
	"psycopg2": {},
}
