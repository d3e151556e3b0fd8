package pyscan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Classifier answers whether an import name belongs to the Python standard
// library. It is built once per run and read-only afterwards.
type Classifier struct {
	modules map[string]struct{}
}

// NewClassifier builds a classifier from the interpreter's own module list
// (sys.stdlib_module_names), the authoritative source on Python >= 3.10.
func NewClassifier(modules []string) *Classifier {
	set := make(map[string]struct{}, len(modules))
	for _, name := range modules {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return &Classifier{modules: set}
}

// FallbackClassifier builds a classifier for interpreters that cannot report
// their own module list: the static table below, augmented by a best-effort
// scan of the interpreter's stdlib directory (top-level .py files and
// package directories with an __init__.py marker). The result may be
// incomplete; a failed scan silently degrades to the static table.
func FallbackClassifier(stdlibDir string, logger *log.Logger) *Classifier {
	set := make(map[string]struct{}, len(staticStdlibModules)+64)
	for _, name := range staticStdlibModules {
		set[name] = struct{}{}
	}

	if stdlibDir != "" {
		entries, err := os.ReadDir(stdlibDir)
		if err != nil {
			logger.Debug("stdlib directory scan failed, using static list only",
				"dir", stdlibDir, "err", err)
		} else {
			for _, entry := range entries {
				name := entry.Name()
				if !entry.IsDir() {
					if strings.HasSuffix(name, ".py") {
						set[strings.TrimSuffix(name, ".py")] = struct{}{}
					}
					continue
				}
				marker := filepath.Join(stdlibDir, name, "__init__.py")
				if _, err := os.Stat(marker); err == nil {
					set[name] = struct{}{}
				}
			}
		}
	}

	logger.Warn("interpreter does not expose its stdlib module list, using fallback set",
		"modules", len(set))
	return &Classifier{modules: set}
}

func (c *Classifier) IsStdlib(name string) bool {
	_, ok := c.modules[name]
	return ok
}

func (c *Classifier) Len() int {
	return len(c.modules)
}

// staticStdlibModules covers CPython standard-library modules for
// interpreters predating sys.stdlib_module_names.
var staticStdlibModules = []string{
	"__future__", "_abc", "_ast", "_asyncio", "_bisect", "_blake2", "_bootlocale", "_bz2", "_codecs",
	"_collections_abc", "_compat_pickle", "_compression", "_contextvars", "_crypt", "_csv", "_ctypes",
	"_curses", "_datetime", "_dbm", "_decimal", "_elementtree", "_functools", "_gdbm", "_hashlib",
	"_heapq", "_imp", "_io", "_json", "_locale", "_lsprof", "_lzma", "_markupbase", "_md5",
	"_multibytecodec", "_multiprocessing", "_opcode", "_operator", "_osx_support", "_pickle",
	"_posixshmem", "_posixsubprocess", "_py_abc", "_pydecimal", "_pyio", "_queue", "_random",
	"_sha1", "_sha256", "_sha3", "_sha512", "_signal", "_sitebuiltins", "_socket", "_sqlite3",
	"_sre", "_ssl", "_stat", "_statistics", "_string", "_strptime", "_struct", "_symtable", "_thread",
	"_tracemalloc", "_typing", "_uuid", "_warnings", "_weakref", "_weakrefset", "_xxsubinterpreters",
	"_zoneinfo", "abc", "aifc", "argparse", "array", "ast", "asynchat", "asyncio", "asyncore",
	"atexit", "audioop", "base64", "bdb", "binascii", "binhex", "bisect", "builtins", "bz2",
	"calendar", "cgi", "cgitb", "chunk", "cmath", "cmd", "code", "codecs", "codeop", "collections",
	"colorsys", "compileall", "concurrent", "configparser", "contextlib", "contextvars", "copy",
	"copyreg", "crypt", "csv", "ctypes", "curses", "dataclasses", "datetime", "dbm", "decimal",
	"difflib", "dis", "distutils", "doctest", "email", "encodings", "ensurepip", "enum", "errno",
	"faulthandler", "fcntl", "filecmp", "fileinput", "fnmatch", "formatter", "fractions", "ftplib",
	"functools", "gc", "getopt", "getpass", "gettext", "glob", "graphlib", "grp", "gzip", "hashlib",
	"heapq", "hmac", "html", "http", "idlelib", "imaplib", "imghdr", "imp", "importlib", "inspect",
	"io", "ipaddress", "itertools", "json", "keyword", "lib2to3", "linecache", "locale", "logging",
	"lzma", "mailbox", "mailcap", "marshal", "math", "mimetypes", "mmap", "modulefinder", "msilib",
	"msvcrt", "multiprocessing", "netrc", "nis", "nntplib", "numbers", "operator", "optparse", "os",
	"ossaudiodev", "parser", "pathlib", "pdb", "pickle", "pickletools", "pipes", "pkgutil", "platform",
	"plistlib", "poplib", "posix", "pprint", "profile", "pstats", "pty", "pwd", "py_compile", "pyclbr",
	"pydoc", "pydoc_data", "pyexpat", "queue", "quopri", "random", "re", "readline", "reprlib",
	"resource", "rlcompleter", "runpy", "sched", "secrets", "select", "selectors", "shelve", "shlex",
	"shutil", "signal", "site", "smtpd", "smtplib", "sndhdr", "socket", "socketserver", "spwd",
	"sqlite3", "sre_compile", "sre_constants", "sre_parse", "ssl", "stat", "statistics", "string",
	"stringprep", "struct", "subprocess", "sunau", "symtable", "sys", "sysconfig", "syslog",
	"tabnanny", "tarfile", "telnetlib", "tempfile", "termios", "textwrap", "this", "threading",
	"time", "timeit", "tkinter", "token", "tokenize", "trace", "traceback", "tracemalloc", "tty",
	"turtle", "turtledemo", "types", "typing", "unicodedata", "unittest", "urllib", "uu", "uuid",
	"venv", "warnings", "wave", "weakref", "webbrowser", "winreg", "winsound", "wsgiref", "xdrlib",
	"xml", "xmlrpc", "zipapp", "zipfile", "zipimport", "zlib", "zoneinfo",
}
