// Package logging configures the commonlog backend shared with glsp and
// hands out named loggers.
package logging

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // backend
)

// Prefix is prepended to every logger name.
const Prefix = "asp-lsp"

// Verbosity maps a log level name onto commonlog verbosity.
func Verbosity(level string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return -2, nil
	case "warn", "warning":
		return -1, nil
	case "", "notice":
		return 0, nil
	case "info":
		return 1, nil
	case "debug":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

// Configure sets the maximum level and the output. An empty path logs to
// stderr.
func Configure(level string, path string) error {
	verbosity, err := Verbosity(level)
	if err != nil {
		return err
	}
	if path == "" {
		commonlog.Configure(verbosity, nil)
	} else {
		commonlog.Configure(verbosity, &path)
	}
	return nil
}

// Get returns the logger for a package, named asp-lsp.<name>.
func Get(name string) commonlog.Logger {
	return commonlog.GetLogger(Prefix + "." + name)
}
