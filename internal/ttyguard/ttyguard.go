// Package ttyguard keeps terminal capability probes out of scripted output.
//
// Lipgloss and termenv may query the terminal (OSC 11, DSR) to detect the
// background color. In a real terminal that is invisible, but when stk's
// stdout is captured the replies can end up interleaved with JSON. Importing
// this package for its side effect sets CI=1 for invocations that never open
// the dashboard, which turns the probes off. It must be imported before any
// package that renders with lipgloss.
package ttyguard

import (
	"os"
	"strings"
)

func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv("STK_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

// scripted lists subcommands whose output is meant for pipes.
var scripted = map[string]bool{
	"items":      true,
	"item":       true,
	"tree":       true,
	"labels":     true,
	"export":     true,
	"version":    true,
	"completion": true,
	"whoami":     true,
}

// valueFlags are root flags that take a separate argument.
var valueFlags = map[string]bool{
	"--config":  true,
	"--server":  true,
	"--timeout": true,
	"--view":    true,
}

func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}
	cmd := ""
	skip := false
	for _, arg := range args {
		switch arg {
		case "--json", "--version", "--help", "-h":
			return true
		}
		switch {
		case skip:
			skip = false
		case valueFlags[arg]:
			skip = true
		case cmd == "" && !strings.HasPrefix(arg, "-"):
			cmd = arg
		}
	}
	return scripted[cmd]
}
