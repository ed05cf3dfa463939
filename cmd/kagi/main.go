// Package main is the kagi CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kagi/internal/config"
	"github.com/hyperjump/kagi/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kagi/config.yaml"

// errUsage is returned by commands whose arguments are incomplete; usage has
// already been printed.
var errUsage = errors.New("invalid usage")

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory is preferred, and a missing default file yields the
// built-in defaults. Returns the config and the path that was loaded ("" for
// built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newLogger builds the command logger; debug forces debug level.
func newLogger(cfg *config.Config, debug bool) (*zap.Logger, error) {
	return utils.NewLogger(cfg.Debug || debug)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse sees them.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}
	var err error
	switch args[0] {
	case "server":
		err = runServer(args[1:], stderr)
	case "search":
		err = runSearch(args[1:], stdout, stderr)
	case "keys":
		err = runKeys(args[1:], stdout, stderr)
	case "ask":
		err = runAsk(args[1:], stdout, stderr)
	case "explain":
		err = runExplain(args[1:], stdout, stderr)
	case "import":
		err = runImport(args[1:], stdout, stderr)
	case "status":
		err = runStatus(args[1:], stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "kagi version %s\n", version)
	case "help", "--help", "-h":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `kagi - keyboard shortcut search

Usage:
  kagi server [flags]              Start the HTTP server
  kagi search [flags] <query>      Keyword search over shortcut actions and tags
  kagi keys [flags] <combo>        Find shortcuts bound to a key combination
  kagi ask [flags] <query>         Natural-language search ranked by the AI provider
  kagi explain [flags] <id>        Explain what a shortcut does
  kagi import [flags] <path>...    Import catalog files or directories
  kagi status [flags]              Show storage and provider status
  kagi version                     Show version
  kagi help                        Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/kagi/config.yaml)
  --server string    Server URL; when set, queries go to a running server instead of local storage
  --output string    Output format: text or json (default: text)

Search Flags:
  --app, --platform, --category, --context, --tag   Narrow the results
  --limit int                                       Maximum results

Examples:
  kagi search --app vscode copy line
  kagi keys --platform mac "cmd+shift+t"
  kagi ask "how do I split the window side by side" --app vim
  kagi explain --platform linux vim-split
  kagi import ./catalogs
  kagi status --output json`)
}
