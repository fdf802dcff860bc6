package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// commands lists the subcommands in help order.
var commands = []string{"convert", "preview", "info", "shell", "doctor", "completion", "version", "help"}

func main() {
	// Configure GOMAXPROCS with conditional logging.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if verboseRequested(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches args to a command and returns the process exit code.
// A first argument that is not a command name starts an implicit convert,
// so "img2pdf scans/" works like "img2pdf convert scans/".
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	name, rest := args[1], args[2:]
	switch name {
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "go-img2pdf %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	}
	if !isCommand(name) {
		name, rest = "convert", args[1:]
	}

	err := runCommand(ctx, name, rest, env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "img2pdf: %v\n", err)
	}
	return exitCodeFor(err)
}

// runCommand runs a command that reports failure as an error.
func runCommand(ctx context.Context, name string, args []string, env *Environment) error {
	switch name {
	case "convert":
		return runConvert(ctx, args, env)
	case "preview":
		return runPreview(ctx, args, env)
	case "info":
		return runInfo(args, env)
	case "shell":
		return runShell(ctx, args, env)
	case "doctor":
		return runDoctor(ctx, args, env)
	case "completion":
		return runCompletion(args, env)
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

// isCommand reports whether name is a subcommand. Matching is case sensitive.
func isCommand(name string) bool {
	return slices.Contains(commands, name)
}

// verboseRequested reports whether args ask for verbose output before any
// "--" terminator. It runs before flag parsing, when GOMAXPROCS is set.
func verboseRequested(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "--verbose" || a == "-v" {
			return true
		}
	}
	return false
}
