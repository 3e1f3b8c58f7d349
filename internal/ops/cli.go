package ops

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
)

type Config struct {
	ProjectDir  string
	ComposeFile string
	LogLvl      string
}

func defaultConfig() *Config {
	return &Config{
		ProjectDir:  envStr("PLANETCTL_PROJECT_DIR", "."),
		ComposeFile: envStr("PLANETCTL_COMPOSE_FILE", "compose.yaml"),
		LogLvl:      envStr("PLANETCTL_LOG_LEVEL", "info"),
	}
}

// MainWithArgs runs the CLI and returns the process exit code: 0 on
// success, the wrapped tool's exit code when docker compose fails, 2 on
// usage errors and 1 on anything else.
func MainWithArgs(args []string) int {
	cfg := defaultConfig()
	root := buildRootCmdWith(cfg)
	root.SetArgs(args)

	// Interrupt cancels the context, which kills any child process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		errl("%s", err.Error())
		return exitCode(err)
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/planetctl.
func Main() int { return MainWithArgs(os.Args[1:]) }

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if c := ee.ExitCode(); c > 0 {
			return c
		}
		return 1
	}
	if isUsageError(err) {
		return 2
	}
	return 1
}

// isUsageError classifies cobra's own complaints about the command line.
func isUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.Contains(msg, "required flag")
}
