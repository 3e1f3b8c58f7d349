package ops

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	composecli "github.com/compose-spec/compose-go/v2/cli"
	composetypes "github.com/compose-spec/compose-go/v2/types"

	"planetd/internal/common/fsutil"
)

// The compose file publishes the container's port 80 on this host port.
const (
	hostPort = 8080
	hostURL  = "http://localhost:8080"

	serviceName = "planetd"
)

var upWaitTimeout = 60 * time.Second

func composeArgs(cfg *Config, sub ...string) []string {
	args := []string{"compose"}
	if cfg.ComposeFile != "" {
		args = append(args, "-f", cfg.ComposeFile)
	}
	return append(args, sub...)
}

func runCompose(ctx context.Context, cfg *Config, sub ...string) error {
	args := composeArgs(cfg, sub...)
	debug("[compose] docker %s (dir %s)", strings.Join(args, " "), cfg.ProjectDir)
	return RunCmd(ctx, Cmd{Path: "docker", Args: args, Dir: cfg.ProjectDir, Stream: true})
}

func composeBuild(ctx context.Context, cfg *Config) error {
	info("[build] docker compose build")
	return runCompose(ctx, cfg, "build")
}

func composeUp(ctx context.Context, cfg *Config) error {
	if busy, desc := isPortBusy(hostPort); busy {
		warn("[up] host port %d is busy: %s", hostPort, desc)
	}
	info("[up] docker compose up -d")
	if err := runCompose(ctx, cfg, "up", "-d"); err != nil {
		return err
	}
	info("[up] %s", styleOK.Render(hostURL))
	return nil
}

func waitHealthy(ctx context.Context, cfg *Config) error {
	info("[up] waiting for %s/health", hostURL)
	return waitHTTP(ctx, hostURL+"/health", http.StatusOK, upWaitTimeout)
}

func composeDown(ctx context.Context, cfg *Config) error {
	info("[down] docker compose down")
	return runCompose(ctx, cfg, "down")
}

// composeClean removes containers, the locally built image and volumes.
func composeClean(ctx context.Context, cfg *Config) error {
	info("[clean] docker compose down --rmi local --volumes --remove-orphans")
	return runCompose(ctx, cfg, "down", "--rmi", "local", "--volumes", "--remove-orphans")
}

func composeLogs(ctx context.Context, cfg *Config, follow bool) error {
	args := []string{"logs"}
	if follow {
		args = append(args, "-f")
	}
	return runCompose(ctx, cfg, args...)
}

// loadProject parses the compose file. The project name doubles as the
// com.docker.compose.project label value on every container compose starts.
func loadProject(ctx context.Context, cfg *Config) (*composetypes.Project, error) {
	path := cfg.ComposeFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.ProjectDir, path)
	}
	if !fsutil.PathExists(path) {
		return nil, fmt.Errorf("compose file not found: %s", path)
	}
	opts, err := composecli.NewProjectOptions(
		[]string{path},
		composecli.WithOsEnv,
		composecli.WithName(serviceName),
	)
	if err != nil {
		return nil, err
	}
	return opts.LoadProject(ctx)
}

// projectName resolves the compose project name, falling back to the
// project directory basename when the compose file cannot be parsed.
func projectName(ctx context.Context, cfg *Config) string {
	if p, err := loadProject(ctx, cfg); err == nil && p.Name != "" {
		return p.Name
	}
	abs, err := filepath.Abs(cfg.ProjectDir)
	if err != nil {
		return serviceName
	}
	return filepath.Base(abs)
}
