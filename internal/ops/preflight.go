package ops

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
	"golang.org/x/sync/errgroup"

	"planetd/internal/common/fsutil"
)

// runPreflight validates the deployment inputs before a build. All checks
// run to completion so every finding is reported, not just the first.
func runPreflight(ctx context.Context, cfg *Config) error {
	var mu sync.Mutex
	var findings []string
	add := func(fs ...string) {
		mu.Lock()
		findings = append(findings, fs...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		add(checkDockerfile(filepath.Join(cfg.ProjectDir, "Dockerfile"))...)
		return nil
	})
	g.Go(func() error {
		add(checkCompose(gctx, cfg)...)
		return nil
	})
	g.Go(func() error {
		add(checkProjectFiles(cfg.ProjectDir)...)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if len(findings) > 0 {
		for _, f := range findings {
			errl("[preflight] %s", f)
		}
		return fmt.Errorf("preflight found %d problem(s)", len(findings))
	}
	info("[preflight] all checks passed")
	return nil
}

func nodeArgs(n *parser.Node) []string {
	var out []string
	for c := n.Next; c != nil; c = c.Next {
		out = append(out, c.Value)
	}
	return out
}

func hasFlag(n *parser.Node, prefix string) bool {
	for _, f := range n.Flags {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

func mountFlag(n *parser.Node) string {
	for _, f := range n.Flags {
		if strings.HasPrefix(f, "--mount=") {
			return f
		}
	}
	return ""
}

// checkDockerfile walks the Dockerfile AST and checks the build contract:
// dependency manifest installed before source, a single bind mount of
// dist/ for the weights, port 80 exposed, a start command present.
func checkDockerfile(path string) []string {
	b, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Dockerfile: %v", err)}
	}
	res, err := parser.Parse(bytes.NewReader(b))
	if err != nil {
		return []string{fmt.Sprintf("Dockerfile: %v", err)}
	}

	stage := 0
	manifestCopyLine := 0
	modDownloadLine := 0
	firstSourceCopyLine := 0
	distMounts := 0
	expose80 := false
	hasCmd := false

	for _, n := range res.AST.Children {
		args := nodeArgs(n)
		joined := strings.Join(args, " ")
		switch strings.ToUpper(n.Value) {
		case "FROM":
			stage++
		case "COPY":
			if stage != 1 || hasFlag(n, "--from=") {
				continue
			}
			if strings.Contains(joined, "go.mod") {
				if manifestCopyLine == 0 {
					manifestCopyLine = n.StartLine
				}
			} else if firstSourceCopyLine == 0 {
				firstSourceCopyLine = n.StartLine
			}
		case "RUN":
			if stage == 1 && modDownloadLine == 0 && strings.Contains(joined, "go mod download") {
				modDownloadLine = n.StartLine
			}
			if m := mountFlag(n); strings.Contains(m, "type=bind") && strings.Contains(m, "source=dist") {
				distMounts++
			}
		case "EXPOSE":
			for _, a := range args {
				if a == "80" || strings.HasPrefix(a, "80/") {
					expose80 = true
				}
			}
		case "CMD":
			hasCmd = true
		}
	}

	var findings []string
	if manifestCopyLine == 0 {
		findings = append(findings, "Dockerfile: no COPY of go.mod/go.sum in the builder stage")
	}
	if modDownloadLine == 0 {
		findings = append(findings, "Dockerfile: no RUN go mod download in the builder stage")
	}
	if manifestCopyLine > 0 && modDownloadLine > 0 && modDownloadLine < manifestCopyLine {
		findings = append(findings, "Dockerfile: go mod download runs before go.mod is copied")
	}
	if firstSourceCopyLine > 0 && modDownloadLine > 0 && firstSourceCopyLine < modDownloadLine {
		findings = append(findings, "Dockerfile: source copied before go mod download, breaking layer caching")
	}
	if distMounts != 1 {
		findings = append(findings, fmt.Sprintf("Dockerfile: want exactly one RUN with --mount=type=bind,source=dist, found %d", distMounts))
	}
	if !expose80 {
		findings = append(findings, "Dockerfile: missing EXPOSE 80")
	}
	if !hasCmd {
		findings = append(findings, "Dockerfile: missing CMD")
	}
	return findings
}

func checkCompose(ctx context.Context, cfg *Config) []string {
	project, err := loadProject(ctx, cfg)
	if err != nil {
		return []string{fmt.Sprintf("%s: %v", cfg.ComposeFile, err)}
	}
	svc, ok := project.Services[serviceName]
	if !ok {
		return []string{fmt.Sprintf("%s: no %q service", cfg.ComposeFile, serviceName)}
	}
	var findings []string
	if svc.Build == nil {
		findings = append(findings, fmt.Sprintf("%s: service %q does not build from this context", cfg.ComposeFile, serviceName))
	}
	published := false
	for _, p := range svc.Ports {
		if p.Published == "8080" && p.Target == 80 {
			published = true
		}
	}
	if !published {
		findings = append(findings, fmt.Sprintf("%s: service %q does not publish 8080->80", cfg.ComposeFile, serviceName))
	}
	return findings
}

func checkProjectFiles(dir string) []string {
	var findings []string
	for _, f := range []string{
		filepath.Join("artefacts", "tokenizer.json"),
		filepath.Join("artefacts", "config.json"),
	} {
		if !fsutil.FileNonEmpty(filepath.Join(dir, f)) {
			findings = append(findings, f+": missing or empty")
		}
	}
	if !fsutil.DirExists(filepath.Join(dir, "web", "static")) {
		findings = append(findings, "web/static: missing frontend directory")
	}
	bundles, _ := filepath.Glob(filepath.Join(dir, "dist", "planetgen-weights-*.tar.gz"))
	switch len(bundles) {
	case 0:
		findings = append(findings, "dist/: no weights bundle; run planetctl bundle first")
	case 1:
	default:
		findings = append(findings, fmt.Sprintf("dist/: %d weights bundles present; the image build extracts whatever matches", len(bundles)))
	}
	return findings
}
