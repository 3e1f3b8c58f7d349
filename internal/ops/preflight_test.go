package ops

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const goodDockerfile = `# syntax=docker/dockerfile:1

FROM golang:1.24.6-bookworm AS build
WORKDIR /src
COPY go.mod go.sum ./
RUN go mod download
COPY cmd/ cmd/
COPY internal/ internal/
RUN CGO_ENABLED=0 go build -trimpath -o /out/planetd ./cmd/planetd

FROM debian:12.11-slim
WORKDIR /app
COPY artefacts/ artefacts/
COPY web/static/ static/
COPY --from=build /out/planetd /usr/local/bin/planetd
RUN --mount=type=bind,source=dist,target=/dist \
    TAR_OPTIONS=--no-same-owner tar -xzf /dist/planetgen-weights-*.tar.gz -C artefacts model.safetensors
EXPOSE 80
CMD ["planetd", "--addr", ":80", "--static-dir", "static"]
`

const goodCompose = `name: planetd

services:
  planetd:
    build:
      context: .
      dockerfile: Dockerfile
    image: planetd:latest
    ports:
      - "8080:80"
    restart: unless-stopped
`

func writeProjectFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func writeGoodProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeProjectFile(t, dir, "Dockerfile", goodDockerfile)
	writeProjectFile(t, dir, "compose.yaml", goodCompose)
	writeProjectFile(t, dir, filepath.Join("artefacts", "tokenizer.json"), `{}`)
	writeProjectFile(t, dir, filepath.Join("artefacts", "config.json"), `{}`)
	writeProjectFile(t, dir, filepath.Join("web", "static", "index.html"), "<html></html>")
	writeProjectFile(t, dir, filepath.Join("dist", "planetgen-weights-dev.tar.gz"), "bundle")
	return dir
}

func findingsContain(t *testing.T, findings []string, sub string) {
	t.Helper()
	for _, f := range findings {
		if strings.Contains(f, sub) {
			return
		}
	}
	t.Fatalf("no finding mentions %q in %v", sub, findings)
}

func TestCheckDockerfile_CleanContract(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "Dockerfile", goodDockerfile)
	if fs := checkDockerfile(filepath.Join(dir, "Dockerfile")); len(fs) != 0 {
		t.Fatalf("unexpected findings: %v", fs)
	}
}

func TestCheckDockerfile_SourceBeforeDownload(t *testing.T) {
	df := `FROM golang:1.24.6-bookworm AS build
COPY internal/ internal/
COPY go.mod go.sum ./
RUN go mod download
RUN --mount=type=bind,source=dist,target=/dist tar -xzf /dist/x.tar.gz
EXPOSE 80
CMD ["planetd"]
`
	dir := t.TempDir()
	writeProjectFile(t, dir, "Dockerfile", df)
	fs := checkDockerfile(filepath.Join(dir, "Dockerfile"))
	findingsContain(t, fs, "source copied before go mod download")
}

func TestCheckDockerfile_MissingPieces(t *testing.T) {
	df := `FROM debian:12.11-slim
COPY app /app
`
	dir := t.TempDir()
	writeProjectFile(t, dir, "Dockerfile", df)
	fs := checkDockerfile(filepath.Join(dir, "Dockerfile"))
	findingsContain(t, fs, "go.mod")
	findingsContain(t, fs, "go mod download")
	findingsContain(t, fs, "source=dist")
	findingsContain(t, fs, "EXPOSE 80")
	findingsContain(t, fs, "CMD")
}

func TestCheckDockerfile_TwoDistMounts(t *testing.T) {
	df := `FROM golang:1.24.6-bookworm AS build
COPY go.mod go.sum ./
RUN go mod download
RUN --mount=type=bind,source=dist,target=/dist tar -xzf /dist/a.tar.gz
RUN --mount=type=bind,source=dist,target=/dist tar -xzf /dist/b.tar.gz
EXPOSE 80
CMD ["planetd"]
`
	dir := t.TempDir()
	writeProjectFile(t, dir, "Dockerfile", df)
	fs := checkDockerfile(filepath.Join(dir, "Dockerfile"))
	findingsContain(t, fs, "found 2")
}

func TestCheckDockerfile_Missing(t *testing.T) {
	fs := checkDockerfile(filepath.Join(t.TempDir(), "Dockerfile"))
	if len(fs) != 1 {
		t.Fatalf("want one finding for missing file, got %v", fs)
	}
}

func TestCheckCompose_CleanContract(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "compose.yaml", goodCompose)
	cfg := &Config{ProjectDir: dir, ComposeFile: "compose.yaml"}
	if fs := checkCompose(context.Background(), cfg); len(fs) != 0 {
		t.Fatalf("unexpected findings: %v", fs)
	}
}

func TestCheckCompose_WrongService(t *testing.T) {
	compose := `name: planetd

services:
  other:
    image: nginx
`
	dir := t.TempDir()
	writeProjectFile(t, dir, "compose.yaml", compose)
	cfg := &Config{ProjectDir: dir, ComposeFile: "compose.yaml"}
	fs := checkCompose(context.Background(), cfg)
	findingsContain(t, fs, "no \"planetd\" service")
}

func TestCheckCompose_WrongPort(t *testing.T) {
	compose := `name: planetd

services:
  planetd:
    build:
      context: .
    ports:
      - "9090:80"
`
	dir := t.TempDir()
	writeProjectFile(t, dir, "compose.yaml", compose)
	cfg := &Config{ProjectDir: dir, ComposeFile: "compose.yaml"}
	fs := checkCompose(context.Background(), cfg)
	findingsContain(t, fs, "8080->80")
}

func TestCheckProjectFiles(t *testing.T) {
	dir := writeGoodProject(t)
	if fs := checkProjectFiles(dir); len(fs) != 0 {
		t.Fatalf("unexpected findings: %v", fs)
	}

	empty := t.TempDir()
	fs := checkProjectFiles(empty)
	findingsContain(t, fs, "tokenizer.json")
	findingsContain(t, fs, "config.json")
	findingsContain(t, fs, "web/static")
	findingsContain(t, fs, "dist/")
}

// The repo's own deploy files must satisfy the build contract. dist/ is
// not checked here: it is gitignored and empty in a fresh checkout.
func TestCheckRepoDeployFiles(t *testing.T) {
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	root := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	if fs := checkDockerfile(filepath.Join(root, "Dockerfile")); len(fs) != 0 {
		t.Fatalf("Dockerfile findings: %v", fs)
	}
	cfg := &Config{ProjectDir: root, ComposeFile: "compose.yaml"}
	if fs := checkCompose(context.Background(), cfg); len(fs) != 0 {
		t.Fatalf("compose findings: %v", fs)
	}
}

func TestRunPreflight_PassesOnGoodProject(t *testing.T) {
	dir := writeGoodProject(t)
	cfg := &Config{ProjectDir: dir, ComposeFile: "compose.yaml"}
	if err := runPreflight(context.Background(), cfg); err != nil {
		t.Fatalf("preflight: %v", err)
	}
}

func TestRunPreflight_AggregatesFindings(t *testing.T) {
	cfg := &Config{ProjectDir: t.TempDir(), ComposeFile: "compose.yaml"}
	err := runPreflight(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "problem") {
		t.Fatalf("expected aggregated failure, got %v", err)
	}
}
