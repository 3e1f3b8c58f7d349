package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"planetd/internal/artefact"
	"planetd/internal/config"
	"planetd/internal/generator"
	"planetd/internal/httpapi"
	"planetd/internal/starred"
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated list, trimming spaces and dropping
// empty segments.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	// Optional .env next to the binary; real env and flags still win.
	_ = godotenv.Load()

	addr := flag.String("addr", envDefault("PLANETD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	artefactsDir := flag.String("artefacts-dir", envDefault("PLANETD_ARTEFACTS_DIR", "artefacts"), "Directory holding tokenizer.json, config.json and model.safetensors")
	staticDir := flag.String("static-dir", envDefault("PLANETD_STATIC_DIR", ""), "Directory with the web UI; empty disables static serving")
	configPath := flag.String("config", os.Getenv("PLANETD_CONFIG"), "Optional config file (.yaml/.json/.toml)")
	maxParallel := flag.Int("max-parallel", 0, "Concurrent generation limit (0=default)")
	maxQueue := flag.Int("max-queue", 0, "Admission queue depth (0=default)")
	queueTimeoutMS := flag.Int("queue-timeout-ms", 0, "Queue wait before 429, in milliseconds (0=default)")
	seed := flag.Uint64("seed", 0, "Sampling RNG seed (0=seed from clock)")
	logLevel := flag.String("log-level", envDefault("PLANETD_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	flag.Parse()

	var fileCfg config.Config
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		fileCfg = c
	}

	// Config file fills in whatever neither flags nor env set.
	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	unset := func(name, env string) bool { return !explicit[name] && os.Getenv(env) == "" }
	if unset("addr", "PLANETD_ADDR") && fileCfg.Addr != "" {
		*addr = fileCfg.Addr
	}
	if unset("artefacts-dir", "PLANETD_ARTEFACTS_DIR") && fileCfg.ArtefactsDir != "" {
		*artefactsDir = fileCfg.ArtefactsDir
	}
	if unset("static-dir", "PLANETD_STATIC_DIR") && fileCfg.StaticDir != "" {
		*staticDir = fileCfg.StaticDir
	}
	if unset("log-level", "PLANETD_LOG_LEVEL") && fileCfg.LogLevel != "" {
		*logLevel = fileCfg.LogLevel
	}
	if unset("max-parallel", "") && fileCfg.MaxParallel > 0 {
		*maxParallel = fileCfg.MaxParallel
	}
	if unset("max-queue", "") && fileCfg.MaxQueue > 0 {
		*maxQueue = fileCfg.MaxQueue
	}
	if unset("queue-timeout-ms", "") && fileCfg.QueueTimeoutMS > 0 {
		*queueTimeoutMS = fileCfg.QueueTimeoutMS
	}

	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(strings.ToLower(*logLevel)); err == nil {
		zl = zl.Level(lvl)
	}
	httpapi.SetLogger(zl)

	if fileCfg.DefaultNumWords > 0 || fileCfg.DefaultTemperature > 0 {
		httpapi.SetGenerateDefaults(fileCfg.DefaultNumWords, fileCfg.DefaultTemperature)
	}
	if v := os.Getenv("PLANETD_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			httpapi.SetMaxBodyBytes(n)
		}
	}
	if v := os.Getenv("PLANETD_GENERATE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			httpapi.SetGenerateTimeoutSeconds(n)
		}
	}
	origins := splitCSV(os.Getenv("PLANETD_CORS_ORIGINS"))
	if len(origins) == 0 {
		origins = fileCfg.CORSOrigins
	}
	if len(origins) > 0 {
		httpapi.SetCORSOptions(true, origins,
			[]string{http.MethodGet, http.MethodPost, http.MethodOptions},
			[]string{"Content-Type", "X-Log-Level"})
	}

	// Base context cancels in-flight streams on shutdown.
	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()
	httpapi.SetBaseContext(baseCtx)

	if *staticDir != "" {
		st, err := os.Stat(*staticDir)
		if err != nil || !st.IsDir() {
			log.Fatalf("static dir %s is not a directory", *staticDir)
		}
	}

	mgr := generator.NewWithConfig(generator.ManagerConfig{
		MaxParallel:  *maxParallel,
		MaxQueue:     *maxQueue,
		QueueTimeout: time.Duration(*queueTimeoutMS) * time.Millisecond,
		Seed:         *seed,
	})

	dir := *artefactsDir
	if resolved, fellBack, err := artefact.ResolveDir(dir); err == nil {
		if fellBack {
			log.Printf("artefacts dir %s not found, falling back to %s", dir, resolved)
		}
		dir = resolved
	}
	// A broken model keeps the API up; /generate answers 503 until fixed.
	if err := mgr.Load(dir); err != nil {
		log.Printf("model load failed, serving degraded: %v", err)
	}

	mux := httpapi.NewMux(mgr, starred.New(), *staticDir)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Printf("planetd listening on %s (artefacts: %s)", *addr, dir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	baseCancel()
	mgr.Close()
}
