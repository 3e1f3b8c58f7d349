package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"planetd/pkg/types"
)

// Service defines the generation methods required by the HTTP API layer.
type Service interface {
	GenerateStream(ctx context.Context, numWords int, temperature float64, emit func(word string) error) error
	Status() types.StatusResponse
	Ready() bool
}

// StarStore is the starred-words collection the API exposes.
type StarStore interface {
	List() []string
	Star(word string) []string
	Unstar(word string) []string
}

func NewMux(svc Service, stars StarStore, staticDir string) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Get("/generate", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		numWords := defaultNumWords
		if v := q.Get("num_words"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeJSONError(w, http.StatusUnprocessableEntity, "num_words must be an integer")
				return
			}
			numWords = n
		}
		temperature := defaultTemperature
		if v := q.Get("temperature"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeJSONError(w, http.StatusUnprocessableEntity, "temperature must be a number")
				return
			}
			temperature = f
		}
		stream := q.Get("stream") == "true" || q.Get("stream") == "1"

		start := time.Now()
		lvl := requestLogLevel(r)
		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := requestContext(r)
		defer cancel()

		if stream {
			serveGenerateStream(w, r, svc, ctx, numWords, temperature, lvl, start)
			return
		}

		words := make([]string, 0, numWords)
		err := svc.GenerateStream(ctx, numWords, temperature, func(word string) error {
			words = append(words, word)
			return nil
		})
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := writeGenerateError(w, err)
			if lvl >= LevelInfo {
				logGenerateEnd(r, status, start, err)
			}
			return
		}
		AddWordsGenerated(len(words))
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(words); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		if lvl >= LevelInfo {
			logGenerateEnd(r, http.StatusOK, start, nil)
		}
	})

	r.Get("/starred", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stars.List()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/starred", func(w http.ResponseWriter, r *http.Request) {
		word, ok := decodeWordBody(w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stars.Star(word)); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/unstarred", func(w http.ResponseWriter, r *http.Request) {
		word, ok := decodeWordBody(w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stars.Unstar(word)); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.HealthResponse{Status: "ok"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	if staticDir != "" {
		fs := http.FileServer(http.Dir(staticDir))
		r.Handle("/static/*", http.StripPrefix("/static/", fs))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
		})
	}

	return r
}

// serveGenerateStream writes one NDJSON line per word as it is sampled.
// Errors before the first word map to a status code; once lines are on
// the wire the stream just stops.
func serveGenerateStream(w http.ResponseWriter, r *http.Request, svc Service, ctx context.Context, numWords int, temperature float64, lvl LogLevel, start time.Time) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	writer := io.Writer(w)
	if lvl >= LevelDebug {
		writer = io.MultiWriter(w, &loggingLineWriter{})
	}
	enc := json.NewEncoder(writer)
	wrote := 0
	err := svc.GenerateStream(ctx, numWords, temperature, func(word string) error {
		if err := enc.Encode(types.GeneratedWord{Word: word}); err != nil {
			return err
		}
		wrote++
		if flush != nil {
			flush()
		}
		return nil
	})
	AddWordsGenerated(wrote)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		if wrote == 0 {
			status := writeGenerateError(w, err)
			if lvl >= LevelInfo {
				logGenerateEnd(r, status, start, err)
			}
			return
		}
		// Headers already sent; nothing to map.
		if lvl >= LevelInfo {
			logGenerateEnd(r, http.StatusOK, start, err)
		}
		return
	}
	if lvl >= LevelInfo {
		logGenerateEnd(r, http.StatusOK, start, nil)
	}
}

// decodeWordBody reads the {"word": ...} payload shared by the starred
// endpoints. It writes the error response itself and reports success.
func decodeWordBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return "", false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.StarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	if strings.TrimSpace(req.Word) == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, "word is required")
		return "", false
	}
	return req.Word, true
}
