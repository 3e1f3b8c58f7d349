package types

// StarRequest is the body for POST /starred and POST /unstarred.
type StarRequest struct {
	// The word to star or unstar.
	// example: nebulora
	Word string `json:"word" example:"nebulora"`
}

// GeneratedWord is one NDJSON line emitted by GET /generate?stream=true.
type GeneratedWord struct {
	// A generated planet name.
	// example: varkellis
	Word string `json:"word" example:"varkellis"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Liveness/readiness status string.
	// example: ok
	Status string `json:"status" example:"ok"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not loaded
	Error string `json:"error" example:"model not loaded"`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall generator state (loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Loaded model description; omitted while loading or after a load failure.
	Model *ModelInfo `json:"model,omitempty"`
	// Number of requests waiting for a sampling slot.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Number of requests currently sampling.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests before backpressure triggers.
	// example: 8
	MaxQueueDepth int `json:"max_queue_depth" example:"8"`
	// Total words generated since startup.
	// example: 420
	WordsTotal uint64 `json:"words_total" example:"420"`
	// Last load or sampling error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
