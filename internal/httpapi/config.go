package httpapi

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
// Default remains 1 MiB for backward compatibility.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// generateTimeout controls the maximum duration a /generate request may run
// before timing out. Zero means no additional timeout beyond server/connection
// timeouts.
var generateTimeout = int64(0) // seconds

// SetGenerateTimeoutSeconds sets the generate timeout in seconds (0 disables).
func SetGenerateTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	generateTimeout = sec
}

// Defaults applied when /generate query parameters are omitted.
var (
	defaultNumWords    = 10
	defaultTemperature = 1.0
)

// SetGenerateDefaults configures the values used when num_words or
// temperature are absent from the query string.
func SetGenerateDefaults(numWords int, temperature float64) {
	if numWords > 0 {
		defaultNumWords = numWords
	}
	if temperature >= 0 {
		defaultTemperature = temperature
	}
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
