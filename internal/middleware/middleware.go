package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config holds middleware configuration.
type Config struct {
	Logger *zap.Logger

	CORS *CORSConfig

	// RateLimit is the number of requests per client per RateWindow.
	RateLimit  int
	RateWindow time.Duration

	RequestTimeout time.Duration
}

// Chain creates a middleware chain with all configured middleware. Install it
// with chi's Use so route patterns are visible to the request logger.
func Chain(config *Config) func(http.Handler) http.Handler {
	window := config.RateWindow
	if window <= 0 {
		window = time.Minute
	}
	rateLimiter := RateLimit(config.RateLimit, window)

	return func(handler http.Handler) http.Handler {
		// Apply middleware in order (outer to inner)
		h := handler

		h = Timeout(config.RequestTimeout)(h)

		h = rateLimiter(h)

		if config.CORS != nil {
			h = CORS(config.CORS)(h)
		}

		h = Recovery(config.Logger)(h)

		h = Logger(config.Logger)(h)

		h = RequestID(h)

		return h
	}
}
