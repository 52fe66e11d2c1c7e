package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig controls which browser origins may call the inspection API.
type CORSConfig struct {
	Origins       []string
	Methods       []string
	Headers       []string
	ExposeHeaders []string
	MaxAge        time.Duration
}

// DefaultCORSConfig allows the given origins, or any origin when none of
// them is a full scheme://host origin. Host-only entries are meaningful to
// the bridge origin check but not to CORS, so they are skipped here.
func DefaultCORSConfig(origins ...string) CORSConfig {
	var allowed []string
	for _, o := range origins {
		if o == "*" {
			allowed = nil
			break
		}
		if strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
			allowed = append(allowed, strings.TrimSuffix(o, "/"))
		}
	}
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	return CORSConfig{
		Origins: allowed,
		Methods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		Headers: []string{
			"Content-Type",
			"Content-Length",
			"Accept",
			"Origin",
			RequestIDHeader,
		},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
}

// CORS wraps gin-contrib/cors. Credentials are never allowed: the API is
// unauthenticated.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  cfg.Origins,
		AllowMethods:  cfg.Methods,
		AllowHeaders:  cfg.Headers,
		ExposeHeaders: cfg.ExposeHeaders,
		MaxAge:        cfg.MaxAge,
	})
}
