package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/caec/caec-backend/pkg/config"
)

// CORS applies the configured origin policy to the JSON API. Credentials are
// allowed so the session cookie travels with cross-origin requests.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
