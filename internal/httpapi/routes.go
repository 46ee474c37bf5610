package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/wchess/api/internal/relay"
	"github.com/wchess/api/internal/ws"
)

func SetupRoutes(rl *relay.Relay, allowedOrigins []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/", Root)
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(rl, allowedOrigins, log))

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
