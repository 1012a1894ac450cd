package http

import (
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/rs/zerolog"
	"net/http"
)

// allowedHeaders are the request headers browser clients of the dispatch endpoint send.
var allowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

const allowedHeadersValue = "authorization, x-client-info, apikey, content-type"

// Server is a wrapper for the HTTP server.
type Server struct {
	*http.Server
	logger zerolog.Logger
}

// NewServer creates and configures a new Gin server.
func NewServer(cfg *config.Config, handlers *Handlers, logger *zerolog.Logger) *Server {
	log := logger.With().Str("layer", "http_server").Logger()
	log.Info().Msg("initializing http server")

	log.Info().Str("mode", cfg.HTTP.GinMode).Msg("setting gin mode")
	gin.SetMode(cfg.HTTP.GinMode)

	server := &http.Server{
		Addr:    cfg.HTTP.Port,
		Handler: NewRouter(handlers, log),
	}

	return &Server{server, log}
}

// NewRouter builds the gin engine with every route and wraps it in the CORS handler.
func NewRouter(handlers *Handlers, log zerolog.Logger) http.Handler {
	router := gin.New()

	log.Info().Msg("initializing middleware: recovery, cors headers")
	router.Use(gin.Recovery(), permissiveCORS())

	log.Info().Msg("registering api routes")
	handlers.RegisterRoutes(router)

	log.Info().Msg("registering health check endpoint")
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Preflights are passed through so the gin OPTIONS route answers them with an empty 200.
	return cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:     allowedHeaders,
		OptionsPassthrough: true,
	}).Handler(router)
}

// permissiveCORS fills in Allow-Origin and Allow-Headers only when the cors
// handler has not set them, which happens for requests without an Origin header.
// Preflight method negotiation, the echoed request headers and Vary stay with
// the cors handler.
func permissiveCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if h.Get("Access-Control-Allow-Origin") == "" {
			h.Set("Access-Control-Allow-Origin", "*")
		}
		if h.Get("Access-Control-Allow-Headers") == "" {
			h.Set("Access-Control-Allow-Headers", allowedHeadersValue)
		}
		c.Next()
	}
}
