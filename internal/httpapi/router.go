package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/vntrieu/avalon-engine/internal/auth"
	"github.com/vntrieu/avalon-engine/internal/httpapi/handler"
	"github.com/vntrieu/avalon-engine/internal/ratelimit"
	"github.com/vntrieu/avalon-engine/internal/websocket"

	_ "github.com/vntrieu/avalon-engine/docs" // swagger spec registration
)

// Options are the collaborators the router serves.
type Options struct {
	Games   handler.GameService
	Players handler.PlayerStore
	Signer  *auth.Signer
	// WS serves /ws/games/{id}; nil leaves the route out.
	WS *websocket.WSHandler
	// Limiter is optional: if nil, no rate limiting is applied; otherwise
	// player creation and joins are limited per IP, actions and chat per player.
	Limiter     ratelimit.Limiter
	CORSOrigins []string
	// DB backs /readyz; nil reports ready.
	DB handler.Pinger
}

// NewRouter builds the root HTTP router.
//
// @title            Avalon Engine API
// @version          1.0
// @description      Lobby, game and chat API for The Resistance: Avalon.
// @BasePath         /
// @SecurityDefinitions.apikey  BearerAuth
// @in               header
// @name             Authorization
func NewRouter(opts Options) http.Handler {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handler.Healthz)
	r.Get("/readyz", handler.Readyz(opts.DB))

	// Swagger UI and generated spec (from swag comments)
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	if opts.WS != nil {
		r.Get("/ws/games/{id}", opts.WS.HandleWebSocket)
	}

	rateLimitByIP := RateLimitMiddleware(limiter, RateLimitKeyByIP)
	rateLimitByPlayer := RateLimitMiddleware(limiter, RateLimitKeyByPlayer)
	requirePlayer := RequirePlayer(opts.Signer)

	players := handler.NewPlayerHandler(opts.Players, opts.Signer)
	gamesHandler := handler.NewGameHandler(opts.Games)

	r.Route("/api", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))

		r.With(rateLimitByIP).Post("/players", players.CreatePlayer)
		r.Get("/rules", handler.ListRules)
		r.Get("/games", gamesHandler.ListOpen)
		r.Get("/games/{id}", gamesHandler.GetGame)
		r.Get("/games/{id}/history", gamesHandler.GetHistory)

		r.Group(func(r chi.Router) {
			r.Use(requirePlayer)

			r.Get("/me", players.GetMe)
			r.Get("/me/games", gamesHandler.ListMine)
			r.Post("/games", gamesHandler.CreateGame)
			r.With(rateLimitByIP).Post("/games/{id}/join", gamesHandler.JoinGame)
			r.Get("/games/{id}/state", gamesHandler.GetState)
			r.With(rateLimitByPlayer).Post("/games/{id}/act", gamesHandler.Act)
			r.Get("/games/{id}/chat", gamesHandler.GetChat)
			r.With(rateLimitByPlayer).Post("/games/{id}/chat", gamesHandler.PostChat)
		})
	})

	return r
}
