package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnaLR27/cs11-backend/internal/auth"
	"github.com/AnaLR27/cs11-backend/internal/domain"
	"github.com/AnaLR27/cs11-backend/internal/service"
	"github.com/AnaLR27/cs11-backend/pkg/health"
	"github.com/AnaLR27/cs11-backend/pkg/middleware"
)

// RouterConfig bundles the collaborators the router wires together.
type RouterConfig struct {
	AuthService      *service.AuthService
	ResetService     *service.ResetService
	WatchlistService *service.WatchlistService
	TokenManager     *auth.TokenManager
	HealthHandler    *health.Handler
	Logger           *slog.Logger
	CORS             CORSConfig

	// RefreshTokenHeader names the header read by GET /auth/refresh.
	RefreshTokenHeader string

	// RateLimitRPS/RateLimitBurst configure the coarse per-IP guard over
	// the whole surface. Zero disables it.
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all account service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("account"))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
	}

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Bridge the access-token verifier into the authorization gate.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := cfg.TokenManager.VerifyAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	authHandler := NewAuthHandler(cfg.AuthService, cfg.RefreshTokenHeader, cfg.Logger)
	resetHandler := NewResetHandler(cfg.ResetService, cfg.Logger)
	watchlistHandler := NewWatchlistHandler(cfg.WatchlistService, cfg.Logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		// Public endpoints.
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		// The refresh grant carries no body; the token is in a header.
		r.Get("/refresh", authHandler.Refresh)

		// Password change requires a verified access token.
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))
			r.Patch("/change-password/{id}", authHandler.ChangePassword)
		})
	})

	r.Route("/api/v1/forgotten-password", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Post("/send-mail", resetHandler.SendMail)
		r.Patch("/reset-password/{token}", resetHandler.ResetPassword)
	})

	// Watchlist endpoints: verified token AND employer role required.
	r.Route("/api/v1/watchlist", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireRole(domain.RoleEmployer.String()))

		r.Get("/", watchlistHandler.List)
		r.Get("/{candidateId}", watchlistHandler.Exists)
		r.Post("/{candidateId}", watchlistHandler.Add)
		r.Delete("/{candidateId}", watchlistHandler.Remove)
	})

	return r
}
