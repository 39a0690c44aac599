package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"

	"github.com/mikeczech/codenames/internal/services/codenames/domain/game"
	"github.com/mikeczech/codenames/internal/services/codenames/manager"
	"github.com/mikeczech/codenames/internal/services/codenames/storage"
)

const (
	// SessionCookie names the cookie holding the caller's session id.
	SessionCookie = "session_id"
	// SessionHeader is read when the session cookie is absent.
	SessionHeader = "X-Session-ID"

	handlerTimeout = 10 * time.Second
)

// Service is the game surface the HTTP API exposes.
type Service interface {
	CreateGame(ctx context.Context, name, sessionID string) (manager.Game, error)
	JoinGame(ctx context.Context, gameID, sessionID, color, role string) (game.State, error)
	LeaveGame(ctx context.Context, gameID, sessionID string) (game.State, error)
	StartGame(ctx context.Context, gameID, sessionID string) (game.State, error)
	GiveHint(ctx context.Context, gameID, sessionID, word string, num int) (game.State, error)
	Guess(ctx context.Context, gameID, sessionID string, wordID int64) (game.State, error)
	EndTurn(ctx context.Context, gameID, sessionID string) (game.State, error)
	GetGame(ctx context.Context, gameID string) (storage.GameRecord, error)
	ListWords(ctx context.Context, gameID string) ([]storage.WordRecord, error)
	ListHints(ctx context.Context, gameID string) ([]storage.HintRecord, error)
	ListPlayers(ctx context.Context, gameID string) ([]storage.PlayerRecord, error)
	ListConditions(ctx context.Context, gameID string) ([]storage.ConditionRecord, error)
}

// Options configures the HTTP API.
type Options struct {
	// PublicURL is the base URL encoded in invite QR codes.
	PublicURL string
	// RateLimit is the sustained mutation rate per session; zero disables limiting.
	RateLimit rate.Limit
	// RateBurst is the mutation burst per session.
	RateBurst int
	Logger    zerolog.Logger
	// Ready reports whether the backing store is reachable.
	Ready func(context.Context) error
}

// Server routes HTTP requests to the game service.
type Server struct {
	svc     Service
	opts    Options
	limiter *sessionLimiter
	router  chi.Router
}

// New builds the router and middleware stack.
func New(svc Service, opts Options) *Server {
	s := &Server{svc: svc, opts: opts}
	if opts.RateLimit > 0 {
		s.limiter = newSessionLimiter(opts.RateLimit, opts.RateBurst)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(handlerTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/games", func(r chi.Router) {
		r.With(s.optionalSession, s.rateLimit).Post("/", s.handleCreateGame)
		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Get("/words", s.handleListWords)
			r.Get("/hints", s.handleListHints)
			r.Get("/players", s.handleListPlayers)
			r.Get("/conditions", s.handleListConditions)
			r.Get("/invite.png", s.handleInvite)

			r.Group(func(r chi.Router) {
				r.Use(s.requireSession, s.rateLimit)
				r.Put("/join", s.handleJoin)
				r.Put("/leave", s.handleLeave)
				r.Put("/start", s.handleStart)
				r.Put("/give_hint", s.handleGiveHint)
				r.Put("/guess", s.handleGuess)
				r.Put("/end_turn", s.handleEndTurn)
			})
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NOT_FOUND", Detail: "no route for " + r.URL.Path})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		if err := s.opts.Ready(r.Context()); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
