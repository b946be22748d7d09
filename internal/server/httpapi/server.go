// Package httpapi is the JSON REST surface of the server.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/moodkeeper/internal/logging"
	"github.com/dmitrijs2005/moodkeeper/internal/server/ratelimit"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	mx *chi.Mux

	userService  UserService
	moodService  MoodService
	statsService StatsService
	db           Pinger

	authLimiter *ratelimit.Limiter
	apiLimiter  *ratelimit.Limiter

	jwtSecret   []byte
	corsOrigins []string
	trustProxy  bool
	logger      logging.Logger
}

type Options struct {
	UserService  UserService
	MoodService  MoodService
	StatsService StatsService
	DB           Pinger

	AuthLimiter *ratelimit.Limiter
	APILimiter  *ratelimit.Limiter

	JWTSecret   []byte
	CORSOrigins []string
	TrustProxy  bool
	Logger      logging.Logger
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		mx:           chi.NewMux(),
		userService:  opts.UserService,
		moodService:  opts.MoodService,
		statsService: opts.StatsService,
		db:           opts.DB,
		authLimiter:  opts.AuthLimiter,
		apiLimiter:   opts.APILimiter,
		jwtSecret:    opts.JWTSecret,
		corsOrigins:  origins,
		trustProxy:   opts.TrustProxy,
		logger:       logger.With("module", "httpapi"),
	}
	s.mountRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mx.ServeHTTP(w, r)
}

func (s *Server) limited(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.rateLimit(l)
}

func (s *Server) mountRoutes() {
	s.mx.Use(s.requestID, s.requestLogger, s.recoverer, s.cors, securityHeaders, bodyLimit)

	s.mx.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "Route not found")
	})
	s.mx.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "Route not found")
	})

	s.mx.Get("/", s.Banner)
	s.mx.Get("/health", s.Health)

	s.mx.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.limited(s.authLimiter))
			r.Post("/auth/register", s.Register)
			r.Post("/auth/login", s.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.limited(s.apiLimiter), s.authenticate)

			r.Get("/auth/profile", s.Profile)
			r.Put("/auth/password", s.ChangePassword)
			r.Post("/auth/change-password", s.ChangePassword)

			r.Post("/moods", s.CreateMood)
			r.Get("/moods", s.ListMoods)
			r.Post("/moods/photo-upload-url", s.PhotoUploadURL)
			r.Get("/moods/{id}", s.GetMood)
			r.Put("/moods/{id}", s.UpdateMood)
			r.Delete("/moods/{id}", s.DeleteMood)

			r.Get("/stats/moods", s.MoodStats)
			r.Get("/stats/activities", s.Activities)
			r.Get("/stats/summary", s.Summary)
		})
	})
}
