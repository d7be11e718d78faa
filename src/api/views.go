package api

import (
	"net/http"
	"time"

	handlers "stockbot/src/api/handlers"
	"stockbot/src/config"
	"stockbot/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router    *chi.Mux
	Handler   *handlers.Handler
	Metrics   http.Handler
	TokenAuth *jwtauth.JWTAuth
}

func NewServer(handler *handlers.Handler, metricsHandler http.Handler, logger *logrus.Logger, service config.ServiceConfig) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
		Metrics: metricsHandler,
	}
	if service.JWTSecret != "" {
		server.TokenAuth = jwtauth.New("HS256", []byte(service.JWTSecret), nil)
	}

	server.Router.Use(middleware.RequestID, middleware.Recoverer, utils.LoggerMiddleware(logger))
	if len(service.AllowedOrigins) > 0 {
		server.Router.Use(cors.New(cors.Options{
			AllowedOrigins: service.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler)
	}
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)
	if s.Metrics != nil {
		s.Router.Handle("/metrics", s.Metrics)
	}

	s.Router.Route("/api", func(r chi.Router) {
		if s.TokenAuth != nil {
			r.Use(jwtauth.Verifier(s.TokenAuth), jwtauth.Authenticator)
		}

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/buy", s.Handler.Buy)
			r.Post("/sell", s.Handler.Sell)
			r.Get("/portfolio", s.Handler.GetPortfolio)
			r.Get("/trades", s.Handler.GetTrades)
		})

		r.Get("/quotes/{symbol}", s.Handler.GetQuote)
	})
}

func NewHTTPServer(server http.Handler, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
