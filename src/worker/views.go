package worker

import (
	"net/http"
	"time"

	apihandlers "stockbot/src/api/handlers"
	"stockbot/src/utils"
	handlers "stockbot/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
	Metrics http.Handler
}

func NewServer(handler *handlers.Handler, metricsHandler http.Handler, logger *logrus.Logger) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
		Metrics: metricsHandler,
	}
	server.Router.Use(middleware.RequestID, middleware.Recoverer, utils.LoggerMiddleware(logger))
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", apihandlers.Healthcheck)
	if s.Metrics != nil {
		s.Router.Handle("/metrics", s.Metrics)
	}
	s.Router.Route("/api/quotes", func(r chi.Router) {
		r.Post("/warm", s.Handler.WarmQuotes)
	})
}

func NewHTTPServer(server http.Handler, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		Handler:      server,
	}
	return httpServer
}
