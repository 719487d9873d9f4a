package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(h PortfolioHandler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(Recoverer(h.Logger))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, h.Logger, http.StatusNotFound, errorResp{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, h.Logger, http.StatusMethodNotAllowed, errorResp{Error: "Method not allowed"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/strategies", h.Strategies)
		r.Post("/portfolio", h.GeneratePortfolio)
		r.Get("/portfolio/history/{portfolioID}", h.History)
	})

	return r
}

// Recoverer turns a panic into the generic 500 response. The panic value is only logged.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error(fmt.Sprintf("recovered from panic: %v", rvr),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.Stack("stacktrace"),
				)
				writeJSON(w, logger, http.StatusInternalServerError, errorResp{Error: internalErrorMessage})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
