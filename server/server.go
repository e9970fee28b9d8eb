// Package server exposes the grain agent over HTTP/JSON.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tbxark/grainagent/agent"
	"github.com/tbxark/grainagent/grainref"
	"github.com/tbxark/grainagent/recommend"
	"github.com/tbxark/grainagent/types"
)

type ChatFlow interface {
	Invoke(ctx context.Context, req *agent.Request) (*agent.Response, error)
}

type SurveyRecommender interface {
	Recommend(ctx context.Context, req *types.SurveyRequest) (*recommend.SurveyResult, error)
}

type CookingAnalyzer interface {
	Analyze(ctx context.Context, req *types.CookingRequest) (*types.SelectedMenu, error)
}

type GrainNormalizer interface {
	NormalizeState(ctx context.Context, state types.AppState) *grainref.Result
}

type RecipeLister interface {
	ListRecipes(ctx context.Context) ([]types.Recipe, error)
}

// Deps are the components behind the routes. Recipes and Registry may be
// nil.
type Deps struct {
	Chat       ChatFlow
	Survey     SurveyRecommender
	Cooking    CookingAnalyzer
	Normalizer GrainNormalizer
	Recipes    RecipeLister
	Registry   *prometheus.Registry
}

type Server struct {
	deps       Deps
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
}

func New(deps Deps) *Server {
	s := &Server{deps: deps, router: mux.NewRouter()}
	s.setupRoutes()
	s.handler = corsMiddleware(s.router)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Grain agent server starting", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("Shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("Server stopped")
		return nil
	}
}
