package server

import (
	"net/http"

	"github.com/tbxark/grainagent/metrics"
)

func (s *Server) setupRoutes() {
	s.router.Use(requestLogger)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat/", s.chat).Methods("POST")
	api.HandleFunc("/chat", s.chat).Methods("POST")
	api.HandleFunc("/survey/submit", s.submitSurvey).Methods("POST")
	api.HandleFunc("/survey/questions", s.surveyQuestions).Methods("GET")
	api.HandleFunc("/cooking/analyze", s.analyzeCooking).Methods("POST")
	api.HandleFunc("/normalize", s.normalize).Methods("POST")
	api.HandleFunc("/recipes", s.listRecipes).Methods("GET")

	s.router.HandleFunc("/healthz", s.healthz).Methods("GET")
	if s.deps.Registry != nil {
		s.router.Handle("/metrics", metrics.Handler(s.deps.Registry)).Methods("GET")
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}
