package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/tbxark/grainagent/agent"
	"github.com/tbxark/grainagent/cooking"
	"github.com/tbxark/grainagent/store"
	"github.com/tbxark/grainagent/survey"
	"github.com/tbxark/grainagent/types"
)

const (
	maxBodyBytes        = 1 << 20
	internalErrorDetail = "internal server error"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type normalizeRequest struct {
	AppState types.AppState `json:"appState"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())
	var req types.ChatRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.AppState.SurveyState.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AppState.ConversationStage == "" {
		req.AppState.ConversationStage = types.StageStart
	}

	resp, err := s.deps.Chat.Invoke(r.Context(), &agent.Request{
		UserInput: req.Message,
		AppState:  req.AppState,
	})
	if err != nil {
		if errors.Is(err, agent.ErrInvalidState) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Chat turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorDetail)
		return
	}
	logger.Debug("Chat turn finished", "stage", resp.AppState.ConversationStage, "complete", resp.IsComplete)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) submitSurvey(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())
	var req types.SurveyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Info("Received survey data", "texture", req.TexturePref, "avoid", req.AvoidGrains)

	result, err := s.deps.Survey.Recommend(r.Context(), &req)
	if err != nil {
		logger.Error("Survey recommendation failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorDetail)
		return
	}
	writeJSON(w, http.StatusOK, result.Recommendation)
}

func (s *Server) surveyQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, survey.Questions)
}

func (s *Server) analyzeCooking(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())
	var req types.CookingRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	menu, err := s.deps.Cooking.Analyze(r.Context(), &req)
	if err != nil {
		if errors.Is(err, cooking.ErrNoCandidates) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Cooking analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (s *Server) normalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.AppState.SurveyState.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := s.deps.Normalizer.NormalizeState(r.Context(), req.AppState)
	loggerFrom(r.Context()).Debug("Normalized grains",
		"unknown_own", result.UnknownGrains.UnknownOwn,
		"unknown_avoid", result.UnknownGrains.UnknownAvoid)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	if s.deps.Recipes == nil {
		writeError(w, http.StatusServiceUnavailable, store.ErrNotConfigured.Error())
		return
	}
	recipes, err := s.deps.Recipes.ListRecipes(r.Context())
	if err != nil {
		loggerFrom(r.Context()).Error("List recipes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "DB Error")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, internalErrorDetail)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	data, _ := sonic.Marshal(errorResponse{Detail: detail})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
