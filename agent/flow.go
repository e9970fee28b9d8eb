package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/tbxark/grainagent/dialogue"
	"github.com/tbxark/grainagent/extract"
	"github.com/tbxark/grainagent/metrics"
	"github.com/tbxark/grainagent/recommend"
	"github.com/tbxark/grainagent/survey"
	"github.com/tbxark/grainagent/types"
)

// ChatFlow runs one chat turn: extract, route, then ask or recommend.
type ChatFlow struct {
	extractor   extract.Extractor
	questions   dialogue.Generator
	recommender recommend.Recommender
}

func NewChatFlow(
	extractor extract.Extractor,
	questions dialogue.Generator,
	recommender recommend.Recommender,
) *ChatFlow {
	return &ChatFlow{
		extractor:   extractor,
		questions:   questions,
		recommender: recommender,
	}
}

// NewModelChatFlow wires every step to the same chat model.
func NewModelChatFlow(chatModel model.ToolCallingChatModel, lang string, opts ...model.Option) (*ChatFlow, error) {
	extractor, err := extract.NewToolBasedExtractor(chatModel, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool-based extractor: %w", err)
	}
	recommender, err := recommend.NewChatRecommender(chatModel, lang, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create recommender: %w", err)
	}
	questions := dialogue.NewModelQuestionGenerator(chatModel,
		dialogue.WithLang(lang),
		dialogue.WithModelOptions(opts...),
	)
	return NewChatFlow(extractor, questions, recommender), nil
}

func (f *ChatFlow) Invoke(ctx context.Context, req *Request) (*Response, error) {
	ctx = callbacks.EnsureRunInfo(ctx, "GrainSurvey", "Flow")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"input":        req.UserInput,
		"survey_state": req.AppState.SurveyState,
	})

	defer func() {
		if r := recover(); r != nil {
			callbacks.OnError(ctx, fmt.Errorf("panic in ChatFlow.Invoke: %v", r))
			panic(r)
		}
	}()

	response, err := f.runInternal(ctx, req)
	if err != nil {
		callbacks.OnError(ctx, err)
		return nil, err
	}

	callbacks.OnEnd(ctx, map[string]any{
		"stage":    response.AppState.ConversationStage,
		"complete": response.IsComplete,
	})
	return response, nil
}

func (f *ChatFlow) runInternal(ctx context.Context, req *Request) (*Response, error) {
	if err := req.AppState.SurveyState.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	logs := types.Logs{}

	// extract
	slog.Debug("Extracting survey fields", "input", req.UserInput)
	extracted, err := f.extractor.Extract(ctx, &extract.Request{
		UserInput: req.UserInput,
		State:     req.AppState.SurveyState,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract survey fields: %w", err)
	}
	state := extracted.State
	logs.Add(StepExtractor, map[string]any{
		"동적지침": extracted.Instructions,
		"추출":   extracted.Extraction,
		"ops":  extracted.Ops,
	}, extracted.Prompt)

	// route
	decision := survey.Decide(state)
	logs.Add(StepRouter, map[string]any{
		"조건": map[string]bool{"goals": state.HasHealthGoals(), "texture": state.HasTexture()},
		"결정": decision,
	}, "")
	metrics.RecordDecision(string(decision))
	slog.Debug("Routed turn", "decision", decision, "state", state)

	if decision == survey.DecisionAskQuestion {
		return f.ask(ctx, req.UserInput, state, logs)
	}
	return f.recommend(ctx, state, logs)
}

func (f *ChatFlow) ask(ctx context.Context, input string, state types.SurveyState, logs types.Logs) (*Response, error) {
	question, err := f.questions.GenerateQuestion(ctx, &dialogue.Request{
		State:         state,
		MissingFields: survey.MissingFields(state),
		LastUserInput: input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate question: %w", err)
	}
	logs.Add(StepGenerator, question.Message, question.Prompt)
	slog.Debug("Generated question", "question", question.Message, "greeting", question.Greeting)

	return &Response{
		Message:    types.ChatMessage{Role: RoleBot, Content: question.Message},
		IsComplete: false,
		AppState:   types.AppState{ConversationStage: types.StageSurveying, SurveyState: state},
		DebugLogs:  logs,
	}, nil
}

func (f *ChatFlow) recommend(ctx context.Context, state types.SurveyState, logs types.Logs) (*Response, error) {
	result, err := f.recommender.Recommend(ctx, &recommend.Request{State: state})
	if err != nil {
		return nil, fmt.Errorf("failed to recommend blend: %w", err)
	}
	content := map[string]any{
		"규칙": result.Rules,
		"결과": result.Recommendation,
	}
	if len(result.Violations) > 0 {
		content["위반"] = result.Violations
	}
	logs.Add(StepRecommender, content, result.Prompt)
	metrics.RecordRecommendation(string(result.Mode), len(result.Violations))

	rec := result.Recommendation
	return &Response{
		Message:    types.ChatMessage{Role: RoleBot, Content: result.Message, Recommendation: &rec},
		IsComplete: true,
		AppState:   types.AppState{ConversationStage: types.StageComplete, SurveyState: state},
		DebugLogs:  logs,
	}, nil
}
