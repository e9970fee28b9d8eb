package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/grainagent/structured"
	"github.com/tbxark/grainagent/survey"
	"github.com/tbxark/grainagent/types"
)

const (
	recommendToolName        = "submit_recommendation"
	recommendToolDescription = "Submit the grain blend recommendation. Ratios are integer percentages that add up to 100."
)

const chatSystemPromptTemplate = `You are a grain sommelier.
Based on the profile below, recommend the best mixed-grain ratio (100%% in total) and call %s with it.

# Profile:
%s

# Recommendation rules:
%s

Write grain names and reasons in %s.`

// ModeFor picks hybrid when the user already owns grains.
func ModeFor(s types.SurveyState) types.Mode {
	if s.HasOwnGrains() {
		return types.ModeHybrid
	}
	return types.ModeCatalog
}

// Rules builds the numbered rule list for a chat recommendation.
func Rules(s types.SurveyState, mode types.Mode) []string {
	rules := []string{fmt.Sprintf("1. Mode: '%s'", mode)}
	if mode == types.ModeHybrid {
		rules = append(rules,
			fmt.Sprintf("2. [REQUIRED] The blend must include every grain the user owns: %s.", quoteList(s.OwnGrains)),
			"3. Fill the rest of the 100% with grains that fit the user's health goals.",
		)
	} else {
		rules = append(rules, "2. Prefer popular grains that are easy to buy in Korea.")
	}
	if hasNoPreference(s) {
		rules = append(rules, fmt.Sprintf("4. For '%s' items, recommend a popular, balanced blend (taste and health) that few people dislike.", types.NoPreference))
	}
	rules = append(rules,
		"5. Give at least 3 detailed reasons.",
		"6. The base grain must make up at least 50% of the blend.",
	)
	if avoid := meaningful(s.AvoidOrAllergy); len(avoid) > 0 {
		rules = append(rules, fmt.Sprintf("7. Never include avoided or allergenic grains: %s.", quoteList(avoid)))
	}
	return rules
}

// CompletionMessage is the chat reply that accompanies a recommendation.
func CompletionMessage(mode types.Mode) string {
	return fmt.Sprintf("분석 완료! '%s' 모드로 최적의 비율을 추천해 드립니다.", mode)
}

type ChatRecommender struct {
	Lang  string
	chain *structured.Chain[*Request, types.Recommendation]
}

func NewChatRecommender(chatModel model.ToolCallingChatModel, lang string, opts ...model.Option) (*ChatRecommender, error) {
	if lang == "" {
		lang = "Korean"
	}
	r := &ChatRecommender{Lang: lang}
	chain, err := structured.NewChain[*Request, types.Recommendation](
		chatModel,
		func(ctx context.Context, req *Request) ([]*schema.Message, error) {
			return r.buildPrompt(req.State, Rules(req.State, ModeFor(req.State))), nil
		},
		recommendToolName,
		recommendToolDescription,
		opts...,
	)
	if err != nil {
		return nil, err
	}
	r.chain = chain
	return r, nil
}

func (r *ChatRecommender) Recommend(ctx context.Context, req *Request) (*Result, error) {
	state := req.State.Normalize()
	mode := ModeFor(state)
	rules := Rules(state, mode)
	messages := r.buildPrompt(state, rules)

	rec, err := r.chain.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	var violations []string
	if rec.Mode != mode {
		violations = append(violations, fmt.Sprintf("model answered mode %q, want %q", rec.Mode, mode))
		rec.Mode = mode
	}
	opts := types.CheckOptions{MustExclude: meaningful(state.AvoidOrAllergy)}
	if mode == types.ModeHybrid {
		opts.MustInclude = state.OwnGrains
	}
	violations = append(violations, rec.Check(opts)...)
	if len(violations) > 0 {
		slog.Warn("Recommendation breaks blend contract", "mode", mode, "violations", violations)
	}
	return &Result{
		Recommendation: *rec,
		Mode:           mode,
		Rules:          rules,
		Violations:     violations,
		Message:        CompletionMessage(mode),
		Prompt:         messages[0].Content,
	}, nil
}

func (r *ChatRecommender) buildPrompt(s types.SurveyState, rules []string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(chatSystemPromptTemplate,
			recommendToolName, survey.Summary(s), strings.Join(rules, "\n"), r.Lang)),
	}
}

func hasNoPreference(s types.SurveyState) bool {
	return slices.Contains(s.HealthGoals, types.NoPreference) ||
		s.TextureOrEmpty() == types.NoPreference
}

// meaningful drops placeholder answers such as "없음".
func meaningful(grains []string) []string {
	out := make([]string, 0, len(grains))
	for _, g := range grains {
		g = strings.TrimSpace(g)
		switch g {
		case "", "없음", "해당 없음", "기입", types.NoPreference:
			continue
		}
		out = append(out, g)
	}
	return out
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("'%s'", item)
	}
	return strings.Join(quoted, ", ")
}
