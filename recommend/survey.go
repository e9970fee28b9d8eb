package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/grainagent/structured"
	"github.com/tbxark/grainagent/types"
)

const surveySystemPromptTemplate = `You are a grain sommelier. Analyze the survey answers below and recommend the best mixed-grain ratio (100%% in total). Call %s with the result.

# Survey answers:
- Target: %s, %s
- Texture: %s
- Health: disease(%s), constitution 1(%s), constitution 2(%s)
- Goal: %s
- Avoided grains: %s
- Frequency: %s

# Rules:
1. Never include avoided grains.
2. Build the blend from popular grains that suit Korean diets.
3. Explain at least 3 reasons on medical or nutritional grounds.
4. The base grain must make up at least 50%% of the blend.

Write grain names and reasons in %s.`

// SurveyResult is the outcome of a survey-form recommendation.
type SurveyResult struct {
	Recommendation types.Recommendation
	Violations     []string
	Prompt         string
}

type SurveyRecommender struct {
	Lang  string
	chain *structured.Chain[*types.SurveyRequest, types.Recommendation]
}

func NewSurveyRecommender(chatModel model.ToolCallingChatModel, lang string, opts ...model.Option) (*SurveyRecommender, error) {
	if lang == "" {
		lang = "Korean"
	}
	r := &SurveyRecommender{Lang: lang}
	chain, err := structured.NewChain[*types.SurveyRequest, types.Recommendation](
		chatModel,
		func(ctx context.Context, req *types.SurveyRequest) ([]*schema.Message, error) {
			return r.buildPrompt(req), nil
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

func (r *SurveyRecommender) Recommend(ctx context.Context, req *types.SurveyRequest) (*SurveyResult, error) {
	messages := r.buildPrompt(req)
	rec, err := r.chain.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	rec.Mode = types.ModeSurvey
	violations := rec.Check(types.CheckOptions{MustExclude: meaningful(req.AvoidGrains)})
	if len(violations) > 0 {
		slog.Warn("Survey recommendation breaks blend contract", "violations", violations)
	}
	return &SurveyResult{
		Recommendation: *rec,
		Violations:     violations,
		Prompt:         messages[0].Content,
	}, nil
}

func (r *SurveyRecommender) buildPrompt(req *types.SurveyRequest) []*schema.Message {
	avoid := "none"
	if grains := meaningful(req.AvoidGrains); len(grains) > 0 {
		avoid = quoteList(grains)
	}
	prompt := fmt.Sprintf(surveySystemPromptTemplate,
		recommendToolName,
		req.TargetGender, req.TargetAge,
		req.TexturePref,
		req.Disease, req.Constitution1, req.Constitution2,
		expectations(req),
		avoid,
		req.Frequency,
		r.Lang,
	)
	return []*schema.Message{schema.SystemMessage(prompt)}
}

// expectations joins the single and split expectation answers.
func expectations(req *types.SurveyRequest) string {
	var parts []string
	for _, e := range []string{req.Expectation, req.Expectation1, req.Expectation2} {
		if e = strings.TrimSpace(e); e != "" && e != "해당 없음" {
			parts = append(parts, e)
		}
	}
	if len(parts) == 0 {
		return "해당 없음"
	}
	return strings.Join(parts, ", ")
}
