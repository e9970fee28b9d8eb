package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/grainagent/structured"
	"github.com/tbxark/grainagent/survey"
	"github.com/tbxark/grainagent/types"
)

const (
	extractToolName        = "update_survey"
	extractToolDescription = "Report survey fields the user explicitly mentioned in the latest message. Leave out every field that was not mentioned."
)

type ToolBasedExtractor struct {
	chain       *structured.Chain[*Request, Extraction]
	stateSchema string
}

func NewToolBasedExtractor(chatModel model.ToolCallingChatModel, opts ...model.Option) (*ToolBasedExtractor, error) {
	stateSchema, err := survey.JsonSchema()
	if err != nil {
		return nil, err
	}
	e := &ToolBasedExtractor{stateSchema: stateSchema}
	chain, err := structured.NewChain[*Request, Extraction](
		chatModel,
		func(ctx context.Context, req *Request) ([]*schema.Message, error) {
			return e.buildPrompt(req), nil
		},
		extractToolName,
		extractToolDescription,
		opts...,
	)
	if err != nil {
		return nil, err
	}
	e.chain = chain
	return e, nil
}

func (e *ToolBasedExtractor) Extract(ctx context.Context, req *Request) (*Result, error) {
	messages := e.buildPrompt(req)
	extraction, err := e.chain.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	next, ops, err := Apply(req.State, extraction)
	if err != nil {
		return nil, err
	}
	slog.Debug("Applied extraction", "ops", len(ops), "state", next)
	return &Result{
		State:        next,
		Extraction:   *extraction,
		Instructions: Instructions(req.State),
		Ops:          ops,
		Prompt:       messages[0].Content,
	}, nil
}

// Instructions returns the extraction rules for the current state. Guidance
// for a field is dropped once that field is filled.
func Instructions(s types.SurveyState) []string {
	instructions := []string{
		"- Extract only what the user said directly. Never guess.",
		"- A greeting such as '안녕' carries no information: leave every field out.",
	}
	if !s.HasHealthGoals() {
		instructions = append(instructions,
			"- Put the user's health concerns into health_goals.",
			fmt.Sprintf("- Only when the user explicitly says health does not matter, set health_goals to ['%s'].", types.NoPreference),
		)
	}
	if !s.HasTexture() {
		instructions = append(instructions,
			"- Put the user's texture preference into texture_preference.",
			fmt.Sprintf("- Only when the user explicitly says texture does not matter, set texture_preference to '%s'.", types.NoPreference),
		)
	}
	if s.HasHealthGoals() && s.HasTexture() {
		instructions = append(instructions, "- All required information is present. Change a value only when the user asks to modify or change it.")
	}
	instructions = append(instructions, "- When the user asks to clear a field, list the field name in fields_to_reset.")
	return instructions
}

func (e *ToolBasedExtractor) buildPrompt(req *Request) []*schema.Message {
	sections := []string{
		fmt.Sprintf("You manage a grain survey. Call %s with the fields found in the user's latest message.", extractToolName),
		fmt.Sprintf("# Current state:\n%s", survey.Summary(req.State)),
		fmt.Sprintf("# State schema:\n%s", e.stateSchema),
		fmt.Sprintf("# Rules:\n%s", strings.Join(Instructions(req.State), "\n")),
		"Never touch a field the user did not mention: leave it out of the call.",
	}
	return []*schema.Message{
		schema.SystemMessage(strings.Join(sections, "\n\n")),
		schema.UserMessage(req.UserInput),
	}
}
