package structured

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrNoToolCall      = errors.New("no tool call found in model response")
	ErrInvalidToolArgs = errors.New("tool arguments do not match schema")
)

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

// Chain forces the model to answer through a single tool and decodes the
// tool arguments into TOutput.
type Chain[TInput, TOutput any] struct {
	PromptBuilder PromptBuilder[TInput]
	ChatModel     model.ToolCallingChatModel
	ToolInfo      *schema.ToolInfo
	Options       []model.Option

	validator *gojsonschema.Schema
}

func NewChain[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
	opts ...model.Option,
) (*Chain[TInput, TOutput], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return NewChainWithToolInfo[TInput, TOutput](chatModel, promptBuilder, toolInfo, opts...)
}

// NewChainWithToolInfo builds a chain around a hand-made tool definition,
// e.g. one whose enum values are only known at request time.
func NewChainWithToolInfo[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	promptBuilder PromptBuilder[TInput],
	toolInfo *schema.ToolInfo,
	opts ...model.Option,
) (*Chain[TInput, TOutput], error) {
	if toolInfo == nil {
		return nil, errors.New("tool info is required")
	}
	validator, err := newArgumentValidator(toolInfo)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", toolInfo.Name, err)
	}
	return &Chain[TInput, TOutput]{
		PromptBuilder: promptBuilder,
		ChatModel:     chatModel,
		ToolInfo:      toolInfo,
		Options:       opts,
		validator:     validator,
	}, nil
}

func (s *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	messages, err := s.PromptBuilder(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}
	return s.Generate(ctx, messages)
}

// Generate runs an already built prompt through the forced tool call.
func (s *Chain[TInput, TOutput]) Generate(ctx context.Context, messages []*schema.Message) (*TOutput, error) {
	opts := append([]model.Option{
		model.WithTools([]*schema.ToolInfo{s.ToolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, s.ToolInfo.Name),
	}, s.Options...)

	response, err := s.ChatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("call model failed: %w", err)
	}
	if response == nil || len(response.ToolCalls) == 0 {
		content := ""
		if response != nil {
			content = response.Content
		}
		return nil, fmt.Errorf("%w: %s", ErrNoToolCall, content)
	}
	args := response.ToolCalls[0].Function.Arguments
	slog.Debug("Tool call received", "tool", s.ToolInfo.Name, "arguments", args)

	return s.decode(args)
}

func (s *Chain[TInput, TOutput]) decode(args string) (*TOutput, error) {
	var doc map[string]any
	if err := sonic.UnmarshalString(args, &doc); err != nil {
		return nil, fmt.Errorf("parse ToolCall arguments failed: %w", err)
	}
	// Models often send null for optional fields; treat it as absent.
	doc = dropNulls(doc)
	cleaned, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode ToolCall arguments failed: %w", err)
	}

	if s.validator != nil {
		result, err := s.validator.Validate(gojsonschema.NewBytesLoader(cleaned))
		if err != nil {
			return nil, fmt.Errorf("validate ToolCall arguments failed: %w", err)
		}
		if !result.Valid() {
			msgs := make([]string, 0, len(result.Errors()))
			for _, e := range result.Errors() {
				msgs = append(msgs, e.String())
			}
			return nil, fmt.Errorf("%w: %s", ErrInvalidToolArgs, strings.Join(msgs, "; "))
		}
	}

	var result TOutput
	if err := sonic.Unmarshal(cleaned, &result); err != nil {
		return nil, fmt.Errorf("parse ToolCall arguments failed: %w", err)
	}
	return &result, nil
}

func newArgumentValidator(info *schema.ToolInfo) (*gojsonschema.Schema, error) {
	if info.ParamsOneOf == nil {
		return nil, nil
	}
	js, err := info.ParamsOneOf.ToJSONSchema()
	if err != nil {
		return nil, err
	}
	if js == nil {
		return nil, nil
	}
	raw, err := sonic.Marshal(js)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	// gojsonschema only knows up to draft-07; the reflected schema uses
	// keywords that are compatible, so drop the draft marker.
	delete(doc, "$schema")
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
}

func dropNulls(doc map[string]any) map[string]any {
	for k, v := range doc {
		switch val := v.(type) {
		case nil:
			delete(doc, k)
		case map[string]any:
			doc[k] = dropNulls(val)
		case []any:
			for i, item := range val {
				if m, ok := item.(map[string]any); ok {
					val[i] = dropNulls(m)
				}
			}
		}
	}
	return doc
}
