package testcases

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var _ model.ToolCallingChatModel = (*ScriptedModel)(nil)

type Reply struct {
	Message *schema.Message
	Err     error
}

type Call struct {
	Messages []*schema.Message
	Options  *model.Options
}

// ScriptedModel answers Generate calls with a fixed list of replies, in
// order, and records every call it receives.
type ScriptedModel struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

func NewScriptedModel(replies ...Reply) *ScriptedModel {
	return &ScriptedModel{replies: replies}
}

func ToolReply(name string, args any) Reply {
	raw, err := sonic.MarshalString(args)
	if err != nil {
		return Reply{Err: fmt.Errorf("marshal tool args: %w", err)}
	}
	return RawToolReply(name, raw)
}

func RawToolReply(name, args string) Reply {
	return Reply{Message: schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call_" + name,
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})}
}

func TextReply(content string) Reply {
	return Reply{Message: schema.AssistantMessage(content, nil)}
}

func ErrorReply(err error) Reply {
	return Reply{Err: err}
}

func (m *ScriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{
		Messages: input,
		Options:  model.GetCommonOptions(&model.Options{}, opts...),
	})
	if len(m.replies) == 0 {
		return nil, fmt.Errorf("scripted model: no reply left for call %d", len(m.calls))
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply.Message, reply.Err
}

func (m *ScriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *ScriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func (m *ScriptedModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Remaining reports how many scripted replies were never consumed.
func (m *ScriptedModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replies)
}

// SystemPrompt returns the system message of the i-th call, or "".
func (m *ScriptedModel) SystemPrompt(i int) string {
	calls := m.Calls()
	if i >= len(calls) {
		return ""
	}
	for _, msg := range calls[i].Messages {
		if msg.Role == schema.System {
			return msg.Content
		}
	}
	return ""
}
