package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/grainagent/types"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes the chat flow to an adk runner. Survey state lives in the
// StateReadWriter and is cleared once a recommendation is made.
type Agent struct {
	name        string
	description string
	flow        *ChatFlow
	states      StateReadWriter
}

func NewAgent(name, description string, flow *ChatFlow, states StateReadWriter) *Agent {
	return &Agent{
		name:        name,
		description: description,
		flow:        flow,
		states:      states,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		state, err := a.states.Read(ctx)
		if err != nil {
			gen.Send(&adk.AgentEvent{Err: fmt.Errorf("read state failed: %w", err)})
			return
		}
		resp, err := a.flow.Invoke(ctx, &Request{
			UserInput: input.Messages[len(input.Messages)-1].Content,
			AppState:  state,
		})
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("flow invoke failed: %w", err),
			})
			return
		}
		if resp.IsComplete {
			err = a.states.Remove(ctx)
		} else {
			err = a.states.Write(ctx, resp.AppState)
		}
		if err != nil {
			gen.Send(&adk.AgentEvent{Err: fmt.Errorf("save state failed: %w", err)})
			return
		}
		gen.Send(&adk.AgentEvent{
			AgentName: a.name,
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: FormatReply(resp.Message),
					},
					Role: schema.Assistant,
				},
				CustomizedOutput: resp,
			},
		})
	}()
	return iter
}

// FormatReply renders a bot message as plain text, with the blend as a
// markdown table when there is one.
func FormatReply(msg types.ChatMessage) string {
	rec := msg.Recommendation
	if rec == nil {
		return msg.Content
	}
	rows := make([][]string, 0, len(rec.Blend))
	for _, item := range rec.Blend {
		rows = append(rows, []string{item.Grain, strconv.Itoa(item.Ratio) + "%"})
	}
	var sb strings.Builder
	sb.WriteString(msg.Content)
	sb.WriteString("\n\n")
	sb.WriteString(types.MarkdownTable([]string{"곡물", "비율"}, rows))
	for i, reason := range rec.Reasons {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, reason)
	}
	return sb.String()
}
