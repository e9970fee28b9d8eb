package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/grainagent/testcases"
	"github.com/tbxark/grainagent/types"
)

func TestChatFlow_Live(t *testing.T) {
	cm := testcases.InitChatModel(t)
	flow, err := NewModelChatFlow(cm, "Korean")
	require.NoError(t, err)

	ctx := context.Background()
	resp, err := flow.Invoke(ctx, &Request{UserInput: "안녕", AppState: InitialState()})
	require.NoError(t, err)
	assert.False(t, resp.IsComplete)
	assert.Equal(t, InitialState().SurveyState, resp.AppState.SurveyState)
	t.Logf("question: %s", resp.Message.Content)

	resp, err = flow.Invoke(ctx, &Request{
		UserInput: "혈당 관리가 필요하고 고슬밥을 좋아해요. 집에 현미가 있어요.",
		AppState:  resp.AppState,
	})
	require.NoError(t, err)
	require.True(t, resp.IsComplete)
	assert.Equal(t, types.ModeHybrid, resp.Message.Recommendation.Mode)
	t.Logf("recommendation: %s", FormatReply(resp.Message))
}
