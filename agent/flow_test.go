package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/grainagent/structured"
	"github.com/tbxark/grainagent/survey"
	"github.com/tbxark/grainagent/testcases"
	"github.com/tbxark/grainagent/types"
)

func texture(t types.Texture) *types.Texture { return &t }

func recommendationReply(mode types.Mode) testcases.Reply {
	return testcases.ToolReply("submit_recommendation", map[string]any{
		"mode": string(mode),
		"blend": []map[string]any{
			{"곡물": "백미", "비율": 50},
			{"곡물": "현미", "비율": 30},
			{"곡물": "귀리", "비율": 20},
		},
		"reasons": []string{"식이섬유가 풍부합니다", "혈당 관리에 도움이 됩니다", "고슬한 식감을 냅니다"},
	})
}

func newFlow(t *testing.T, replies ...testcases.Reply) (*ChatFlow, *testcases.ScriptedModel) {
	t.Helper()
	m := testcases.NewScriptedModel(replies...)
	flow, err := NewModelChatFlow(m, "Korean")
	require.NoError(t, err)
	return flow, m
}

func TestChatFlow_GreetingLeavesStateUntouched(t *testing.T) {
	flow, m := newFlow(t,
		testcases.RawToolReply("update_survey", `{}`),
		testcases.TextReply("안녕하세요! 건강 고민과 선호하시는 밥 식감을 알려주시겠어요?"),
	)
	empty := types.SurveyState{}.Normalize()

	resp, err := flow.Invoke(context.Background(), &Request{
		UserInput: "안녕",
		AppState:  types.AppState{ConversationStage: types.StageStart, SurveyState: empty},
	})
	require.NoError(t, err)
	assert.False(t, resp.IsComplete)
	assert.Equal(t, RoleBot, resp.Message.Role)
	assert.Equal(t, types.StageSurveying, resp.AppState.ConversationStage)
	assert.Equal(t, empty, resp.AppState.SurveyState)

	require.Len(t, resp.DebugLogs, 3)
	router := resp.DebugLogs[1]
	assert.Equal(t, StepRouter, router.Step)
	content, ok := router.Content.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, survey.DecisionAskQuestion, content["결정"])
	assert.Equal(t, 0, m.Remaining())
}

func TestChatFlow_Recommends(t *testing.T) {
	flow, m := newFlow(t,
		testcases.RawToolReply("update_survey", `{"health_goals":["혈당 관리"],"texture_preference":"고슬밥"}`),
		recommendationReply(types.ModeCatalog),
	)

	resp, err := flow.Invoke(context.Background(), &Request{
		UserInput: "혈당 관리가 필요하고 고슬밥이 좋아요",
		AppState:  types.AppState{ConversationStage: types.StageSurveying},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsComplete)
	assert.Equal(t, types.StageComplete, resp.AppState.ConversationStage)
	require.NotNil(t, resp.Message.Recommendation)
	assert.Equal(t, types.ModeCatalog, resp.Message.Recommendation.Mode)
	assert.Equal(t, "분석 완료! 'catalog' 모드로 최적의 비율을 추천해 드립니다.", resp.Message.Content)
	assert.Empty(t, resp.Message.Recommendation.Check(types.CheckOptions{}))

	steps := make([]string, 0, len(resp.DebugLogs))
	for _, l := range resp.DebugLogs {
		steps = append(steps, l.Step)
	}
	assert.Equal(t, []string{StepExtractor, StepRouter, StepRecommender}, steps)
	assert.Equal(t, 0, m.Remaining())
}

func TestChatFlow_UnmentionedFieldsSurvive(t *testing.T) {
	flow, _ := newFlow(t,
		testcases.RawToolReply("update_survey", `{"own_grains":["흑미"]}`),
		testcases.TextReply("어떤 식감을 좋아하세요?"),
	)
	prior := types.SurveyState{
		HealthGoals:    []string{"다이어트"},
		OwnGrains:      []string{"귀리"},
		AvoidOrAllergy: []string{"대두"},
	}

	resp, err := flow.Invoke(context.Background(), &Request{
		UserInput: "집에 흑미가 있어요",
		AppState:  types.AppState{ConversationStage: types.StageSurveying, SurveyState: prior},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"다이어트"}, resp.AppState.SurveyState.HealthGoals)
	assert.Equal(t, []string{"흑미"}, resp.AppState.SurveyState.OwnGrains)
	assert.Equal(t, []string{"대두"}, resp.AppState.SurveyState.AvoidOrAllergy)
	assert.Nil(t, resp.AppState.SurveyState.TexturePreference)
}

func TestChatFlow_RecommendationViolationsAreLogged(t *testing.T) {
	flow, _ := newFlow(t,
		testcases.RawToolReply("update_survey", `{}`),
		recommendationReply(types.ModeHybrid),
	)
	resp, err := flow.Invoke(context.Background(), &Request{
		UserInput: "추천해줘",
		AppState: types.AppState{SurveyState: types.SurveyState{
			HealthGoals:       []string{"혈당 관리"},
			TexturePreference: texture(types.TextureFluffy),
			OwnGrains:         []string{"기장"},
		}},
	})
	require.NoError(t, err)
	last := resp.DebugLogs[len(resp.DebugLogs)-1]
	content := last.Content.(map[string]any)
	assert.Contains(t, content["위반"], `owned grain "기장" missing from blend`)
}

func TestChatFlow_Errors(t *testing.T) {
	flow, _ := newFlow(t)
	_, err := flow.Invoke(context.Background(), &Request{
		UserInput: "hi",
		AppState:  types.AppState{SurveyState: types.SurveyState{TexturePreference: texture("돌밥")}},
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	flow, _ = newFlow(t, testcases.TextReply("no tool call"))
	_, err = flow.Invoke(context.Background(), &Request{UserInput: "hi"})
	assert.ErrorIs(t, err, structured.ErrNoToolCall)

	boom := errors.New("question model down")
	flow, _ = newFlow(t, testcases.RawToolReply("update_survey", `{}`), testcases.ErrorReply(boom))
	_, err = flow.Invoke(context.Background(), &Request{UserInput: "hi"})
	assert.ErrorIs(t, err, boom)
}
