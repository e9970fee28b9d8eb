package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/grainagent/patch"
	"github.com/tbxark/grainagent/structured"
	"github.com/tbxark/grainagent/survey"
	"github.com/tbxark/grainagent/testcases"
	"github.com/tbxark/grainagent/types"
)

func texture(t types.Texture) *types.Texture { return &t }

func filledState() types.SurveyState {
	return types.SurveyState{
		HealthGoals:       []string{"혈당 관리"},
		TexturePreference: texture(types.TextureSticky),
		OwnGrains:         []string{"현미"},
		AvoidOrAllergy:    []string{"대두"},
	}
}

func TestApply_UnmentionedFieldsUnchanged(t *testing.T) {
	state := filledState()
	next, ops, err := Apply(state, &Extraction{OwnGrains: []string{"귀리", "귀리", " "}})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, survey.PointerOwnGrains, ops[0].Path)
	assert.Equal(t, []string{"귀리"}, next.OwnGrains)
	assert.Equal(t, state.HealthGoals, next.HealthGoals)
	assert.Equal(t, state.TexturePreference, next.TexturePreference)
	assert.Equal(t, state.AvoidOrAllergy, next.AvoidOrAllergy)
}

func TestApply_EmptyExtractionKeepsState(t *testing.T) {
	state := filledState()
	next, ops, err := Apply(state, &Extraction{})
	require.NoError(t, err)
	assert.Empty(t, ops)
	assert.Equal(t, state.Normalize(), next)
}

func TestApply_ResetThenSet(t *testing.T) {
	state := filledState()
	next, ops, err := Apply(state, &Extraction{
		FieldsToReset: []string{"texture_preference", "avoid_or_allergy", "unknown_field"},
		HealthGoals:   []string{"다이어트"},
	})
	require.NoError(t, err)
	assert.Len(t, ops, 3)
	assert.Nil(t, next.TexturePreference)
	assert.Equal(t, []string{}, next.AvoidOrAllergy)
	assert.Equal(t, []string{"다이어트"}, next.HealthGoals)
	assert.Equal(t, []string{"현미"}, next.OwnGrains)
}

func TestApply_ResetAndRefillSameField(t *testing.T) {
	next, _, err := Apply(filledState(), &Extraction{
		FieldsToReset:     []string{"texture_preference"},
		TexturePreference: texture(types.TextureFluffy),
	})
	require.NoError(t, err)
	require.NotNil(t, next.TexturePreference)
	assert.Equal(t, types.TextureFluffy, *next.TexturePreference)
}

func TestApply_InvalidTexture(t *testing.T) {
	_, _, err := Apply(types.SurveyState{}, &Extraction{TexturePreference: texture("돌밥")})
	assert.Error(t, err)
}

func TestOperations_ResetsRemoveBeforeReplace(t *testing.T) {
	ops := Operations(&Extraction{
		FieldsToReset:     []string{"own_grains"},
		HealthGoals:       []string{"a"},
		TexturePreference: texture(types.TextureNoBeans),
		OwnGrains:         []string{"b"},
		AvoidOrAllergy:    []string{},
	})
	require.Len(t, ops, 5)
	assert.Equal(t, patch.OperationRemove, ops[0].Op)
	assert.Equal(t, survey.PointerOwnGrains, ops[0].Path)
	for _, op := range ops[1:] {
		assert.Equal(t, patch.OperationReplace, op.Op)
	}
	for _, op := range ops {
		assert.True(t, survey.AllowedPaths[op.Path])
	}
}

func TestApply_RepeatedResetOnEmptyState(t *testing.T) {
	next, ops, err := Apply(types.SurveyState{}, &Extraction{
		FieldsToReset: []string{"health_goals", "health_goals", "texture_preference"},
		OwnGrains:     []string{"귀리"},
	})
	require.NoError(t, err)
	assert.Len(t, ops, 4)
	assert.Equal(t, []string{}, next.HealthGoals)
	assert.Nil(t, next.TexturePreference)
	assert.Equal(t, []string{"귀리"}, next.OwnGrains)
}

func TestInstructions(t *testing.T) {
	empty := Instructions(types.SurveyState{})
	assert.Len(t, empty, 7)
	assert.Contains(t, empty[2], "health_goals")

	goalsOnly := Instructions(types.SurveyState{HealthGoals: []string{"x"}})
	for _, line := range goalsOnly {
		assert.NotContains(t, line, "into health_goals")
	}
	assert.Len(t, goalsOnly, 5)

	full := Instructions(filledState())
	assert.Len(t, full, 4)
	assert.Contains(t, full[2], "modify or change")
}

func TestToolBasedExtractor_Greeting(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.RawToolReply(extractToolName, `{}`))
	ex, err := NewToolBasedExtractor(m)
	require.NoError(t, err)

	res, err := ex.Extract(context.Background(), &Request{UserInput: "안녕", State: types.SurveyState{}})
	require.NoError(t, err)
	assert.Equal(t, types.SurveyState{}.Normalize(), res.State)
	assert.Empty(t, res.Ops)
	assert.Contains(t, res.Prompt, "# Current state:")

	calls := m.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Messages, 2)
	assert.Equal(t, "안녕", calls[0].Messages[1].Content)
}

func TestToolBasedExtractor_UpdatesMentionedFields(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.RawToolReply(extractToolName,
		`{"health_goals":["혈당 관리"],"texture_preference":"찰진밥","own_grains":null}`))
	ex, err := NewToolBasedExtractor(m)
	require.NoError(t, err)

	prior := types.SurveyState{OwnGrains: []string{"보리"}}
	res, err := ex.Extract(context.Background(), &Request{UserInput: "혈당이 걱정이고 찰진밥이 좋아요", State: prior})
	require.NoError(t, err)
	assert.Equal(t, []string{"혈당 관리"}, res.State.HealthGoals)
	require.NotNil(t, res.State.TexturePreference)
	assert.Equal(t, types.TextureSticky, *res.State.TexturePreference)
	assert.Equal(t, []string{"보리"}, res.State.OwnGrains)
	assert.Equal(t, survey.DecisionRecommend, survey.Decide(res.State))
}

func TestToolBasedExtractor_SchemaViolationPropagates(t *testing.T) {
	m := testcases.NewScriptedModel(testcases.RawToolReply(extractToolName, `{"texture_preference":"딱딱한 밥"}`))
	ex, err := NewToolBasedExtractor(m)
	require.NoError(t, err)

	_, err = ex.Extract(context.Background(), &Request{UserInput: "딱딱한 밥", State: types.SurveyState{}})
	assert.ErrorIs(t, err, structured.ErrInvalidToolArgs)
}
