package grainref

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/grainagent/cache"
	"github.com/tbxark/grainagent/types"
)

type countingSource struct {
	aliases map[string]string
	err     error
	calls   int
}

func (s *countingSource) AliasMap(ctx context.Context) (map[string]string, error) {
	s.calls++
	return s.aliases, s.err
}

func newSource() *countingSource {
	return &countingSource{aliases: map[string]string{
		"현미":         "현미",
		"brown rice": "현미",
		"귀리":         "귀리",
		"oat":        "귀리",
		"대두":         "대두",
	}}
}

func TestNormalizeList(t *testing.T) {
	n := NewNormalizer(newSource(), cache.NewMemoryCache[map[string]string](time.Minute))
	values, unknown := n.NormalizeList(context.Background(), []string{" Brown  Rice ", "현미", "OAT", "퀴노아", ""})
	assert.Equal(t, []string{"현미", "귀리"}, values)
	assert.Equal(t, []string{"퀴노아"}, unknown)
}

func TestNormalizeList_NoSource(t *testing.T) {
	n := NewNormalizer(nil, cache.NewMemoryCache[map[string]string](time.Minute))
	values, unknown := n.NormalizeList(context.Background(), []string{" 현미 ", "현미", "oat"})
	assert.Equal(t, []string{"현미", "oat"}, values)
	assert.Empty(t, unknown)
}

func TestNormalizeList_SourceErrorFallsBack(t *testing.T) {
	src := &countingSource{err: errors.New("db locked")}
	n := NewNormalizer(src, cache.NewMemoryCache[map[string]string](time.Minute))
	values, unknown := n.NormalizeList(context.Background(), []string{"oat"})
	assert.Equal(t, []string{"oat"}, values)
	assert.Empty(t, unknown)
}

func TestAliasesAreCached(t *testing.T) {
	src := newSource()
	n := NewNormalizer(src, cache.NewMemoryCache[map[string]string](time.Minute))
	ctx := context.Background()
	n.NormalizeList(ctx, []string{"oat"})
	n.NormalizeList(ctx, []string{"현미"})
	assert.Equal(t, 1, src.calls)
}

func TestNormalizeState(t *testing.T) {
	n := NewNormalizer(newSource(), cache.NewMemoryCache[map[string]string](0))
	sticky := types.TextureSticky
	res := n.NormalizeState(context.Background(), types.AppState{
		ConversationStage: types.StageSurveying,
		SurveyState: types.SurveyState{
			HealthGoals:       []string{"혈당 관리"},
			TexturePreference: &sticky,
			OwnGrains:         []string{"brown rice", "렌틸콩"},
			AvoidOrAllergy:    []string{"대두"},
		},
	})
	require.NotNil(t, res)
	assert.Equal(t, types.StageSurveying, res.NormalizedState.ConversationStage)
	assert.Equal(t, []string{"현미"}, res.NormalizedState.SurveyState.OwnGrains)
	assert.Equal(t, []string{"대두"}, res.NormalizedState.SurveyState.AvoidOrAllergy)
	assert.Equal(t, []string{"혈당 관리"}, res.NormalizedState.SurveyState.HealthGoals)
	assert.Equal(t, []string{"렌틸콩"}, res.UnknownGrains.UnknownOwn)
	assert.Empty(t, res.UnknownGrains.UnknownAvoid)
}
