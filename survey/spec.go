package survey

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
	"github.com/tbxark/grainagent/patch"
	"github.com/tbxark/grainagent/types"
)

const (
	PointerHealthGoals       = "/health_goals"
	PointerTexturePreference = "/texture_preference"
	PointerOwnGrains         = "/own_grains"
	PointerAvoidOrAllergy    = "/avoid_or_allergy"
)

const (
	LabelHealthGoals = "건강 고민"
	LabelTexture     = "식감"
)

// AllowedPaths lists every pointer the extractor may write.
var AllowedPaths = patch.NewAllowedPaths(
	PointerHealthGoals,
	PointerTexturePreference,
	PointerOwnGrains,
	PointerAvoidOrAllergy,
)

// Decision is the router outcome for one turn.
type Decision string

const (
	DecisionRecommend   Decision = "recommend"
	DecisionAskQuestion Decision = "ask_question"
)

// Decide recommends once health goals and texture are both known.
func Decide(s types.SurveyState) Decision {
	if s.HasHealthGoals() && s.HasTexture() {
		return DecisionRecommend
	}
	return DecisionAskQuestion
}

// MissingFields lists the required fields that are still empty, health
// goals first.
func MissingFields(s types.SurveyState) []types.FieldInfo {
	var missing []types.FieldInfo
	if !s.HasHealthGoals() {
		missing = append(missing, types.FieldInfo{
			JSONPointer: PointerHealthGoals,
			DisplayName: LabelHealthGoals,
			Description: "건강 목표 또는 고민 (예: 혈당 관리, 다이어트)",
			Required:    true,
		})
	}
	if !s.HasTexture() {
		missing = append(missing, types.FieldInfo{
			JSONPointer: PointerTexturePreference,
			DisplayName: LabelTexture,
			Description: "선호 식감: " + strings.Join(TextureOptions(), ", "),
			Required:    true,
		})
	}
	return missing
}

func MissingLabels(s types.SurveyState) []string {
	fields := MissingFields(s)
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, f.DisplayName)
	}
	return labels
}

func TextureOptions() []string {
	out := make([]string, 0, len(types.Textures))
	for _, t := range types.Textures {
		out = append(out, string(t))
	}
	return out
}

// Summary renders the state as compact JSON for prompts.
func Summary(s types.SurveyState) string {
	data, err := sonic.MarshalString(s.Normalize())
	if err != nil {
		return fmt.Sprintf("%+v", s)
	}
	return data
}

func JsonSchema() (string, error) {
	schema := jsonschema.Reflect(&types.SurveyState{})
	schema.Title = "잡곡 설문 상태"
	schema.Description = "건강 고민, 식감 선호, 보유 잡곡, 기피 곡물을 담는 설문 상태"
	schemaBytes, err := sonic.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(schemaBytes), nil
}
