package types

import (
	"fmt"
	"slices"
)

// NoPreference is the value users pick when they explicitly do not care.
const NoPreference = "선호없음"

type Texture string

const (
	TextureFluffy       Texture = "고슬밥"
	TextureSticky       Texture = "찰진밥"
	TextureNoBeans      Texture = "콩없는 밥"
	TextureNoPreference Texture = NoPreference
)

var Textures = []Texture{TextureFluffy, TextureSticky, TextureNoBeans, TextureNoPreference}

func (t Texture) Valid() bool {
	return slices.Contains(Textures, t)
}

type Stage string

const (
	StageStart     Stage = "start"
	StageSurveying Stage = "surveying"
	StageComplete  Stage = "complete"
)

type FieldInfo struct {
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// SurveyState is the preference record collected over a conversation.
// The client owns it and sends it back on every turn.
type SurveyState struct {
	HealthGoals       []string `json:"health_goals" jsonschema:"description=Health concerns the user wants the blend to address"`
	TexturePreference *Texture `json:"texture_preference" jsonschema:"enum=고슬밥,enum=찰진밥,enum=콩없는 밥,enum=선호없음,description=Preferred rice texture"`
	OwnGrains         []string `json:"own_grains" jsonschema:"description=Grains the user already has at home"`
	AvoidOrAllergy    []string `json:"avoid_or_allergy" jsonschema:"description=Grains the user avoids or is allergic to"`
}

func (s SurveyState) HasHealthGoals() bool {
	return len(s.HealthGoals) > 0
}

func (s SurveyState) HasTexture() bool {
	return s.TexturePreference != nil && *s.TexturePreference != ""
}

func (s SurveyState) HasOwnGrains() bool {
	return len(s.OwnGrains) > 0
}

// Normalize replaces nil lists with empty ones and drops an empty texture
// so the state always serializes the same way.
func (s SurveyState) Normalize() SurveyState {
	out := SurveyState{
		HealthGoals:    nonNil(s.HealthGoals),
		OwnGrains:      nonNil(s.OwnGrains),
		AvoidOrAllergy: nonNil(s.AvoidOrAllergy),
	}
	if s.HasTexture() {
		t := *s.TexturePreference
		out.TexturePreference = &t
	}
	return out
}

func (s SurveyState) Validate() error {
	if s.HasTexture() && !s.TexturePreference.Valid() {
		return fmt.Errorf("invalid texture_preference %q", *s.TexturePreference)
	}
	return nil
}

func (s SurveyState) TextureOrEmpty() string {
	if !s.HasTexture() {
		return ""
	}
	return string(*s.TexturePreference)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

type AppState struct {
	ConversationStage Stage       `json:"conversation_stage"`
	SurveyState       SurveyState `json:"survey_state"`
}

type Mode string

const (
	ModeHybrid  Mode = "hybrid"
	ModeCatalog Mode = "catalog"
	ModeSurvey  Mode = "survey"
)

type BlendItem struct {
	Grain string `json:"곡물" jsonschema:"required,description=Grain name in Korean"`
	Ratio int    `json:"비율" jsonschema:"required,description=Share of the blend in percent"`
}

type Recommendation struct {
	Mode    Mode        `json:"mode" jsonschema:"required,description=Recommendation mode"`
	Blend   []BlendItem `json:"blend" jsonschema:"required,description=Grain blend; ratios sum to 100"`
	Reasons []string    `json:"reasons" jsonschema:"required,description=At least three reasons why this blend fits the user"`
}

type ChatMessage struct {
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

type ChatRequest struct {
	Message  string   `json:"message"`
	AppState AppState `json:"appState"`
}

type ChatResponse struct {
	Message    ChatMessage `json:"message"`
	IsComplete bool        `json:"isComplete"`
	AppState   AppState    `json:"appState"`
	DebugLogs  Logs        `json:"debugLogs"`
}
