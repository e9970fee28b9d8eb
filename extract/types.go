package extract

import (
	"context"

	"github.com/tbxark/grainagent/patch"
	"github.com/tbxark/grainagent/types"
)

// Extraction is what the model reports for one user message. A nil field
// means the user did not mention it.
type Extraction struct {
	HealthGoals       []string       `json:"health_goals,omitempty" jsonschema:"description=Health concern keywords. Leave out when not mentioned"`
	TexturePreference *types.Texture `json:"texture_preference,omitempty" jsonschema:"enum=고슬밥,enum=찰진밥,enum=콩없는 밥,enum=선호없음,description=Texture preference. Leave out when not mentioned"`
	OwnGrains         []string       `json:"own_grains,omitempty" jsonschema:"description=Grains the user owns. Leave out when not mentioned"`
	AvoidOrAllergy    []string       `json:"avoid_or_allergy,omitempty" jsonschema:"description=Grains the user avoids or is allergic to. Leave out when not mentioned"`
	FieldsToReset     []string       `json:"fields_to_reset,omitempty" jsonschema:"description=Names of fields the user asked to clear: health_goals / texture_preference / own_grains / avoid_or_allergy"`
}

// Empty reports whether the extraction changes nothing.
func (e *Extraction) Empty() bool {
	return e == nil || (e.HealthGoals == nil && e.TexturePreference == nil &&
		e.OwnGrains == nil && e.AvoidOrAllergy == nil && len(e.FieldsToReset) == 0)
}

type Request struct {
	UserInput string
	State     types.SurveyState
}

type Result struct {
	State        types.SurveyState
	Extraction   Extraction
	Instructions []string
	Ops          []patch.Operation
	Prompt       string
}

type Extractor interface {
	Extract(ctx context.Context, req *Request) (*Result, error)
}
