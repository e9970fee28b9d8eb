package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tbxark/grainagent/patch"
	"github.com/tbxark/grainagent/survey"
	"github.com/tbxark/grainagent/types"
)

var resetPointers = map[string]string{
	"health_goals":       survey.PointerHealthGoals,
	"texture_preference": survey.PointerTexturePreference,
	"own_grains":         survey.PointerOwnGrains,
	"avoid_or_allergy":   survey.PointerAvoidOrAllergy,
}

// Operations converts an extraction into patch operations: a remove per
// reset field, then a replace per mentioned field. Resets come first so a
// field can be cleared and refilled in the same turn. Unmentioned fields
// produce no operation.
func Operations(e *Extraction) []patch.Operation {
	if e.Empty() {
		return nil
	}
	var ops []patch.Operation
	for _, field := range e.FieldsToReset {
		pointer, ok := resetPointers[strings.TrimSpace(field)]
		if !ok {
			slog.Debug("Ignoring unknown reset field", "field", field)
			continue
		}
		ops = append(ops, patch.Operation{Op: patch.OperationRemove, Path: pointer})
	}
	if e.HealthGoals != nil {
		ops = append(ops, replaceList(survey.PointerHealthGoals, e.HealthGoals))
	}
	if e.TexturePreference != nil {
		ops = append(ops, patch.Operation{Op: patch.OperationReplace, Path: survey.PointerTexturePreference, Value: string(*e.TexturePreference)})
	}
	if e.OwnGrains != nil {
		ops = append(ops, replaceList(survey.PointerOwnGrains, e.OwnGrains))
	}
	if e.AvoidOrAllergy != nil {
		ops = append(ops, replaceList(survey.PointerAvoidOrAllergy, e.AvoidOrAllergy))
	}
	return ops
}

// Apply patches state with the extraction and returns the new state.
func Apply(state types.SurveyState, e *Extraction) (types.SurveyState, []patch.Operation, error) {
	ops := Operations(e)
	if len(ops) == 0 {
		return state.Normalize(), nil, nil
	}
	next, err := patch.ApplyRFC6902(state.Normalize(), ops, survey.AllowedPaths)
	if err != nil {
		return state, ops, fmt.Errorf("failed to apply extraction: %w", err)
	}
	next = next.Normalize()
	if err := next.Validate(); err != nil {
		return state, ops, err
	}
	return next, ops, nil
}

func replaceList(pointer string, values []string) patch.Operation {
	return patch.Operation{Op: patch.OperationReplace, Path: pointer, Value: dedupe(values)}
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
