package dialogue

import (
	"fmt"
	"strings"

	"github.com/tbxark/grainagent/survey"
	"github.com/tbxark/grainagent/types"
)

func formatStateSection(s types.SurveyState) string {
	return fmt.Sprintf("# Collected so far:\n%s", survey.Summary(s))
}

func formatMissingSection(fields []types.FieldInfo) string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, f.DisplayName)
	}
	return fmt.Sprintf("# Situation:\nThe '%s' information is missing.\n\n%s",
		strings.Join(labels, ", "), types.FormatMissingFieldsSection(fields))
}

func formatTextureOptions() string {
	opts := make([]string, 0, len(types.Textures))
	for _, t := range types.Textures {
		opts = append(opts, fmt.Sprintf("'%s'", t))
	}
	return strings.Join(opts, ", ")
}

func formatUserInputSection(lastInput string, greeting bool) string {
	if lastInput == "" {
		return ""
	}
	flag := "no"
	if greeting {
		flag = "yes"
	}
	return fmt.Sprintf("# User input:\n%s\n> greeting: %s", lastInput, flag)
}
