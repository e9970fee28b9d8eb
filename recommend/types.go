package recommend

import (
	"context"

	"github.com/tbxark/grainagent/types"
)

type Request struct {
	State types.SurveyState
}

type Result struct {
	Recommendation types.Recommendation
	Mode           types.Mode
	Rules          []string
	Violations     []string
	Message        string
	Prompt         string
}

type Recommender interface {
	Recommend(ctx context.Context, req *Request) (*Result, error)
}
