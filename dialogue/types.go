package dialogue

import (
	"context"

	"github.com/tbxark/grainagent/types"
)

type Request struct {
	State         types.SurveyState
	MissingFields []types.FieldInfo
	LastUserInput string
}

type Result struct {
	Message  string
	Prompt   string
	Greeting bool
}

type Generator interface {
	GenerateQuestion(ctx context.Context, req *Request) (*Result, error)
}
