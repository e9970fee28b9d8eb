package agent

import (
	"errors"

	"github.com/tbxark/grainagent/types"
)

var ErrInvalidState = errors.New("invalid survey state")

// RoleBot is the role of every reply the flow produces.
const RoleBot = "bot"

const (
	StepExtractor   = "1. Extractor"
	StepRouter      = "2. Router"
	StepGenerator   = "3. Generator"
	StepRecommender = "3. Recommender"
)

type Request struct {
	UserInput string
	AppState  types.AppState
}

type Response = types.ChatResponse
