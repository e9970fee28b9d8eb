package agent

import (
	"context"

	"github.com/tbxark/grainagent/cache"
	"github.com/tbxark/grainagent/types"
)

// StateReadWriter keeps the AppState of a terminal session between turns.
// HTTP clients carry their own state and do not need it.
type StateReadWriter interface {
	Read(ctx context.Context) (types.AppState, error)
	Write(ctx context.Context, state types.AppState) error
	Remove(ctx context.Context) error
}

type stateKeyContext struct{}

const defaultStateKey = "default"

// WithStateKey sets a routing key for state storage in the context.
func WithStateKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, stateKeyContext{}, key)
}

// StateKeyFromContext gets the routing key from the context.
func StateKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(stateKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

func stateKeyOrDefault(ctx context.Context) (string, bool) {
	key, ok := StateKeyFromContext(ctx)
	if ok && key != "" {
		return key, true
	}
	return defaultStateKey, true
}

// InitialState is the state of a conversation that has not started.
func InitialState() types.AppState {
	return types.AppState{
		ConversationStage: types.StageStart,
		SurveyState:       types.SurveyState{}.Normalize(),
	}
}

type CacheStateReadWriter struct {
	store cache.Store[types.AppState]
}

func NewCacheStateReadWriter(core cache.Cache[types.AppState]) *CacheStateReadWriter {
	return &CacheStateReadWriter{store: cache.NewStore(core, "session", stateKeyOrDefault)}
}

func (s *CacheStateReadWriter) Read(ctx context.Context) (types.AppState, error) {
	state, ok, err := s.store.Get(ctx)
	if err != nil {
		return types.AppState{}, err
	}
	if !ok {
		return InitialState(), nil
	}
	return state, nil
}

func (s *CacheStateReadWriter) Write(ctx context.Context, state types.AppState) error {
	return s.store.Set(ctx, state)
}

func (s *CacheStateReadWriter) Remove(ctx context.Context) error {
	return s.store.Del(ctx)
}
