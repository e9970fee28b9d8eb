// Package grainref maps user spellings of grain names to their standard
// names.
package grainref

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tbxark/grainagent/cache"
	"github.com/tbxark/grainagent/types"
)

const aliasCacheKey = "aliases"

// AliasSource loads the folded alias to standard name map.
type AliasSource interface {
	AliasMap(ctx context.Context) (map[string]string, error)
}

type UnknownGrains struct {
	UnknownAvoid []string `json:"unknownAvoid"`
	UnknownOwn   []string `json:"unknownOwn"`
}

type Result struct {
	NormalizedState types.AppState `json:"normalizedState"`
	UnknownGrains   UnknownGrains  `json:"unknownGrains"`
}

type Normalizer struct {
	source AliasSource
	cache  cache.Store[map[string]string]
}

// NewNormalizer creates a normalizer. Without a source, lists are only
// trimmed and de-duplicated.
func NewNormalizer(source AliasSource, core cache.Cache[map[string]string]) *Normalizer {
	return &Normalizer{
		source: source,
		cache:  cache.NewStore(core, "grainref", cache.Fixed(aliasCacheKey)),
	}
}

// NormalizeState rewrites own_grains and avoid_or_allergy to standard names
// and reports the entries it could not map.
func (n *Normalizer) NormalizeState(ctx context.Context, state types.AppState) *Result {
	avoid, unknownAvoid := n.NormalizeList(ctx, state.SurveyState.AvoidOrAllergy)
	own, unknownOwn := n.NormalizeList(ctx, state.SurveyState.OwnGrains)

	normalized := state
	normalized.SurveyState = state.SurveyState.Normalize()
	normalized.SurveyState.AvoidOrAllergy = avoid
	normalized.SurveyState.OwnGrains = own
	return &Result{
		NormalizedState: normalized,
		UnknownGrains: UnknownGrains{
			UnknownAvoid: unknownAvoid,
			UnknownOwn:   unknownOwn,
		},
	}
}

// NormalizeList maps items through the alias table, keeping first-seen
// order.
func (n *Normalizer) NormalizeList(ctx context.Context, items []string) ([]string, []string) {
	values, unknown := []string{}, []string{}
	if len(items) == 0 {
		return values, unknown
	}
	aliases, ok := n.aliases(ctx)
	seen := map[string]struct{}{}
	add := func(v string) {
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if !ok {
			add(trimmed)
			continue
		}
		if canonical, found := aliases[types.GrainKey(trimmed)]; found {
			add(canonical)
		} else {
			unknown = append(unknown, trimmed)
		}
	}
	return values, unknown
}

func (n *Normalizer) aliases(ctx context.Context) (map[string]string, bool) {
	if n.source == nil {
		return nil, false
	}
	cached, ok, err := n.cache.Get(ctx)
	if err != nil {
		slog.Warn("Alias cache read failed", "error", err)
	} else if ok {
		return cached, true
	}
	aliases, err := n.source.AliasMap(ctx)
	if err != nil {
		slog.Error("Failed to load grain references", "error", err)
		return nil, false
	}
	if err := n.cache.Set(ctx, aliases); err != nil {
		slog.Warn("Alias cache write failed", "error", err)
	}
	slog.Info("Loaded grain references", "entries", len(aliases))
	return aliases, true
}
