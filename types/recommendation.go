package types

import (
	"fmt"
	"strings"
)

// GrainKey folds a grain name for comparison: trimmed, lower-cased and
// with inner whitespace collapsed.
func GrainKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

type CheckOptions struct {
	MustInclude []string
	MustExclude []string
}

// Check reports every way r breaks the blend contract. An empty result
// means the recommendation is well formed.
func (r *Recommendation) Check(opts CheckOptions) []string {
	var violations []string
	if r == nil {
		return []string{"recommendation is empty"}
	}
	if len(r.Blend) == 0 {
		violations = append(violations, "blend is empty")
	}
	total, top := 0, 0
	for _, item := range r.Blend {
		total += item.Ratio
		if item.Ratio > top {
			top = item.Ratio
		}
		if item.Ratio <= 0 {
			violations = append(violations, fmt.Sprintf("grain %q has non-positive ratio %d", item.Grain, item.Ratio))
		}
	}
	if len(r.Blend) > 0 && total != 100 {
		violations = append(violations, fmt.Sprintf("ratios sum to %d, want 100", total))
	}
	if len(r.Blend) > 0 && top < 50 {
		violations = append(violations, fmt.Sprintf("base grain share is %d%%, want at least 50%%", top))
	}
	if len(r.Reasons) < 3 {
		violations = append(violations, fmt.Sprintf("got %d reasons, want at least 3", len(r.Reasons)))
	}
	for _, grain := range opts.MustInclude {
		if !r.containsGrain(grain) {
			violations = append(violations, fmt.Sprintf("owned grain %q missing from blend", grain))
		}
	}
	for _, grain := range opts.MustExclude {
		if grain == "" || GrainKey(grain) == GrainKey(NoPreference) {
			continue
		}
		if r.containsGrain(grain) {
			violations = append(violations, fmt.Sprintf("avoided grain %q present in blend", grain))
		}
	}
	return violations
}

func (r *Recommendation) containsGrain(grain string) bool {
	want := GrainKey(grain)
	if want == "" {
		return true
	}
	for _, item := range r.Blend {
		if GrainKey(item.Grain) == want {
			return true
		}
	}
	return false
}
