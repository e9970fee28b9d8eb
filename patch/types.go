package patch

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// AllowedPaths is the set of JSON pointers a patch may touch.
type AllowedPaths map[string]bool

func NewAllowedPaths(paths ...string) AllowedPaths {
	out := make(AllowedPaths, len(paths))
	for _, p := range paths {
		out[p] = true
	}
	return out
}
