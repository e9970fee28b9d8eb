package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyRFC6902 applies ops to current and decodes the result back into T.
// Paths outside allowedPaths are rejected before anything is applied.
func ApplyRFC6902[T any](current T, ops []Operation, allowedPaths AllowedPaths) (T, error) {
	var zero T

	if len(ops) == 0 {
		return current, nil
	}
	if err := ValidatePatchOperations(ops, allowedPaths); err != nil {
		return zero, err
	}

	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal current state: %w", err)
	}

	ops = FixOperation(currentJSON, ops)

	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal patch operations: %w", err)
	}

	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to decode patch: %w", err)
	}

	modifiedJSON, err := p.Apply(currentJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to apply patch: %w", err)
	}

	var result T
	if err := sonic.Unmarshal(modifiedJSON, &result); err != nil {
		return zero, fmt.Errorf("type mismatch: patch would result in invalid type: %w", err)
	}

	return result, nil
}

// FixOperation walks ops in order against currentJSON. A replace on a
// path that is absent, or was removed earlier in the same patch, becomes an
// add; a remove of an absent path is dropped. Without this a reset followed
// by a new value for the same field would fail to apply.
func FixOperation(currentJSON []byte, ops []Operation) []Operation {
	var doc any
	if err := sonic.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}

	removed := map[string]bool{}
	exists := func(path string) bool {
		return !removed[path] && pathExists(doc, path)
	}

	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Op {
		case OperationReplace:
			if !exists(op.Path) {
				op.Op = OperationAdd
			}
			delete(removed, op.Path)
			fixed = append(fixed, op)
		case OperationRemove:
			if exists(op.Path) {
				removed[op.Path] = true
				fixed = append(fixed, op)
			}
		default:
			delete(removed, op.Path)
			fixed = append(fixed, op)
		}
	}

	return fixed
}

func pathExists(doc any, path string) bool {
	if path == "" {
		return true
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}

	cur := doc
	for _, token := range strings.Split(path[1:], "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			value, ok := node[token]
			if !ok {
				return false
			}
			cur = value
		case []any:
			index, err := strconv.Atoi(token)
			if err != nil || index < 0 || index >= len(node) {
				return false
			}
			cur = node[index]
		default:
			return false
		}
	}

	return true
}
