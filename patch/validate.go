package patch

import (
	"fmt"
)

func ValidatePatchOperations(ops []Operation, allowedPaths AllowedPaths) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationReplace, OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
		if err := validatePathAllowed(op.Path, allowedPaths); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

func validatePathAllowed(path string, allowedPaths AllowedPaths) error {
	if len(allowedPaths) == 0 || allowedPaths[path] {
		return nil
	}
	return fmt.Errorf("path %q is not in the allowed paths set", path)
}
