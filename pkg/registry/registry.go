// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"match-workers/internal/common/validation"
)

// LoadRegistry reads and validates an activity registry file.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result, err := validation.ValidateJSON(registrySchema, data)
	if err != nil {
		return nil, fmt.Errorf("validate registry: %w", err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid registry %s: %s", path, result.ErrorSummary())
	}

	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(reg.Activities))
	for _, a := range reg.Activities {
		if _, dup := seen[a.TaskType]; dup {
			return nil, fmt.Errorf("invalid registry %s: duplicate task type %q", path, a.TaskType)
		}
		seen[a.TaskType] = struct{}{}
	}

	return &reg, nil
}

// FindByTaskType returns the activity registered for a task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TaskTypes lists every registered task type in declaration order.
func (r *ActivityRegistry) TaskTypes() []string {
	types := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		types = append(types, a.TaskType)
	}
	return types
}
