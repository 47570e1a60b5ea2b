// Package registry describes the job workers this module provides: task
// types, timeouts, error codes and the JSON schema each worker validates
// its variables against.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"candidate-evaluation-workers/internal/common/validation"

	"github.com/goccy/go-json"
)

//go:embed activities.json
var embedded []byte

var (
	defaultOnce sync.Once
	defaultReg  *ActivityRegistry
	defaultErr  error
)

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Parse(embedded)
	})
	return defaultReg, defaultErr
}

// MustDefault is Default for process start-up.
func MustDefault() *ActivityRegistry {
	reg, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded activity registry: %v", err))
	}
	return reg
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return &reg, nil
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Save writes reg as indented JSON, creating the directory if needed.
func Save(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// InputSchema returns the input schema of taskType, or nil when the task
// type is unknown. A nil schema accepts any document.
func (r *ActivityRegistry) InputSchema(taskType string) map[string]interface{} {
	if a, ok := r.Find(taskType); ok {
		return a.InputSchema
	}
	return nil
}

// Validate checks required fields, unique IDs, task type naming, timeouts
// and that every schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, a := range r.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity ID: %s", a.ID)
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", a.ID)
		}
		if a.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", a.ID)
		}
		if err := validation.ValidateTaskTypeNaming(a.TaskType); err != nil {
			return fmt.Errorf("activity %s: %w", a.ID, err)
		}
		if _, err := a.TimeoutDuration(); err != nil {
			return err
		}
		if a.Retries < 0 {
			return fmt.Errorf("activity %s: retries must not be negative", a.ID)
		}
		if !a.Raises("PARSE_ERROR") {
			return fmt.Errorf("activity %s: every worker must declare PARSE_ERROR", a.ID)
		}
		for name, schema := range map[string]map[string]interface{}{"input": a.InputSchema, "output": a.OutputSchema} {
			if _, err := validation.ValidateDocument(schema, map[string]interface{}{}); err != nil {
				return fmt.Errorf("activity %s: %s schema: %w", a.ID, name, err)
			}
		}
	}
	return nil
}
