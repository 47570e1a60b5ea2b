// pkg/registry/schema.go
package registry

import (
	"fmt"
	"time"
)

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity is one worker. Schemas are JSON Schema documents kept as generic
// maps so they can be handed to gojsonschema unchanged.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// TimeoutDuration parses Timeout. An empty timeout is zero.
func (a Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s: invalid timeout %q: %w", a.ID, a.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("activity %s: negative timeout %q", a.ID, a.Timeout)
	}
	return d, nil
}

// Raises reports whether code is among the activity's declared error codes.
func (a Activity) Raises(code string) bool {
	for _, c := range a.ErrorCodes {
		if c == code {
			return true
		}
	}
	return false
}
