// pkg/registry/schema.go
package registry

// ActivityRegistry catalogs the worker task types this fleet serves, with
// their I/O schemas. The worker manager loads it at startup and BPMN tooling
// consumes it to wire service tasks.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	TaskType     string                 `json:"taskType"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Timeout      string                 `json:"timeout"`
	Retries      int                    `json:"retries"`
	Tags         []string               `json:"tags"`
}

// registrySchema is the meta-schema a loaded registry must satisfy.
var registrySchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"version", "activities"},
	"properties": map[string]interface{}{
		"version": map[string]interface{}{"type": "string", "minLength": 1},
		"activities": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"id", "taskType"},
				"properties": map[string]interface{}{
					"id":       map[string]interface{}{"type": "string", "minLength": 1},
					"taskType": map[string]interface{}{"type": "string", "minLength": 1},
					"retries":  map[string]interface{}{"type": "integer", "minimum": 0},
				},
			},
		},
	},
}
