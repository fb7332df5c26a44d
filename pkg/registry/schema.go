// pkg/registry/schema.go
package registry

// ToolRegistry is the public catalog of retrieval tools. It documents
// the interface contract for workflow authors; the gateway itself
// dispatches on tool name and ignores unrecognized params structurally.
type ToolRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Tools       []Tool `json:"tools"`
}

type Tool struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName"`
	Description      string   `json:"description"`
	Collection       string   `json:"collection"`
	RecognizedParams []string `json:"recognizedParams"`
	DefaultLimit     int      `json:"defaultLimit"`
	MaxLimit         int      `json:"maxLimit"`
}

// Find returns the tool with the given name, or nil.
func (r *ToolRegistry) Find(name string) *Tool {
	for i := range r.Tools {
		if r.Tools[i].Name == name {
			return &r.Tools[i]
		}
	}
	return nil
}
