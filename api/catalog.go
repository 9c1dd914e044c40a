package api

import (
	"encoding/json"

	"github.com/burrowdb/burrow/catalog"
)

// operationSchema is the advertised shape of one operation.
type operationSchema struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema inputSchema `json:"inputSchema"`
}

type inputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]propertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

type propertySchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// renderCatalog serializes the operation descriptors into the
// advertised catalog document. Descriptors are the single source of
// truth; nothing here is hand-maintained.
func renderCatalog() ([]byte, error) {
	ops := make([]operationSchema, 0, len(catalog.Descriptors()))
	for _, desc := range catalog.Descriptors() {
		props := make(map[string]propertySchema, len(desc.Args))
		var required []string
		for _, arg := range desc.Args {
			props[arg.Name] = propertySchema{
				Type:        string(arg.Type),
				Description: arg.Description,
			}
			if arg.Required {
				required = append(required, arg.Name)
			}
		}

		ops = append(ops, operationSchema{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: inputSchema{
				Type:       "object",
				Properties: props,
				Required:   required,
			},
		})
	}

	return json.Marshal(map[string]any{"operations": ops})
}
