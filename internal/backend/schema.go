package backend

import (
	"fmt"
	"sync"

	"capacity-mcp/internal/capacity"

	"github.com/google/jsonschema-go/jsonschema"
)

// envelopeSchema describes the backend's {success, data, message} document.
// Date columns are free-form, so rows only constrain the identity columns.
var envelopeSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"success"},
	Properties: map[string]*jsonschema.Schema{
		"success": {Type: "boolean"},
		"message": {Type: "string"},
		"data":    {Type: "array", Items: rowSchema},
	},
}

var rowSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		capacity.ProductCodeKey: {Types: []string{"string", "number", "null"}},
		capacity.SizeKey:        {Types: []string{"string", "number", "null"}},
	},
}

var (
	resolveOnce sync.Once
	resolved    *jsonschema.Resolved
	resolveErr  error
)

func envelopeValidator() (*jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		resolved, resolveErr = envelopeSchema.Resolve(nil)
	})
	return resolved, resolveErr
}

// decodeEnvelope validates a decoded backend document and extracts its rows.
func decodeEnvelope(doc any) ([]capacity.Record, error) {
	v, err := envelopeValidator()
	if err != nil {
		return nil, fmt.Errorf("resolve envelope schema: %w", err)
	}
	if err := v.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: invalid document: %v", ErrBackend, err)
	}

	m := doc.(map[string]any)
	if ok, _ := m["success"].(bool); !ok {
		msg, _ := m["message"].(string)
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, fmt.Errorf("%w: %s", ErrBackend, msg)
	}

	data, ok := m["data"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: document has no data", ErrBackend)
	}
	return toRecords(data), nil
}

func toRecords(rows []any) []capacity.Record {
	out := make([]capacity.Record, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]any); ok {
			out = append(out, capacity.Record(m))
		}
	}
	return out
}
