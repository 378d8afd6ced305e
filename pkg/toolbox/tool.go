package toolbox

import (
	"context"
	"encoding/json"
)

// Handler executes a tool with the given JSON arguments and returns a text
// result.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool is one callable operation: a name, a description, a JSON Schema for
// its arguments, and the handler that runs it.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}
