// Package toolbox holds the operation catalog and dispatches invocations to
// handlers. Every failure a handler raises is converted to a tagged error
// result at this boundary; nothing propagates to the transport as a fault.
package toolbox

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/toolerr"
)

// ToolBox is a static catalog of tools keyed by name.
type ToolBox struct {
	tools map[string]Tool
}

// New creates an empty ToolBox.
func New() *ToolBox {
	return &ToolBox{tools: make(map[string]Tool)}
}

// Register adds tools to the catalog. A tool with an existing name replaces
// the previous registration.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Tools returns the catalog sorted by name, for listing to callers.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// Result is the outcome of one invocation: either content or a tagged
// error rendered as text.
type Result struct {
	Content string
	IsError bool
}

// Call dispatches an invocation by name. Unknown names and handler failures
// both produce an error Result carrying the failure's text.
func (tb *ToolBox) Call(ctx context.Context, name string, args json.RawMessage) Result {
	t, ok := tb.tools[name]
	if !ok {
		err := toolerr.New(toolerr.UnknownOperation, "unknown tool: %s", name)
		return Result{Content: err.Error(), IsError: true}
	}

	if args == nil {
		args = json.RawMessage("{}")
	}

	content, err := t.Handler(ctx, args)
	if err != nil {
		return Result{Content: err.Error(), IsError: true}
	}

	return Result{Content: content}
}
