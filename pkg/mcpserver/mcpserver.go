// Package mcpserver exposes the tool catalog over the MCP protocol using
// the official MCP Go SDK, on either a stdio transport or an SSE HTTP
// handler. All tool calls are routed through the catalog's dispatcher, so
// failures — unknown operation names included — surface as tagged error
// results rather than protocol faults.
package mcpserver

import (
	"context"
	"io"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/toolbox"
)

// MCPServer serves a tool catalog over the MCP protocol.
type MCPServer struct {
	server *mcp.Server
}

// New creates a new MCPServer with the given name and version.
func New(name, version string) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &MCPServer{server: server}
}

// Register exposes the catalog over MCP. Tool listings come from the
// catalog; calls are intercepted before the SDK's own routing and handed to
// the catalog's dispatcher, which renders unknown names as UnknownOperation
// error results instead of letting the SDK reject them at the protocol
// level.
func (s *MCPServer) Register(tb *toolbox.ToolBox) {
	for _, t := range tb.Tools() {
		s.server.AddTool(toSDKTool(t), dispatchHandler(tb))
	}

	s.server.AddReceivingMiddleware(dispatchMiddleware(tb))
}

// Serve starts serving MCP requests over stdio-style streams. It reads
// requests from in and writes responses to out, blocking until ctx is
// cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// SSEHandler returns an HTTP handler serving the MCP protocol over
// server-sent events, for the HTTP deployment mode.
func (s *MCPServer) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// run starts the server with the given transport. Exported via Serve for
// production use; called directly by tests with InMemoryTransport.
func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// dispatchMiddleware routes every tools/call request through the
// dispatcher, whether or not the name is in the catalog.
func dispatchMiddleware(tb *toolbox.ToolBox) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if call, ok := req.(*mcp.CallToolRequest); ok && method == "tools/call" {
				return toSDKResult(tb.Call(ctx, call.Params.Name, call.Params.Arguments)), nil
			}

			return next(ctx, method, req)
		}
	}
}

// dispatchHandler delegates a registered tool's calls to the dispatcher.
// The middleware normally short-circuits first; this keeps behavior
// identical should a call reach the tool directly.
func dispatchHandler(tb *toolbox.ToolBox) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toSDKResult(tb.Call(ctx, req.Params.Name, req.Params.Arguments)), nil
	}
}

// toSDKTool converts a toolbox.Tool to an SDK *mcp.Tool.
func toSDKTool(t toolbox.Tool) *mcp.Tool {
	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// toSDKResult converts a dispatcher result to an SDK call result.
func toSDKResult(r toolbox.Result) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: r.Content}},
		IsError: r.IsError,
	}
}

// nopWriteCloser wraps an io.Writer as an io.WriteCloser with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
