// Package mcpserver exposes the vault operations as MCP tools over
// streamable HTTP or stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vaultmcp/internal/auth"
	"github.com/starford/vaultmcp/internal/noteservice"
	"github.com/starford/vaultmcp/internal/patch"
)

const guideURI = "vault://patch-guide"

// Server wraps the MCP server with the vault tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *noteservice.Service
	logger *slog.Logger
}

// New creates a new MCP server with all vault tools registered.
func New(svc *noteservice.Service, name, version string, logger *slog.Logger) *Server {
	s := &Server{svc: svc, logger: logger}

	s.mcp = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(Instructions),
		server.WithToolHandlerMiddleware(s.logCalls),
	)

	s.mcp.AddTool(mcp.NewTool("list_files_in_vault",
		mcp.WithDescription("List all notes in the vault."),
	), s.listFilesInVault)

	s.mcp.AddTool(mcp.NewTool("list_files_in_dir",
		mcp.WithDescription("List all notes in a specific directory of the vault. Paths are relative to that directory."),
		mcp.WithString("dir", mcp.Required(), mcp.Description("Directory relative to the vault root")),
	), s.listFilesInDir)

	s.mcp.AddTool(mcp.NewTool("get_file_contents",
		mcp.WithDescription("Return the full text of a note by path or file name (searches the vault)."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Vault path or bare file name; .md is optional")),
	), s.getFileContents)

	s.mcp.AddTool(mcp.NewTool("append_content",
		mcp.WithDescription("Append content to the end of a note. Creates the note if it does not exist."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Vault path or bare file name; .md is optional")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to append")),
	), s.appendContent)

	s.mcp.AddTool(mcp.NewTool("patch_content",
		mcp.WithDescription("Insert or replace content relative to a heading, block reference, "+
			"frontmatter key or literal text span. See the "+guideURI+" resource."),
		mcp.WithString("filepath", mcp.Required(), mcp.Description("Vault path or bare file name; .md is optional")),
		mcp.WithString("operation", mcp.Required(), mcp.Enum("prepend", "append", "replace")),
		mcp.WithString("target_type", mcp.Required(), mcp.Enum("heading", "block", "frontmatter", "text")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Heading text, block id, frontmatter key or text span")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to insert")),
	), s.patchContent)

	s.mcp.AddTool(mcp.NewTool("delete_lines",
		mcp.WithDescription("Delete a range of lines from a note. Lines are numbered from 1; the range is inclusive."),
		mcp.WithString("filepath", mcp.Required(), mcp.Description("Vault path or bare file name; .md is optional")),
		mcp.WithNumber("start_line", mcp.Required(), mcp.Min(1)),
		mcp.WithNumber("end_line", mcp.Required(), mcp.Min(1)),
	), s.deleteLines)

	s.mcp.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Fuzzy search over note paths, best match first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	), s.searchFiles)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Fuzzy search over every line of every note, best match first. "+
			"Returns path, 1-based line number, line text and score."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	), s.searchContent)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Patch Guide",
			mcp.WithResourceDescription("How patch_content locates targets and applies operations."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPatchGuide,
	)

	return s
}

// ServeStdio serves MCP over in/out (normally stdin/stdout) until ctx is
// cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

// HTTPHandler returns the streamable HTTP transport mounted at endpoint.
// The authenticated user set by auth.Middleware is carried into tool calls.
func (s *Server) HTTPHandler(endpoint string) http.Handler {
	return server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath(endpoint),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return auth.WithUser(ctx, auth.UserFromContext(r.Context()))
		}),
	)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// logCalls records every tool invocation with the calling user.
func (s *Server) logCalls(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := next(ctx, req)
		attrs := []any{
			slog.String("tool", req.Params.Name),
			slog.String("user", auth.UserFromContext(ctx)),
			slog.Duration("took", time.Since(start)),
		}
		switch {
		case err != nil:
			s.logger.Error("mcp: tool error", append(attrs, slog.String("error", err.Error()))...)
		case res != nil && res.IsError:
			s.logger.Warn("mcp: tool failed", append(attrs, slog.String("error", resultText(res)))...)
		default:
			s.logger.Info("mcp: tool call", attrs...)
		}
		return res, err
	}
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listFilesInVault(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.svc.ListFiles(ctx, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(files)
}

func (s *Server) listFilesInDir(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := s.svc.ListFiles(ctx, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(files)
}

func (s *Server) getFileContents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.ReadNote(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) appendContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.AppendContent(ctx, name, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("appended: %s", p)), nil
}

func (s *Server) patchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args [5]string
	for i, key := range []string{"filepath", "operation", "target_type", "target", "content"} {
		v, err := req.RequireString(key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		args[i] = v
	}
	spec, err := patch.ParseSpec(args[1], args[2], args[3], args[4])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.PatchNote(ctx, args[0], spec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("patched: %s", p)), nil
}

func (s *Server) deleteLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filepath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := req.RequireInt("start_line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := req.RequireInt("end_line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.DeleteLines(ctx, name, start, end)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted lines %d-%d: %s", start, end, p)), nil
}

func (s *Server) searchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchFiles(ctx, query, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits)
}

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.SearchContent(ctx, query, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits)
}

func (s *Server) readPatchGuide(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     PatchGuide,
		},
	}, nil
}
