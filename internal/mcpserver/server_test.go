package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/vaultmcp/internal/auth"
	"github.com/starford/vaultmcp/internal/storage"
	"github.com/starford/vaultmcp/internal/testutil"
)

const tasksNote = "# Title\n\n## Tasks\n- [ ] old\n\n### Urgent\n- [ ] x\n"

func testServer(t *testing.T, notes map[string]string) (*Server, *storage.FS) {
	t.Helper()
	svc, store, _ := testutil.TestService(t, notes)
	return New(svc, "vaultmcp-test", "0.0.0", testutil.DiscardLogger()), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_files_in_vault": srv.listFilesInVault,
		"list_files_in_dir":   srv.listFilesInDir,
		"get_file_contents":   srv.getFileContents,
		"append_content":      srv.appendContent,
		"patch_content":       srv.patchContent,
		"delete_lines":        srv.deleteLines,
		"search_files":        srv.searchFiles,
		"search_content":      srv.searchContent,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	// Route through the logging middleware as the server would.
	result, err := srv.logCalls(h)(context.Background(), req)
	require.NoError(t, err, "tool %s", name)
	require.NotNil(t, result)
	return result
}

func TestToolsRegistered(t *testing.T) {
	srv, _ := testServer(t, nil)
	msg := srv.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"append_content", "delete_lines", "get_file_contents", "list_files_in_dir",
		"list_files_in_vault", "patch_content", "search_content", "search_files",
	}, names)
}

func TestListFiles(t *testing.T) {
	srv, _ := testServer(t, map[string]string{"a.md": "a", "dir/b.md": "b", "dir/sub/c.md": "c"})

	var all []string
	require.NoError(t, json.Unmarshal([]byte(resultText(callTool(t, srv, "list_files_in_vault", nil))), &all))
	assert.Equal(t, []string{"a.md", "dir/b.md", "dir/sub/c.md"}, all)

	var inDir []string
	r := callTool(t, srv, "list_files_in_dir", map[string]any{"dir": "dir"})
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &inDir))
	assert.Equal(t, []string{"b.md", "sub/c.md"}, inDir)

	r = callTool(t, srv, "list_files_in_dir", map[string]any{"dir": "missing"})
	assert.True(t, r.IsError)
}

func TestGetFileContents(t *testing.T) {
	srv, _ := testServer(t, map[string]string{"deep/dir/note.md": "# Test\nHello\n"})

	r := callTool(t, srv, "get_file_contents", map[string]any{"filename": "note"})
	assert.False(t, r.IsError)
	assert.Equal(t, "# Test\nHello\n", resultText(r))

	r = callTool(t, srv, "get_file_contents", map[string]any{"filename": "nope"})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "not found")

	r = callTool(t, srv, "get_file_contents", map[string]any{})
	assert.True(t, r.IsError)
}

func TestAppendContent(t *testing.T) {
	srv, store := testServer(t, map[string]string{"log.md": "first\n"})

	r := callTool(t, srv, "append_content", map[string]any{"filename": "log", "content": "second"})
	assert.Equal(t, "appended: log.md", resultText(r))
	data, _ := store.Read("log.md")
	assert.Equal(t, "first\nsecond\n", string(data))

	r = callTool(t, srv, "append_content", map[string]any{"filename": "fresh", "content": "hello"})
	assert.Equal(t, "appended: fresh.md", resultText(r))
	data, _ = store.Read("fresh.md")
	assert.Equal(t, "hello\n", string(data))
}

func TestPatchContent(t *testing.T) {
	srv, store := testServer(t, map[string]string{"todo.md": tasksNote})

	r := callTool(t, srv, "patch_content", map[string]any{
		"filepath":    "todo",
		"operation":   "append",
		"target_type": "heading",
		"target":      "Tasks",
		"content":     "- [ ] new",
	})
	require.False(t, r.IsError, resultText(r))
	assert.Equal(t, "patched: todo.md", resultText(r))

	data, _ := store.Read("todo.md")
	assert.Equal(t, "# Title\n\n## Tasks\n- [ ] new\n- [ ] old\n\n### Urgent\n- [ ] x\n", string(data))
}

func TestPatchContent_Errors(t *testing.T) {
	srv, store := testServer(t, map[string]string{"todo.md": tasksNote})
	before, _ := store.Read("todo.md")

	base := map[string]any{
		"filepath": "todo", "operation": "append", "target_type": "heading", "target": "Tasks", "content": "x",
	}
	// with copies base, applying overrides; a nil override drops the key.
	with := func(overrides map[string]any) map[string]any {
		args := make(map[string]any, len(base))
		for k, v := range base {
			args[k] = v
		}
		for k, v := range overrides {
			if v == nil {
				delete(args, k)
				continue
			}
			args[k] = v
		}
		return args
	}

	cases := map[string]struct {
		args map[string]any
		want string
	}{
		"missing heading":  {with(map[string]any{"target": "Nope"}), "not found"},
		"ambiguous text":   {with(map[string]any{"target_type": "text", "target": "- [ ]"}), "ambiguous target"},
		"bad target type":  {with(map[string]any{"target_type": "paragraph"}), "unsupported target type"},
		"bad operation":    {with(map[string]any{"operation": "delete"}), "unsupported operation"},
		"missing argument": {with(map[string]any{"content": nil}), "content"},
	}
	for name, c := range cases {
		r := callTool(t, srv, "patch_content", c.args)
		assert.True(t, r.IsError, name)
		assert.Contains(t, resultText(r), c.want, name)
	}

	after, _ := store.Read("todo.md")
	assert.Equal(t, before, after, "failed patches must not modify the note")
}

func TestDeleteLines(t *testing.T) {
	srv, store := testServer(t, map[string]string{"n.md": "one\ntwo\nthree\n"})

	r := callTool(t, srv, "delete_lines", map[string]any{"filepath": "n", "start_line": 2, "end_line": 3})
	assert.Equal(t, "deleted lines 2-3: n.md", resultText(r))
	data, _ := store.Read("n.md")
	assert.Equal(t, "one\n", string(data))

	r = callTool(t, srv, "delete_lines", map[string]any{"filepath": "n", "start_line": 1, "end_line": 4})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(r), "invalid argument")
}

func TestSearchTools(t *testing.T) {
	srv, _ := testServer(t, map[string]string{
		"projects/garden.md": "# Garden\nplant tomatoes\n",
		"reading.md":         "books\n",
	})

	r := callTool(t, srv, "search_files", map[string]any{"query": "garden", "limit": 5})
	var files []struct {
		Path  string `json:"path"`
		Score int    `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "projects/garden.md", files[0].Path)

	r = callTool(t, srv, "search_content", map[string]any{"query": "tomatoes"})
	var lines []struct {
		Path string `json:"path"`
		Line int    `json:"line"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Line)
	assert.Equal(t, "plant tomatoes", lines[0].Text)

	r = callTool(t, srv, "search_content", map[string]any{"query": "  "})
	assert.True(t, r.IsError)
}

func TestHTTPHandler_RequiresToken(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := auth.Middleware(true, "secret", "alice")(srv.HTTPHandler("/mcp"))

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"t","version":"1"}}}`

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), auth.MsgMissingHeader)

	req = httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "vaultmcp-test")
}
