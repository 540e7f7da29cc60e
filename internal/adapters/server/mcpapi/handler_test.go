package mcpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/evanschultz/taskboard/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
)

// stubTaskService provides deterministic board responses for MCP tool tests.
type stubTaskService struct {
	board      common.Board
	created    common.Task
	moveErr    error
	lastCreate common.CreateTaskRequest
	lastMove   common.MoveTaskRequest
	lastDelete common.DeleteTaskRequest
}

// ListBoard returns the fixture board.
func (s *stubTaskService) ListBoard(context.Context) (common.Board, error) {
	return s.board, nil
}

// CreateTask records and returns one fixture task.
func (s *stubTaskService) CreateTask(_ context.Context, req common.CreateTaskRequest) (common.Task, error) {
	s.lastCreate = req
	return s.created, nil
}

// MoveTask records the request and returns the configured error.
func (s *stubTaskService) MoveTask(_ context.Context, req common.MoveTaskRequest) (common.Task, error) {
	s.lastMove = req
	if s.moveErr != nil {
		return common.Task{}, s.moveErr
	}
	return common.Task{ID: req.ID, Status: req.Status}, nil
}

// DeleteTask records the request.
func (s *stubTaskService) DeleteTask(_ context.Context, req common.DeleteTaskRequest) error {
	s.lastDelete = req
	return nil
}

// jsonRPCResponse models minimal JSON-RPC response fields used in MCP adapter tests.
type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// callToolRequest constructs one deterministic tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()

	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// toolResultStructured decodes structuredContent as one map for stable assertions.
func toolResultStructured(t *testing.T, result map[string]any) map[string]any {
	t.Helper()
	structured, ok := result["structuredContent"].(map[string]any)
	if !ok {
		t.Fatalf("structuredContent missing in tool result: %#v", result)
	}
	return structured
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := resp.Body.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return resp, decoded
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "taskboard-test",
				"version": "1.0.0",
			},
		},
	}
}

// newTestServer starts one httptest server over the MCP handler.
func newTestServer(t *testing.T, svc common.TaskService) *httptest.Server {
	t.Helper()
	handler, err := NewHandler(Config{}, svc)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// TestNewHandlerRequiresService verifies construction fails without a task service.
func TestNewHandlerRequiresService(t *testing.T) {
	if _, err := NewHandler(Config{}, nil); err == nil {
		t.Fatal("expected error without task service")
	}
}

// TestHandlerUsesStatelessTransport verifies MCP transport does not issue session ids.
func TestHandlerUsesStatelessTransport(t *testing.T) {
	server := newTestServer(t, &stubTaskService{})

	resp, decoded := postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if decoded.ID != 1 {
		t.Fatalf("id = %v, want 1", decoded.ID)
	}
	if got := resp.Header.Get("Mcp-Session-Id"); got != "" {
		t.Fatalf("Mcp-Session-Id header = %q, want empty (stateless transport)", got)
	}
}

// TestHandlerRegistersBoardTools verifies MCP tool discovery lists every board tool.
func TestHandlerRegistersBoardTools(t *testing.T) {
	server := newTestServer(t, &stubTaskService{})
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})

	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, required := range []string{
		"board.list_tasks",
		"board.create_task",
		"board.move_task",
		"board.delete_task",
	} {
		if !slices.Contains(toolNames, required) {
			t.Fatalf("tool list missing %q: %#v", required, toolNames)
		}
	}
}

// TestHandlerBoardToolCalls verifies tool arguments reach the task service.
func TestHandlerBoardToolCalls(t *testing.T) {
	svc := &stubTaskService{
		board: common.Board{
			Todo:       []common.Task{{ID: "1", Title: "one", Status: "todo", Tags: []string{}}},
			InProgress: []common.Task{},
			Done:       []common.Task{},
		},
		created: common.Task{ID: "2", Title: "two", Status: "todo", Tags: []string{"a", "b"}},
	}
	server := newTestServer(t, svc)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	_, listResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "board.list_tasks", map[string]any{}))
	structured := toolResultStructured(t, listResp.Result)
	todo, ok := structured["todo"].([]any)
	if !ok || len(todo) != 1 {
		t.Fatalf("todo = %#v, want one row", structured["todo"])
	}

	_, createResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "board.create_task", map[string]any{
		"title": "two",
		"tags":  "a, b ,,",
	}))
	if structured := toolResultStructured(t, createResp.Result); structured["id"] != "2" {
		t.Fatalf("created id = %#v, want 2", structured["id"])
	}
	if !slices.Equal(svc.lastCreate.Tags, []string{"a", "b"}) {
		t.Fatalf("create tags = %#v, want [a b]", svc.lastCreate.Tags)
	}

	_, _ = postJSONRPC(t, server.Client(), server.URL, callToolRequest(4, "board.move_task", map[string]any{
		"id":     "2",
		"status": "done",
	}))
	if svc.lastMove.ID != "2" || svc.lastMove.Status != "done" {
		t.Fatalf("unexpected move request %#v", svc.lastMove)
	}

	_, deleteResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(5, "board.delete_task", map[string]any{
		"id": "2",
	}))
	if structured := toolResultStructured(t, deleteResp.Result); structured["ok"] != true {
		t.Fatalf("delete result = %#v, want ok=true", structured)
	}
	if svc.lastDelete.ID != "2" {
		t.Fatalf("unexpected delete request %#v", svc.lastDelete)
	}
}

// TestHandlerToolErrors verifies argument and service errors surface as tool errors.
func TestHandlerToolErrors(t *testing.T) {
	svc := &stubTaskService{
		moveErr: errors.Join(common.ErrInvalidRequest, errors.New("invalid id or status")),
	}
	server := newTestServer(t, svc)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())

	_, missingArgResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "board.create_task", map[string]any{}))
	if isError, _ := missingArgResp.Result["isError"].(bool); !isError {
		t.Fatalf("isError = %v, want true", missingArgResp.Result["isError"])
	}
	if got := toolResultText(t, missingArgResp.Result); !strings.Contains(got, `required argument "title" not found`) {
		t.Fatalf("error text = %q, want required title message", got)
	}

	_, mappedErrResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "board.move_task", map[string]any{
		"id":     "1",
		"status": "done",
	}))
	if isError, _ := mappedErrResp.Result["isError"].(bool); !isError {
		t.Fatalf("isError = %v, want true", mappedErrResp.Result["isError"])
	}
	if got := toolResultText(t, mappedErrResp.Result); !strings.HasPrefix(got, "invalid_request:") {
		t.Fatalf("error text = %q, want prefix invalid_request:", got)
	}
}

// TestToolResultFromError verifies error category prefixes.
func TestToolResultFromError(t *testing.T) {
	cases := []struct {
		err    error
		prefix string
	}{
		{err: common.ErrNotFound, prefix: "not_found:"},
		{err: common.ErrServiceUnavailable, prefix: "service_unavailable:"},
		{err: errors.New("boom"), prefix: "internal_error:"},
	}
	for _, tc := range cases {
		result := toolResultFromError(tc.err)
		if !result.IsError {
			t.Fatalf("IsError = false for %v", tc.err)
		}
		text, ok := result.Content[0].(mcp.TextContent)
		if !ok {
			t.Fatalf("content[0] has unexpected type %T", result.Content[0])
		}
		if !strings.HasPrefix(text.Text, tc.prefix) {
			t.Fatalf("text = %q, want prefix %q", text.Text, tc.prefix)
		}
	}
}
