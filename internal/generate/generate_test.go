package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/DeusData/syl/internal/annotation"
	"github.com/DeusData/syl/internal/config"
	"github.com/DeusData/syl/internal/lang"
	"github.com/DeusData/syl/internal/workspace"
)

const source = `class Parser:
    def parse(self, text):
        return text.split()


def helper():
    pass
`

// scripted replays canned responses and records every request.
type scripted struct {
	responses []openai.ChatCompletionResponse
	requests  []openai.ChatCompletionRequest
	err       error
}

func (s *scripted) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	if len(s.requests) > len(s.responses) {
		return reply(openai.FinishReasonStop, "done"), nil
	}
	return s.responses[len(s.requests)-1], nil
}

func reply(finish openai.FinishReason, content string, calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		FinishReason: finish,
		Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content, ToolCalls: calls},
	}}}
}

func call(id, name, args string) openai.ToolCall {
	return openai.ToolCall{ID: id, Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: name, Arguments: args}}
}

func newProject(t *testing.T, cfg *config.Config) *workspace.Project {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "parser.py"), []byte(source), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "big.txt"), []byte(strings.Repeat("x", maxFileChars+10)), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := workspace.New(root, lang.NewDefaultRegistry(), annotation.NewFileStore(filepath.Join(root, annotation.DirName)), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func toolOutputs(req openai.ChatCompletionRequest) map[string]string {
	out := map[string]string{}
	for _, m := range req.Messages {
		if m.Role == openai.ChatMessageRoleTool {
			out[m.ToolCallID] = m.Content
		}
	}
	return out
}

func TestGenerateFileWide(t *testing.T) {
	ctx := context.Background()
	p := newProject(t, nil)
	client := &scripted{responses: []openai.ChatCompletionResponse{
		reply(openai.FinishReasonToolCalls, "",
			call("c1", "get_semantic_tree", "{}"),
			call("c2", "get_node_source", `{"semantic_path":"Parser.parse"}`),
			call("c3", "get_node_source", `{"semantic_path":"Nope"}`),
		),
		reply(openai.FinishReasonToolCalls, "",
			call("c4", "save_annotations", `{"annotations":[{"semantic_path":"Parser","body":"Tokenizes text."},{"semantic_path":"helper","body":"Placeholder."}]}`),
			call("c5", "save_annotations", `{"annotations":[]}`),
			call("c6", "delete_everything", `{}`),
		),
		reply(openai.FinishReasonStop, "All done."),
	}}

	res, err := New(client, p).Generate(ctx, Request{File: "parser.py", Model: "test-model"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Count != 2 || res.Iterations != 3 {
		t.Errorf("result = %+v", res)
	}
	if len(client.requests) != 3 {
		t.Fatalf("made %d requests, want 3", len(client.requests))
	}

	first := client.requests[0]
	if first.Model != "test-model" || first.MaxCompletionTokens != 4096 || len(first.Tools) != 4 {
		t.Errorf("first request = model %s, max %d, %d tools", first.Model, first.MaxCompletionTokens, len(first.Tools))
	}
	if !strings.Contains(first.Messages[0].Content, "File: parser.py") || first.Messages[1].Content != userMessage {
		t.Errorf("unexpected opening messages: %+v", first.Messages[:2])
	}

	outputs := toolOutputs(client.requests[2])
	if got := outputs["c1"]; got != "Semantic tree for parser.py:\n\n- Parser (class_definition, L1-3)\n  - Parser.parse (function_definition, L2-3)\n- helper (function_definition, L6-7)\n" {
		t.Errorf("semantic tree output = %q", got)
	}
	if got := outputs["c2"]; got != "Source for Parser.parse (function_definition, L2-3):\n\n    def parse(self, text):\n        return text.split()" {
		t.Errorf("node source output = %q", got)
	}
	if got := outputs["c3"]; got != `No node found at path "Nope". Use get_semantic_tree to see available paths.` {
		t.Errorf("missing node output = %q", got)
	}
	if got := outputs["c4"]; got != "Saved 2 annotation(s)." {
		t.Errorf("save output = %q", got)
	}
	if got := outputs["c5"]; got != "No annotations provided." {
		t.Errorf("empty save output = %q", got)
	}
	if got := outputs["c6"]; got != "Unknown tool: delete_everything" {
		t.Errorf("unknown tool output = %q", got)
	}

	stored, err := p.Store().ForPath(ctx, "parser.py", "Parser")
	if err != nil || len(stored) != 1 || stored[0].Author != Author || stored[0].Body != "Tokenizes text." {
		t.Errorf("stored = %+v, %v", stored, err)
	}
}

func TestGenerateStopsAtIterationLimit(t *testing.T) {
	limit := 3
	p := newProject(t, &config.Config{MaxIterations: &limit})
	loop := reply(openai.FinishReasonToolCalls, "", call("c", "get_semantic_tree", "{}"))
	client := &scripted{responses: []openai.ChatCompletionResponse{loop, loop, loop, loop, loop}}

	res, err := New(client, p).Generate(context.Background(), Request{File: "parser.py"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(client.requests) != 3 || res.Iterations != 3 || res.Count != 0 {
		t.Errorf("requests = %d, result = %+v", len(client.requests), res)
	}
	if client.requests[0].Model != config.Default().EffectiveModel() {
		t.Errorf("default model not used: %s", client.requests[0].Model)
	}
}

func TestGenerateSingleElement(t *testing.T) {
	p := newProject(t, nil)
	client := &scripted{}
	if _, err := New(client, p).Generate(context.Background(), Request{File: "parser.py", SemanticPath: "Parser.parse"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(client.requests[0].Messages[0].Content, `"Parser.parse"`) {
		t.Errorf("single element prompt not used: %q", client.requests[0].Messages[0].Content)
	}
}

func TestGenerateErrors(t *testing.T) {
	ctx := context.Background()
	p := newProject(t, nil)

	if _, err := New(nil, p).Generate(ctx, Request{File: "parser.py"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("nil client err = %v, want ErrUnavailable", err)
	}
	client := &scripted{}
	if _, err := New(client, p).Generate(ctx, Request{File: "parser.py", SemanticPath: "Missing"}); !errors.Is(err, workspace.ErrNoSuchPath) {
		t.Errorf("missing path err = %v, want ErrNoSuchPath", err)
	}
	if len(client.requests) != 0 {
		t.Error("model must not be contacted for a missing path")
	}
	if _, err := New(client, p).Generate(ctx, Request{File: "big.txt"}); !errors.Is(err, workspace.ErrUnsupported) {
		t.Errorf("unsupported err = %v, want ErrUnsupported", err)
	}
	boom := errors.New("rate limited")
	if _, err := New(&scripted{err: boom}, p).Generate(ctx, Request{File: "parser.py"}); !errors.Is(err, boom) {
		t.Errorf("client err = %v, want wrapped %v", err, boom)
	}
	if _, err := NewClient("", ""); !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewClient without key err = %v", err)
	}
}

func TestFileContentTool(t *testing.T) {
	p := newProject(t, nil)
	tb := &toolbox{project: p}

	if got := tb.execute("get_file_content", `{"file_path":"../../etc/passwd"}`); got != "Error: path traversal not allowed" {
		t.Errorf("traversal output = %q", got)
	}
	if got := tb.execute("get_file_content", `{"file_path":"nope.py"}`); got != `Error: could not read file "nope.py"` {
		t.Errorf("missing output = %q", got)
	}
	got := tb.execute("get_file_content", `{"file_path":"big.txt"}`)
	if !strings.HasPrefix(got, "Content of big.txt:\n\n") || !strings.HasSuffix(got, "\n\n... (truncated)") {
		t.Errorf("truncated output has wrong framing")
	}
	body := strings.TrimSuffix(strings.TrimPrefix(got, "Content of big.txt:\n\n"), "\n\n... (truncated)")
	if n := len(body); n != maxFileChars {
		t.Errorf("kept %d characters, want %d", n, maxFileChars)
	}
	if got := tb.execute("get_node_source", `not json`); !strings.HasPrefix(got, "Error: invalid arguments") {
		t.Errorf("bad args output = %q", got)
	}
}
