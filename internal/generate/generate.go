// Package generate drafts annotations with a tool-calling chat model. The
// model explores the file through a small tool set and proposes notes, which
// are stored once the conversation ends.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/DeusData/syl/internal/workspace"
)

// Author is recorded on every generated annotation.
const Author = "assistant"

const maxTokens = 4096

// ErrUnavailable is returned when no API key is configured.
var ErrUnavailable = errors.New("generation unavailable: OPENAI_API_KEY is not set")

// ChatClient is the part of the OpenAI client the generator needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient returns an OpenAI-compatible client. baseURL may be empty.
func NewClient(apiKey, baseURL string) (ChatClient, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg), nil
}

// Generator runs generation requests for one project.
type Generator struct {
	client  ChatClient
	project *workspace.Project
}

// New returns a generator. client may be nil, in which case Generate
// returns ErrUnavailable.
func New(client ChatClient, project *workspace.Project) *Generator {
	return &Generator{client: client, project: project}
}

// Available reports whether a chat client is configured.
func (g *Generator) Available() bool {
	return g.client != nil
}

// Request selects what to annotate.
type Request struct {
	File         string `json:"file"`
	Model        string `json:"model"`
	SemanticPath string `json:"semanticPath,omitempty"`
}

// Result summarizes a finished generation.
type Result struct {
	Count       int     `json:"count"`
	Iterations  int     `json:"iterations"`
	Annotations []Entry `json:"annotations"`
}

// Generate runs the tool loop for req and stores every proposed annotation.
// A SemanticPath that does not exist in the file fails with
// workspace.ErrNoSuchPath before the model is contacted.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if g.client == nil {
		return nil, ErrUnavailable
	}
	a, err := g.project.Analyze(ctx, req.File)
	if err != nil {
		return nil, err
	}
	if req.SemanticPath != "" {
		if _, ok := a.Result.Lookup(req.SemanticPath); !ok {
			return nil, fmt.Errorf("%w: %q in %s", workspace.ErrNoSuchPath, req.SemanticPath, req.File)
		}
	}
	model := req.Model
	if model == "" {
		model = g.project.Config().EffectiveModel()
	}

	system := fileWidePrompt(req.File)
	if req.SemanticPath != "" {
		system = singleElementPrompt(req.File, req.SemanticPath)
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: userMessage},
	}
	tb := &toolbox{project: g.project, file: req.File, content: a.Content, result: a.Result}

	maxIterations := g.project.Config().EffectiveMaxIterations()
	iterations := 0
	for iterations < maxIterations {
		iterations++
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:               model,
			MaxCompletionTokens: maxTokens,
			Messages:            messages,
			Tools:               toolDefinitions,
		})
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("chat completion: no choices returned")
		}
		choice := resp.Choices[0]
		msg := choice.Message
		msg.Role = openai.ChatMessageRoleAssistant
		messages = append(messages, msg)
		slog.Debug("generate.iteration", "file", req.File, "n", iterations,
			"finish", choice.FinishReason, "tool_calls", len(msg.ToolCalls))

		if len(msg.ToolCalls) == 0 {
			break
		}
		for _, call := range msg.ToolCalls {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    tb.execute(call.Function.Name, call.Function.Arguments),
				ToolCallID: call.ID,
			})
		}
	}

	out := &Result{Iterations: iterations, Annotations: []Entry{}}
	for _, e := range tb.saved {
		if e.SemanticPath == "" || strings.TrimSpace(e.Body) == "" {
			slog.Warn("generate.skip", "file", req.File, "path", e.SemanticPath, "reason", "empty")
			continue
		}
		if _, err := g.project.Store().Add(ctx, req.File, e.SemanticPath, e.Body, Author); err != nil {
			return out, fmt.Errorf("save annotation: %w", err)
		}
		out.Annotations = append(out.Annotations, e)
	}
	out.Count = len(out.Annotations)
	slog.Info("generate.done", "file", req.File, "annotations", out.Count, "iterations", iterations)
	return out, nil
}
