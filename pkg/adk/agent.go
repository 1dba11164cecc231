package adk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// MaxToolSteps bounds the tool calls the model may chain for one user turn.
const MaxToolSteps = 8

// ErrTooManyToolCalls is returned when the model keeps calling tools past MaxToolSteps.
var ErrTooManyToolCalls = errors.New("agent exceeded tool call limit")

// Tool represents an executable action for the agent
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error)
	Schema() map[string]interface{} // JSON schema for arguments
}

// ToolCall represents a request from the LLM to execute a tool
type ToolCall struct {
	ToolName string
	Args     map[string]interface{}
}

// Message represents a chat message
type Message struct {
	Role    string // "user", "model", "system", "function"
	Content string
}

// LLMProvider defines the interface for different AI models
type LLMProvider interface {
	GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Agent is the compliance assistant: a chat loop that lets the model call
// registered tools until it answers in text.
type Agent struct {
	llm          LLMProvider
	tools        map[string]Tool
	history      []Message
	systemPrompt string
	log          *slog.Logger
}

// NewAgent creates a new agent with the given LLM provider
func NewAgent(llm LLMProvider, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		llm:   llm,
		tools: make(map[string]Tool),
		log:   logger,
	}
}

// RegisterTool adds a tool to the agent's registry
func (a *Agent) RegisterTool(t Tool) {
	a.tools[t.Name()] = t
}

// SetSystemPrompt sets the instructions sent ahead of the conversation.
func (a *Agent) SetSystemPrompt(prompt string) {
	a.systemPrompt = prompt
}

// History returns the conversation so far, without the system prompt.
func (a *Agent) History() []Message {
	return append([]Message(nil), a.history...)
}

func (a *Agent) toolList() []Tool {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, a.tools[name])
	}
	return out
}

func (a *Agent) prompt() []Message {
	if a.systemPrompt == "" {
		return a.history
	}
	return append([]Message{{Role: "system", Content: a.systemPrompt}}, a.history...)
}

// Chat sends a message to the agent and returns the response
func (a *Agent) Chat(ctx context.Context, input string, progress func(string)) (string, error) {
	if progress == nil {
		progress = func(string) {}
	}
	a.history = append(a.history, Message{Role: "user", Content: input})
	tools := a.toolList()

	for step := 0; step < MaxToolSteps; step++ {
		respText, toolCall, err := a.llm.GenerateResponse(ctx, a.prompt(), tools)
		if err != nil {
			return "", err
		}

		if toolCall == nil {
			a.history = append(a.history, Message{Role: "model", Content: respText})
			return respText, nil
		}

		a.log.Debug("executing tool", "tool", toolCall.ToolName, "args", toolCall.Args)
		progress(fmt.Sprintf("running %s", toolCall.ToolName))

		a.history = append(a.history, Message{
			Role:    "model",
			Content: fmt.Sprintf("I will call tool %s with args %v", toolCall.ToolName, toolCall.Args),
		})

		tool, exists := a.tools[toolCall.ToolName]
		if !exists {
			a.history = append(a.history, Message{Role: "function", Content: fmt.Sprintf("Error: Tool %s not found", toolCall.ToolName)})
			continue
		}

		result, err := tool.Execute(ctx, toolCall.Args, progress)
		if err != nil {
			result = fmt.Sprintf("Error executing tool: %v", err)
		}

		a.history = append(a.history, Message{
			Role:    "function",
			Content: fmt.Sprintf("Tool %s returned: %s", toolCall.ToolName, result),
		})
	}
	return "", ErrTooManyToolCalls
}
