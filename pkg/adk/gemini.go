package adk

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey string, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = defaultGeminiModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiProvider{client: client, model: model}, nil
}

func (g *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	iter := g.client.ListModels(ctx)
	var names []string
	for {
		m, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.Contains(m.Name, "gemini") {
			// m.Name is like "models/gemini-pro"
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
	}
	return names, nil
}

// FunctionDeclarations converts registered tools into Gemini declarations.
func FunctionDeclarations(tools []Tool) []*genai.FunctionDeclaration {
	var decls []*genai.FunctionDeclaration
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  toGenaiSchema(t.Schema()),
		})
	}
	return decls
}

// toGenaiSchema converts a JSON schema fragment as returned by Tool.Schema.
func toGenaiSchema(s map[string]interface{}) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{Type: schemaType(s["type"])}
	if d, ok := s["description"].(string); ok {
		out.Description = d
	}
	if props, ok := s["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if ps, ok := p.(map[string]interface{}); ok {
				out.Properties[name] = toGenaiSchema(ps)
			}
		}
	}
	if items, ok := s["items"].(map[string]interface{}); ok {
		out.Items = toGenaiSchema(items)
	}
	switch req := s["required"].(type) {
	case []string:
		out.Required = req
	case []interface{}:
		for _, r := range req {
			if name, ok := r.(string); ok {
				out.Required = append(out.Required, name)
			}
		}
	}
	return out
}

func schemaType(v interface{}) genai.Type {
	s, _ := v.(string)
	switch s {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}

// toContents splits history into the system instruction and chat contents.
// Function results are sent back as user turns.
func toContents(history []Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	var cs []*genai.Content
	for _, msg := range history {
		if msg.Role == "system" {
			system = &genai.Content{Parts: []genai.Part{genai.Text(msg.Content)}}
			continue
		}
		role := "user"
		if msg.Role == "model" {
			role = "model"
		}
		cs = append(cs, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}
	return system, cs
}

func (g *GeminiProvider) GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error) {
	if decls := FunctionDeclarations(tools); len(decls) > 0 {
		g.model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	system, cs := toContents(history)
	g.model.SystemInstruction = system
	if len(cs) == 0 {
		return "", nil, fmt.Errorf("empty history")
	}

	session := g.model.StartChat()
	session.History = cs[:len(cs)-1]

	resp, err := session.SendMessage(ctx, cs[len(cs)-1].Parts...)
	if err != nil {
		return "", nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil, fmt.Errorf("no response candidates")
	}

	var responseText string
	var toolCall *ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.FunctionCall:
			toolCall = &ToolCall{ToolName: p.Name, Args: p.Args}
		case genai.Text:
			responseText += string(p)
		}
	}

	if toolCall != nil {
		return responseText, toolCall, nil
	}
	if responseText == "" {
		return "", nil, fmt.Errorf("no response")
	}
	return responseText, nil, nil
}

func (g *GeminiProvider) Close() {
	g.client.Close()
}
