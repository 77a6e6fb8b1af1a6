package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vegan-agent-be/pkg/llm"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
	defaults  llm.Options
}

// Ensure OllamaProvider implements VisionProvider
var _ llm.VisionProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string, temperature float64, timeout time.Duration) *OllamaProvider {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client: &http.Client{
			Timeout: timeout,
		},
		defaults: llm.Options{Temperature: temperature},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []ollamaTool    `json:"tools,omitempty"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Images    []string         `json:"images,omitempty"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
	ToolName  string           `json:"tool_name,omitempty"`
}

type ollamaTool struct {
	Type     string             `json:"type"`
	Function ollamaToolFunction `json:"function"`
}

type ollamaToolFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *llm.Schema `json:"parameters,omitempty"`
}

type ollamaToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// --- Interface Implementation ---

func (o *OllamaProvider) Name() string {
	return "ollama"
}

func (o *OllamaProvider) Analyze(ctx context.Context, req llm.VisionRequest, opts ...llm.Option) (*llm.VisionResponse, error) {
	if req.WebSearch {
		return nil, fmt.Errorf("ollama web search: %w", llm.ErrUnsupported)
	}

	// 1. Process Options
	options := llm.ApplyOptions(o.defaults, opts...)

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	// 2. First user message carries the image
	user := ollamaMessage{Role: "user", Content: req.Instruction}
	if req.Image != nil && len(req.Image.Data) > 0 {
		user.Images = []string{base64.StdEncoding.EncodeToString(req.Image.Data)}
	}

	payload := ollamaChatRequest{
		Model:    model,
		Messages: []ollamaMessage{user},
		Tools:    toTools(req.Tools),
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		payload.Options.NumPredict = options.MaxTokens
	}

	// 3. Chat, answering tool calls until the model stops asking
	out := &llm.VisionResponse{Model: model}
	for round := 0; ; round++ {
		resp, err := o.chat(ctx, payload)
		if err != nil {
			return nil, err
		}

		calls := resp.Message.ToolCalls
		if len(calls) == 0 || round >= options.MaxToolRounds {
			out.Text = strings.TrimSpace(resp.Message.Content)
			return out, nil
		}

		payload.Messages = append(payload.Messages, resp.Message)
		for _, call := range calls {
			out.ToolCalls++
			payload.Messages = append(payload.Messages, ollamaMessage{
				Role:     "tool",
				Content:  invoke(ctx, req.Tools, call),
				ToolName: call.Function.Name,
			})
		}
	}
}

func (o *OllamaProvider) chat(ctx context.Context, payload ollamaChatRequest) (*ollamaChatResponse, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &chatResp, nil
}

func toTools(tools []llm.Tool) []ollamaTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]ollamaTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, ollamaTool{
			Type: "function",
			Function: ollamaToolFunction{
				Name:        t.Declaration.Name,
				Description: t.Declaration.Description,
				Parameters:  t.Declaration.Parameters,
			},
		})
	}
	return out
}

func invoke(ctx context.Context, tools []llm.Tool, call ollamaToolCall) string {
	var result map[string]any
	if t, ok := llm.FindTool(tools, call.Function.Name); ok {
		args := call.Function.Arguments
		if args == nil {
			args = map[string]any{}
		}
		result = t.Invoke(ctx, args)
	} else {
		result = llm.UnknownToolResult(call.Function.Name)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return `{"error":"result is not serializable"}`
	}
	return string(data)
}
