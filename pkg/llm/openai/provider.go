package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vegan-agent-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client   *goopenai.Client
	model    string
	defaults llm.Options
}

var _ llm.VisionProvider = &OpenAIProvider{}

// NewOpenAIProvider builds a provider. baseURL is optional and points the
// client at a compatible endpoint.
func NewOpenAIProvider(apiKey, model, baseURL string, temperature float64) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client:   goopenai.NewClientWithConfig(cfg),
		model:    model,
		defaults: llm.Options{Temperature: temperature},
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Analyze(ctx context.Context, req llm.VisionRequest, opts ...llm.Option) (*llm.VisionResponse, error) {
	if req.WebSearch {
		return nil, fmt.Errorf("openai web search: %w", llm.ErrUnsupported)
	}

	o := llm.ApplyOptions(p.defaults, opts...)
	model := p.model
	if o.Model != "" {
		model = o.Model
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    []goopenai.ChatCompletionMessage{userMessage(req)},
		Temperature: float32(o.Temperature),
		MaxTokens:   o.MaxTokens,
		Tools:       toTools(req.Tools),
	}

	out := &llm.VisionResponse{Model: model}
	for round := 0; ; round++ {
		resp, err := p.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return nil, fmt.Errorf("openai chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("openai returned no choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 || round >= o.MaxToolRounds {
			out.Text = strings.TrimSpace(msg.Content)
			return out, nil
		}

		chatReq.Messages = append(chatReq.Messages, msg)
		for _, call := range msg.ToolCalls {
			out.ToolCalls++
			chatReq.Messages = append(chatReq.Messages, goopenai.ChatCompletionMessage{
				Role:       goopenai.ChatMessageRoleTool,
				Content:    invoke(ctx, req.Tools, call),
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}
}

func userMessage(req llm.VisionRequest) goopenai.ChatCompletionMessage {
	if req.Image == nil || len(req.Image.Data) == 0 {
		return goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.Instruction}
	}
	return goopenai.ChatCompletionMessage{
		Role: goopenai.ChatMessageRoleUser,
		MultiContent: []goopenai.ChatMessagePart{
			{Type: goopenai.ChatMessagePartTypeText, Text: req.Instruction},
			{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    dataURI(req.Image),
					Detail: goopenai.ImageURLDetailAuto,
				},
			},
		},
	}
}

func dataURI(img *llm.Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func toTools(tools []llm.Tool) []goopenai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]goopenai.Tool, 0, len(tools))
	for _, t := range tools {
		def := &goopenai.FunctionDefinition{
			Name:        t.Declaration.Name,
			Description: t.Declaration.Description,
		}
		if t.Declaration.Parameters != nil {
			def.Parameters = t.Declaration.Parameters
		}
		out = append(out, goopenai.Tool{Type: goopenai.ToolTypeFunction, Function: def})
	}
	return out
}

// invoke runs the requested tool and returns its JSON result as the tool
// message content.
func invoke(ctx context.Context, tools []llm.Tool, call goopenai.ToolCall) string {
	var result map[string]any
	t, ok := llm.FindTool(tools, call.Function.Name)
	if !ok {
		result = llm.UnknownToolResult(call.Function.Name)
	} else {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				result = map[string]any{"error": "arguments are not valid JSON: " + err.Error()}
			}
		}
		if result == nil {
			result = t.Invoke(ctx, args)
		}
	}

	data, err := json.Marshal(result)
	if err != nil {
		return `{"error":"result is not serializable"}`
	}
	return string(data)
}
