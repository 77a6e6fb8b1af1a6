package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vegan-agent-be/pkg/llm"

	"google.golang.org/genai"
)

type GeminiProvider struct {
	client   *genai.Client
	model    string
	defaults llm.Options
}

// Ensure GeminiProvider implements VisionProvider
var _ llm.VisionProvider = &GeminiProvider{}

func NewGeminiProvider(ctx context.Context, apiKey, model string, temperature float64) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{
		client:   client,
		model:    model,
		defaults: llm.Options{Temperature: temperature},
	}, nil
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Analyze(ctx context.Context, req llm.VisionRequest, opts ...llm.Option) (*llm.VisionResponse, error) {
	o := llm.ApplyOptions(g.defaults, opts...)
	model := g.model
	if o.Model != "" {
		model = o.Model
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(userParts(req), genai.RoleUser),
	}
	config := generateConfig(req, o)

	out := &llm.VisionResponse{Model: model}
	for round := 0; ; round++ {
		resp, err := g.client.Models.GenerateContent(ctx, model, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini generate: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, errors.New("gemini returned no candidates")
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 || round >= o.MaxToolRounds {
			out.Text = strings.TrimSpace(resp.Text())
			out.Citations = citations(resp)
			return out, nil
		}

		contents = append(contents, resp.Candidates[0].Content)
		replies := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			out.ToolCalls++
			replies = append(replies, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       call.ID,
					Name:     call.Name,
					Response: invoke(ctx, req.Tools, call),
				},
			})
		}
		contents = append(contents, genai.NewContentFromParts(replies, genai.RoleUser))
	}
}

func userParts(req llm.VisionRequest) []*genai.Part {
	parts := make([]*genai.Part, 0, 2)
	if req.Image != nil && len(req.Image.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	return append(parts, genai.NewPartFromText(req.Instruction))
}

// generateConfig attaches either the function tools or Google Search.
// The API rejects requests that mix the two.
func generateConfig(req llm.VisionRequest, o llm.Options) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(o.Temperature)),
	}
	if o.MaxTokens > 0 {
		config.MaxOutputTokens = int32(o.MaxTokens)
	}

	switch {
	case req.WebSearch:
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	case len(req.Tools) > 0:
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Declaration.Name,
				Description: t.Declaration.Description,
				Parameters:  toSchema(t.Declaration.Parameters),
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return config
}

func invoke(ctx context.Context, tools []llm.Tool, call *genai.FunctionCall) map[string]any {
	t, ok := llm.FindTool(tools, call.Name)
	if !ok {
		return llm.UnknownToolResult(call.Name)
	}
	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	return t.Invoke(ctx, args)
}

func toSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        schemaType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toSchema(p)
		}
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case llm.TypeObject:
		return genai.TypeObject
	case llm.TypeArray:
		return genai.TypeArray
	case llm.TypeNumber:
		return genai.TypeNumber
	case llm.TypeInteger:
		return genai.TypeInteger
	case llm.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

// citations collects the web sources from grounding metadata, deduplicated by URI.
func citations(resp *genai.GenerateContentResponse) []llm.Citation {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []llm.Citation
	seen := make(map[string]bool)
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		out = append(out, llm.Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}
