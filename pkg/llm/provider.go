package llm

import (
	"context"
	"errors"
)

// ErrUnsupported is returned when a provider lacks a requested capability
// (for example web search on a local model).
var ErrUnsupported = errors.New("capability not supported by provider")

// DefaultMaxToolRounds bounds how many function-call round trips a provider
// runs before returning the text it has.
const DefaultMaxToolRounds = 4

// Image is an uploaded picture passed opaquely to the model.
type Image struct {
	Data     []byte
	MIMEType string
}

// Schema is a provider-agnostic JSON schema subset for tool parameters.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// FunctionDeclaration describes a local function the model may call.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// ToolHandler executes a model-requested function call.
type ToolHandler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Tool is a declaration plus the code that answers it.
type Tool struct {
	Declaration FunctionDeclaration
	Handler     ToolHandler
}

// Invoke runs the handler. Handler errors are turned into an error payload
// so the model sees them instead of the request failing.
func (t Tool) Invoke(ctx context.Context, args map[string]any) map[string]any {
	if t.Handler == nil {
		return map[string]any{"error": "tool has no handler"}
	}
	res, err := t.Handler(ctx, args)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return res
}

// FindTool returns the tool registered under name.
func FindTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Declaration.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// UnknownToolResult is sent back when the model calls a function nobody registered.
func UnknownToolResult(name string) map[string]any {
	return map[string]any{"error": "unknown function " + name}
}

// VisionRequest is one instruction plus an optional image. Tools and
// WebSearch are mutually exclusive on providers that cannot mix them.
type VisionRequest struct {
	Instruction string
	Image       *Image
	Tools       []Tool
	WebSearch   bool
}

// Citation is a web source the model grounded its answer on.
type Citation struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri"`
}

type VisionResponse struct {
	Text      string
	Citations []Citation
	ToolCalls int
	Model     string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature   float64
	MaxTokens     int
	Model         string // Override default model
	MaxToolRounds int
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithMaxToolRounds(n int) Option {
	return func(o *Options) {
		o.MaxToolRounds = n
	}
}

// ApplyOptions layers opts over defaults.
func ApplyOptions(defaults Options, opts ...Option) Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxToolRounds <= 0 {
		o.MaxToolRounds = DefaultMaxToolRounds
	}
	return o
}

// VisionProvider defines the contract for any multimodal model backend.
type VisionProvider interface {
	// Name identifies the backend ("gemini", "openai", "ollama").
	Name() string

	// Analyze sends one request and returns the model's final text.
	Analyze(ctx context.Context, req VisionRequest, opts ...Option) (*VisionResponse, error)
}
