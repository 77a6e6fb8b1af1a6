package ingredient

import (
	"context"
	"fmt"
	"strings"

	"vegan-agent-be/pkg/llm"
)

// ToolName is the function name the model calls to consult the table.
const ToolName = "lookup_ingredients"

// Declaration describes the lookup function to a remote model.
func Declaration() llm.FunctionDeclaration {
	return llm.FunctionDeclaration{
		Name: ToolName,
		Description: "Checks ingredient names against a curated table of animal-derived " +
			"and plant-derived ingredients. Returns, per ingredient, whether it is vegan " +
			"and where it comes from.",
		Parameters: &llm.Schema{
			Type: llm.TypeObject,
			Properties: map[string]*llm.Schema{
				"ingredients": {
					Type:        llm.TypeArray,
					Description: "Ingredient names exactly as printed on the label.",
					Items:       &llm.Schema{Type: llm.TypeString},
				},
			},
			Required: []string{"ingredients"},
		},
	}
}

// Tool exposes a matcher as a model-callable function.
func Tool(m *Matcher) llm.Tool {
	return llm.Tool{
		Declaration: Declaration(),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			items, err := ParseToolArgs(args)
			if err != nil {
				return nil, err
			}
			results := m.Match(items)
			out := make([]any, 0, len(results))
			for _, r := range results {
				row := map[string]any{
					"ingredient": r.Ingredient,
					"status":     string(r.Status),
					"is_vegan":   r.IsVegan,
					"source":     r.Source,
				}
				if r.Risk != "" {
					row["risk_level"] = string(r.Risk)
				}
				out = append(out, row)
			}
			return map[string]any{"results": out}, nil
		},
	}
}

// ParseToolArgs accepts {"ingredients": [..]} or a comma separated string.
func ParseToolArgs(args map[string]any) ([]string, error) {
	raw, ok := args["ingredients"]
	if !ok {
		return nil, fmt.Errorf("missing argument %q", "ingredients")
	}
	switch v := raw.(type) {
	case []any:
		items := make([]string, 0, len(v))
		for i, x := range v {
			s, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("ingredients[%d] is %T, want string", i, x)
			}
			items = append(items, s)
		}
		return items, nil
	case []string:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return SplitIngredients(v), nil
	default:
		return nil, fmt.Errorf("ingredients is %T, want array of strings", raw)
	}
}
