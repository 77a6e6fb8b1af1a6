package service

import (
	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/metrics"
	"vegan-agent-be/pkg/ingredient"
	"vegan-agent-be/pkg/llm"
)

type IIngredientService interface {
	Lookup(req *dto.LookupRequest) (*dto.LookupResponse, error)
	Table() *dto.TableResponse
	ToolDeclaration() llm.FunctionDeclaration
}

type ingredientService struct {
	matcher *ingredient.Matcher
}

func NewIngredientService(matcher *ingredient.Matcher) IIngredientService {
	return &ingredientService{matcher: matcher}
}

// Lookup matches a list, or label text split into a list, against the
// knowledge table. An explicit policy overrides the configured one.
func (s *ingredientService) Lookup(req *dto.LookupRequest) (*dto.LookupResponse, error) {
	policy := s.matcher.Policy()
	if req.Policy != "" {
		p, err := ingredient.ParseUnknownPolicy(req.Policy)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	items := req.Ingredients
	if len(items) == 0 {
		items = ingredient.SplitIngredients(req.Text)
	}

	results := s.matcher.MatchWith(items, policy)
	for _, r := range results {
		metrics.IngredientMatches.WithLabelValues(string(r.Status)).Inc()
	}
	return &dto.LookupResponse{Policy: string(policy), Results: results}, nil
}

func (s *ingredientService) Table() *dto.TableResponse {
	entries := s.matcher.Table().Entries()
	return &dto.TableResponse{Count: len(entries), Entries: entries}
}

func (s *ingredientService) ToolDeclaration() llm.FunctionDeclaration {
	return ingredient.Declaration()
}
