package dto

import (
	"vegan-agent-be/pkg/ingredient"
)

// LookupRequest takes either a list of ingredients or raw label text.
type LookupRequest struct {
	Ingredients []string `json:"ingredients" validate:"required_without=Text,max=200"`
	Text        string   `json:"text" validate:"required_without=Ingredients,max=10000"`
	Policy      string   `json:"policy" validate:"omitempty,oneof=omit report"`
}

type LookupResponse struct {
	Policy  string              `json:"policy"`
	Results []ingredient.Result `json:"results"`
}

type TableResponse struct {
	Count   int                `json:"count"`
	Entries []ingredient.Entry `json:"entries"`
}

type StatsResponse struct {
	Total      int            `json:"total"`
	ByVerdict  map[string]int `json:"by_verdict"`
	ByStatus   map[string]int `json:"by_status"`
	ByProvider map[string]int `json:"by_provider"`
	ToolCalls  int            `json:"tool_calls"`
	Since      string         `json:"since"`
}
