package dto

import (
	"vegan-agent-be/pkg/history"
)

type SetAPIKeyRequest struct {
	APIKey string `json:"api_key" validate:"required,min=8,max=256"`
}

type HistoryResponse struct {
	Size    int             `json:"size"`
	Entries []history.Entry `json:"entries"`
}

// CredentialStatusResponse tells the UI whether to show the key input.
type CredentialStatusResponse struct {
	Provider      string `json:"provider"`
	Name          string `json:"name"`
	Required      bool   `json:"required"`
	Found         bool   `json:"found"`
	Source        string `json:"source,omitempty"`
	LooksValid    bool   `json:"looks_valid"`
	Prefix        string `json:"prefix,omitempty"`
	Message       string `json:"message"`
	NeedsKeyInput bool   `json:"needs_key_input"`
}
