package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVisionProvider(t *testing.T) {
	tests := []struct {
		kind     string
		apiKey   string
		wantName string
		wantErr  bool
	}{
		{kind: "ollama", wantName: "ollama"},
		{kind: "openai", apiKey: "sk-test", wantName: "openai"},
		{kind: "openai", wantErr: true},
		{kind: "gemini", wantErr: true},
		{kind: "claude", apiKey: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			p, err := NewVisionProvider(context.Background(), tt.kind, tt.apiKey, Settings{Model: "m"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
