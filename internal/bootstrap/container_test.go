package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vegan-agent-be/internal/config"
	"vegan-agent-be/internal/dto"
	"vegan-agent-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App:        config.AppConfig{Port: "0", MaxUploadMB: 1, CorsAllowedOrigins: "*"},
		Keys:       config.KeyConfig{CredentialName: "VEGAN_TEST_UNSET_KEY", SecretsFile: filepath.Join(t.TempDir(), "secrets.toml")},
		Ai:         config.AIConfig{LLMProvider: "gemini", LLMModel: "gemini-1.5-flash", Timeout: time.Second, MaxToolRounds: 2, ToolLookupEnabled: true},
		History:    config.HistoryConfig{Size: 5, Store: "memory", SessionTTL: time.Minute},
		Ingredient: config.IngredientConfig{UnknownPolicy: "omit"},
		Events:     config.EventsConfig{Topic: "scan.completed"},
	}
}

func TestNewContainer(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t), logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.ScanController)
	assert.NotNil(t, c.SessionController)
	assert.NotNil(t, c.IngredientController)
	assert.NotNil(t, c.StatsController)
	assert.NotNil(t, c.ConsumerService)
	assert.True(t, c.Resolver.Required())
}

func TestNewContainerMissingKeyHalts(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t), logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	resp := c.ScanService.Scan(context.Background(), "s1", &dto.ScanRequest{
		Image:    []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
		Filename: "label.png",
	})
	assert.Equal(t, dto.ScanStatusCredentialError, resp.Status)
	assert.Contains(t, resp.Error, "VEGAN_TEST_UNSET_KEY")
}

func TestNewContainerBadPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ingredient.UnknownPolicy = "guess"

	_, err := NewContainer(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}
