package testcases

import (
	"context"
	"os"
	"testing"

	"github.com/cloudwego/eino-ext/components/model/openai"
)

// InitChatModel returns a live OpenAI-compatible model, or skips the test
// unless GRAINAGENT_RUN_LIVE_TESTS=1 and an API key are present.
func InitChatModel(t *testing.T) *openai.ChatModel {
	t.Helper()
	if os.Getenv("GRAINAGENT_RUN_LIVE_TESTS") != "1" {
		t.Skip("set GRAINAGENT_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY is empty")
		return nil
	}
	modelName := os.Getenv("OPENAI_MODEL")
	if modelName == "" {
		modelName = "gpt-4o"
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:  apiKey,
		Model:   modelName,
		BaseURL: baseURL,
	})
	if err != nil {
		t.Fatalf("failed to init chat model: %v", err)
		return nil
	}
	return chatModel
}
