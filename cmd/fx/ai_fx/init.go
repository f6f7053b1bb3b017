package ai_fx

import (
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/fx"

	"kindred/pkg/utils"
)

var Module = fx.Provide(ProvideAIClient)

// ProvideAIClient builds the configured model provider. A missing API key is
// not fatal: the client comes up nil and embedding/narrative features
// degrade, which the services are built to tolerate.
func ProvideAIClient() (utils.AIClientInterface, error) {
	provider := getEnvWithDefault("AI_PROVIDER", "openai")

	switch strings.ToLower(provider) {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Printf("OPENAI_API_KEY not set; AI features disabled")
			return nil, nil
		}
		model := getEnvWithDefault("OPENAI_CHAT_MODEL", "")
		return utils.NewOpenAIClient(apiKey, model), nil
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Printf("GEMINI_API_KEY not set; AI features disabled")
			return nil, nil
		}
		model := getEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash")
		client, err := utils.NewGeminiClient(apiKey, model)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s. Use 'openai' or 'gemini'", provider)
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
