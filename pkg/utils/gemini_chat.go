package utils

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/api/option"
)

// GeminiClient implements AIClientInterface on Google's Gemini models.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(apiKey, model string) (AIClientInterface, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) GenerateNarrative(ctx context.Context, system string, user string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(0.7)
	m.SetMaxOutputTokens(200)

	resp, err := m.GenerateContent(ctx, genai.Text(system+"\n\n"+user))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrAIUnavailable
	}

	text := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if text == "" {
		return "", ErrAIUnavailable
	}
	return text, nil
}

// GetEmbedding approximates an embedding with a hash-based projection. The
// free Gemini tier has no dedicated embedding endpoint; vectors produced
// here are only comparable with each other.
func (c *GeminiClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	return c.textToVector(text), nil
}

func (c *GeminiClient) textToVector(text string) pgvector.Vector {
	const dimensions = 1536

	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	vector := make([]float32, dimensions)

	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		seed := h.Sum32()
		for i := 0; i < dimensions; i++ {
			vector[i] += float32(math.Sin(float64(seed+uint32(i))) * 0.1)
		}
	}

	var magnitude float64
	for _, v := range vector {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / magnitude)
		}
	}

	return pgvector.NewVector(vector)
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
