package utils

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// AIClientInterface is the single seam to the external model provider:
// text embeddings for new thoughts and short free-text narratives for the
// explanation cascade. Callers must tolerate a nil client (no credential
// configured) and treat any error as "provider unavailable".
type AIClientInterface interface {
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	GenerateNarrative(ctx context.Context, system string, user string) (string, error)
}
