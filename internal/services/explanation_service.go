package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"kindred/internal/models/db_models"
	"kindred/internal/repositories"
	"kindred/pkg/utils"
)

const (
	// topPairCount bounds how many cross-user thought pairs feed the dual
	// narrative prompt.
	topPairCount = 4
	// summaryRuneLimit truncates each thought before prompting; summaries
	// here are plain truncation, not model-generated.
	summaryRuneLimit = 160
)

type ExplanationServiceInterface interface {
	Explain(ctx context.Context, requesterID, candidateID uuid.UUID) (string, error)
}

type ExplanationService struct {
	userRepo    repositories.UserRepositoryInterface
	tagRepo     repositories.TagRepositoryInterface
	thoughtRepo repositories.ThoughtRepositoryInterface
	aiClient    utils.AIClientInterface // nil when no credential is configured
}

func NewExplanationService(
	userRepo repositories.UserRepositoryInterface,
	tagRepo repositories.TagRepositoryInterface,
	thoughtRepo repositories.ThoughtRepositoryInterface,
	aiClient utils.AIClientInterface,
) ExplanationServiceInterface {
	return &ExplanationService{
		userRepo:    userRepo,
		tagRepo:     tagRepo,
		thoughtRepo: thoughtRepo,
		aiClient:    aiClient,
	}
}

// explanationStrategy attempts one tier of the cascade. A false result means
// the tier could not produce text and the next tier should run.
type explanationStrategy func(ctx context.Context, requesterID uuid.UUID, candidate *db_models.User) (string, bool)

// Explain produces a human-readable rationale for recommending the candidate
// to the requester. Strategies run in strict order: dual narrative, single
// narrative, then the deterministic tag template, which cannot fail. Only an
// unknown candidate id is an error.
func (e *ExplanationService) Explain(ctx context.Context, requesterID, candidateID uuid.UUID) (string, error) {
	candidate, err := e.userRepo.FindByID(ctx, candidateID)
	if err != nil {
		log.Printf("Error loading candidate for explanation: %v", err)
		return "", utils.ErrDatabaseError
	}
	if candidate == nil {
		return "", utils.ErrUserNotFound
	}

	strategies := []explanationStrategy{
		e.dualNarrative,
		e.singleNarrative,
	}
	for _, strategy := range strategies {
		if text, ok := strategy(ctx, requesterID, candidate); ok {
			return text, nil
		}
	}
	return e.tagNarrative(ctx, requesterID, candidate), nil
}

// thoughtPair is one (requester thought, candidate thought) combination
// scored by cosine similarity.
type thoughtPair struct {
	requesterText string
	candidateText string
	similarity    float64
}

// topThoughtPairs scores the full cross product of both users' embedded
// thoughts and returns the n most similar pairs. O(n*m), fine because users
// have a handful of thoughts each.
func topThoughtPairs(requester, candidate repositories.ThoughtEmbeddings, n int) []thoughtPair {
	pairs := make([]thoughtPair, 0, len(requester.Vectors)*len(candidate.Vectors))
	for i, reqVec := range requester.Vectors {
		for j, candVec := range candidate.Vectors {
			pairs = append(pairs, thoughtPair{
				requesterText: requester.Texts[i],
				candidateText: candidate.Texts[j],
				similarity:    CosineSimilarity(reqVec, candVec),
			})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].similarity > pairs[j].similarity
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// summarizeTexts builds a truncation-based summary: each distinct text is
// clipped to summaryRuneLimit runes and joined.
func summarizeTexts(texts []string) string {
	seen := make(map[string]struct{}, len(texts))
	parts := make([]string, 0, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		runes := []rune(text)
		if len(runes) > summaryRuneLimit {
			text = string(runes[:summaryRuneLimit]) + "..."
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "; ")
}

const narrativeSystemPrompt = "You write warm, concise introductions for a people-discovery feed. " +
	"Respond with 80 to 100 words of plain prose, no lists and no headings."

func (e *ExplanationService) dualNarrative(ctx context.Context, requesterID uuid.UUID, candidate *db_models.User) (string, bool) {
	if e.aiClient == nil {
		return "", false
	}

	requesterThoughts, err := e.thoughtRepo.AllEmbeddings(ctx, requesterID)
	if err != nil {
		log.Printf("Error loading requester embeddings: %v", err)
		return "", false
	}
	candidateThoughts, err := e.thoughtRepo.AllEmbeddings(ctx, candidate.ID)
	if err != nil {
		log.Printf("Error loading candidate embeddings: %v", err)
		return "", false
	}

	pairs := topThoughtPairs(requesterThoughts, candidateThoughts, topPairCount)
	if len(pairs) == 0 {
		return "", false
	}

	requesterTexts := make([]string, 0, len(pairs))
	candidateTexts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		requesterTexts = append(requesterTexts, pair.requesterText)
		candidateTexts = append(candidateTexts, pair.candidateText)
	}

	name := candidate.DisplayName()
	prompt := fmt.Sprintf(
		"Write a two-part introduction for %s. First half: describe %s based on these thoughts they shared: %s. "+
			"Second half: address the reader directly in second person about the ground they share with %s, "+
			"based on the reader's own thoughts: %s.",
		name, name, summarizeTexts(candidateTexts), name, summarizeTexts(requesterTexts))

	text, err := e.aiClient.GenerateNarrative(ctx, narrativeSystemPrompt, prompt)
	if err != nil {
		log.Printf("Dual narrative generation failed: %v", err)
		return "", false
	}
	return text, true
}

func (e *ExplanationService) singleNarrative(ctx context.Context, requesterID uuid.UUID, candidate *db_models.User) (string, bool) {
	if e.aiClient == nil {
		return "", false
	}

	candidateThoughts, err := e.thoughtRepo.AllEmbeddings(ctx, candidate.ID)
	if err != nil {
		log.Printf("Error loading candidate embeddings: %v", err)
		return "", false
	}
	if len(candidateThoughts.Texts) == 0 {
		return "", false
	}

	texts := candidateThoughts.Texts
	if len(texts) > topPairCount {
		texts = texts[:topPairCount]
	}

	name := candidate.DisplayName()
	prompt := fmt.Sprintf(
		"Describe %s in 80 to 100 words based only on these thoughts they shared: %s. Do not address the reader.",
		name, summarizeTexts(texts))

	text, err := e.aiClient.GenerateNarrative(ctx, narrativeSystemPrompt, prompt)
	if err != nil {
		log.Printf("Single narrative generation failed: %v", err)
		return "", false
	}
	return text, true
}

// tagNarrative is the deterministic last tier: templated text from the
// per-category tag intersections, or a generic sentence when nothing
// overlaps at all.
func (e *ExplanationService) tagNarrative(ctx context.Context, requesterID uuid.UUID, candidate *db_models.User) string {
	requesterTags, err := e.tagRepo.GetTagsForUser(ctx, requesterID)
	if err != nil {
		log.Printf("Error loading requester tags for explanation: %v", err)
	}
	candidateTags, err := e.tagRepo.GetTagsForUser(ctx, candidate.ID)
	if err != nil {
		log.Printf("Error loading candidate tags for explanation: %v", err)
	}

	shared := sharedNamesByCategory(requesterTags, candidateTags)

	var b strings.Builder
	if interests := shared[db_models.CategoryInterest]; len(interests) > 0 {
		b.WriteString("You both enjoy " + listPhrase(interests) + ".")
	}
	if contexts := shared[db_models.CategoryContext]; len(contexts) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("You also have " + listPhrase(contexts) + " in common.")
	}
	if intentions := shared[db_models.CategoryIntention]; len(intentions) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("And you're both looking for " + listPhrase(intentions) + ".")
	}

	if b.Len() == 0 {
		return fmt.Sprintf("%s might offer a fresh perspective.", candidate.DisplayName())
	}
	return b.String()
}

func sharedNamesByCategory(requesterTags, candidateTags []db_models.Tag) map[string][]string {
	requesterSet := make(map[string]map[string]struct{})
	for _, tag := range requesterTags {
		if requesterSet[tag.Category] == nil {
			requesterSet[tag.Category] = make(map[string]struct{})
		}
		requesterSet[tag.Category][tag.Name] = struct{}{}
	}

	shared := make(map[string][]string)
	for _, tag := range candidateTags {
		if _, ok := requesterSet[tag.Category][tag.Name]; ok {
			shared[tag.Category] = append(shared[tag.Category], tag.Name)
		}
	}
	for category := range shared {
		sort.Strings(shared[category])
	}
	return shared
}

// listPhrase renders a shared-name list with singular, dual, and 3-plus
// variants.
func listPhrase(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return names[0] + ", " + names[1] + ", and more"
	}
}
