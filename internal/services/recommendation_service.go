package services

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/google/uuid"

	"kindred/internal/models/db_models"
	"kindred/internal/models/response_models"
	"kindred/internal/repositories"
	"kindred/pkg/utils"
)

const (
	// maxDisplayTags caps the tag list carried on each recommended user.
	maxDisplayTags = 5
	// vectorFetchFactor controls how many embedding candidates are pulled
	// per page so later pages can be served from one index query.
	vectorFetchFactor = 4
	// candidateOverfetchFactor leaves room for scoring and sorting before
	// the fallback page is trimmed.
	candidateOverfetchFactor = 3

	similarityWeight = 0.7
	proximityWeight  = 0.3
)

type RecommendationServiceInterface interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID, page, pageSize int) (*response_models.DiscoverPage, error)
	GetDatabaseRecommendations(ctx context.Context, userID uuid.UUID, page, pageSize int) (*response_models.DiscoverPage, error)
}

type RecommendationService struct {
	userRepo    repositories.UserRepositoryInterface
	tagRepo     repositories.TagRepositoryInterface
	thoughtRepo repositories.ThoughtRepositoryInterface
	vectorRepo  repositories.VectorIndexRepositoryInterface
}

func NewRecommendationService(
	userRepo repositories.UserRepositoryInterface,
	tagRepo repositories.TagRepositoryInterface,
	thoughtRepo repositories.ThoughtRepositoryInterface,
	vectorRepo repositories.VectorIndexRepositoryInterface,
) RecommendationServiceInterface {
	return &RecommendationService{
		userRepo:    userRepo,
		tagRepo:     tagRepo,
		thoughtRepo: thoughtRepo,
		vectorRepo:  vectorRepo,
	}
}

// blendScore combines semantic similarity with an optional proximity hint.
// Semantic affinity dominates; closeness perturbs the ranking when the index
// stored a distance for the candidate.
func blendScore(similarity float64, proximity *float64) float64 {
	if proximity == nil {
		return similarity
	}
	distance := *proximity
	if distance < 0 {
		distance = 0
	}
	if distance > 100 {
		distance = 100
	}
	return similarityWeight*similarity + proximityWeight*(1-distance/100)
}

func nextPage(page int, hasMore bool) *int {
	if !hasMore {
		return nil
	}
	next := page + 1
	return &next
}

// GetRecommendations returns one score-ordered page of candidates, primary
// from the vector index and filled from the tag/demographic path. Any
// failure on the vector path degrades to the database path for the whole
// page; a vector-index outage never produces an error response. Note that
// semantic matches are not demographic-filtered, so embedding-sourced
// candidates may fall outside the requester's stated preferences.
func (r *RecommendationService) GetRecommendations(ctx context.Context, userID uuid.UUID, page, pageSize int) (*response_models.DiscoverPage, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	result, err := r.vectorRecommendations(ctx, userID, page, pageSize)
	if err != nil {
		if errors.Is(err, utils.ErrUserNotFound) {
			return nil, err
		}
		log.Printf("Vector recommendation path failed, using database path: %v", err)
		return r.GetDatabaseRecommendations(ctx, userID, page, pageSize)
	}
	return result, nil
}

func (r *RecommendationService) vectorRecommendations(ctx context.Context, userID uuid.UUID, page, pageSize int) (*response_models.DiscoverPage, error) {
	queryVector, err := r.thoughtRepo.MostRecentEmbedding(ctx, userID)
	if err != nil {
		return nil, err
	}

	// No valid embedding is a normal state, not an error; the page is
	// simply served from the fallback path below.
	var matches []repositories.VectorMatch
	if len(queryVector) > 0 {
		matches, err = r.vectorRepo.QueryTopK(ctx, queryVector, userID, pageSize*vectorFetchFactor)
		if err != nil {
			return nil, err
		}
	}

	candidates, err := r.hydrateMatches(ctx, matches)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	start := (page - 1) * pageSize
	end := page * pageSize

	if len(candidates) >= end {
		users := append([]response_models.RecommendedUser{}, candidates[start:end]...)
		hasMore := end < len(candidates)
		return &response_models.DiscoverPage{
			Users:       users,
			HasMore:     hasMore,
			NextPage:    nextPage(page, hasMore),
			CurrentPage: page,
		}, nil
	}

	var fromVector []response_models.RecommendedUser
	if start < len(candidates) {
		fromVector = append(fromVector, candidates[start:]...)
	}
	needed := pageSize - len(fromVector)

	// The page offset applies to the fallback stream only after embedding
	// duplicates are removed, so the stream is always fetched from zero,
	// filtered, then windowed. Offsetting the raw stream would land before
	// rows that earlier pages skipped as duplicates and serve them twice.
	fallbackOffset := start - len(candidates)
	if fallbackOffset < 0 {
		fallbackOffset = 0
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c.ID] = struct{}{}
	}

	var (
		dbUsers  []response_models.RecommendedUser
		filtered []response_models.RecommendedUser
		total    int64
	)
	// Twice the shortfall as initial de-duplication headroom, growing
	// until the window is covered or the pool runs out.
	limit := fallbackOffset + needed*2
	for {
		dbUsers, total, err = r.databaseCandidates(ctx, userID, 0, limit)
		if err != nil {
			return nil, err
		}
		filtered = filtered[:0]
		for _, candidate := range dbUsers {
			if _, dup := seen[candidate.ID]; dup {
				continue
			}
			filtered = append(filtered, candidate)
		}
		if len(filtered) >= fallbackOffset+needed || len(dbUsers) < limit {
			break
		}
		limit += needed * 2
	}

	var fill []response_models.RecommendedUser
	if fallbackOffset < len(filtered) {
		stop := fallbackOffset + needed
		if stop > len(filtered) {
			stop = len(filtered)
		}
		fill = filtered[fallbackOffset:stop]
	}

	users := append(fromVector, fill...)
	filled := len(users) == pageSize
	moreFallback := fallbackOffset+len(fill) < len(filtered) || int64(len(dbUsers)) < total
	hasMore := filled && moreFallback

	return &response_models.DiscoverPage{
		Users:       users,
		HasMore:     hasMore,
		NextPage:    nextPage(page, hasMore),
		TotalCount:  &total,
		CurrentPage: page,
	}, nil
}

// hydrateMatches turns raw index hits into display-ready candidates, batch
// loading users by id-set. Hits whose user row no longer exists (stale index
// entries) are dropped.
func (r *RecommendationService) hydrateMatches(ctx context.Context, matches []repositories.VectorMatch) ([]response_models.RecommendedUser, error) {
	if len(matches) == 0 {
		return []response_models.RecommendedUser{}, nil
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.UserID)
	}
	users, err := r.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]db_models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	candidates := make([]response_models.RecommendedUser, 0, len(matches))
	for _, m := range matches {
		user, ok := byID[m.UserID]
		if !ok {
			continue
		}
		tags := m.Tags
		if len(tags) > maxDisplayTags {
			tags = tags[:maxDisplayTags]
		}
		candidates = append(candidates, response_models.RecommendedUser{
			ID:           user.ID.String(),
			Username:     user.Username,
			Nickname:     user.Nickname,
			ProfileImage: user.ProfileImage,
			Tags:         tags,
			Similarity:   m.Score,
			Proximity:    m.Proximity,
			Score:        blendScore(m.Score, m.Proximity),
		})
	}
	return candidates, nil
}

// GetDatabaseRecommendations serves a page purely from the tag/demographic
// path. Candidates are scored by tag overlap with the requester; a requester
// with no tags still gets demographic matches at score zero.
func (r *RecommendationService) GetDatabaseRecommendations(ctx context.Context, userID uuid.UUID, page, pageSize int) (*response_models.DiscoverPage, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	offset := (page - 1) * pageSize
	users, total, err := r.databaseCandidates(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}

	hasMore := int64(offset+pageSize) < total
	return &response_models.DiscoverPage{
		Users:       users,
		HasMore:     hasMore,
		NextPage:    nextPage(page, hasMore),
		TotalCount:  &total,
		CurrentPage: page,
	}, nil
}

func (r *RecommendationService) databaseCandidates(ctx context.Context, userID uuid.UUID, offset, limit int) ([]response_models.RecommendedUser, int64, error) {
	user, err := r.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Printf("Error loading requesting user: %v", err)
		return nil, 0, utils.ErrDatabaseError
	}
	// The one hard error in this subsystem: there is no meaningful
	// recommendation to compute for a nonexistent requester.
	if user == nil {
		return nil, 0, utils.ErrUserNotFound
	}

	userTags, err := r.tagRepo.GetTagsForUser(ctx, userID)
	if err != nil {
		log.Printf("Error loading requester tags: %v", err)
		return nil, 0, utils.ErrDatabaseError
	}
	userTagIDs := tagIDs(userTags)

	candidates, err := r.userRepo.FindDiscoverCandidates(ctx, user, offset, limit*candidateOverfetchFactor)
	if err != nil {
		log.Printf("Error loading discover candidates: %v", err)
		return nil, 0, utils.ErrDatabaseError
	}

	candidateIDs := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		candidateIDs = append(candidateIDs, c.ID)
	}
	tagsByUser, err := r.tagRepo.GetTagsForUsers(ctx, candidateIDs)
	if err != nil {
		log.Printf("Error loading candidate tags: %v", err)
		return nil, 0, utils.ErrDatabaseError
	}

	scored := make([]response_models.RecommendedUser, 0, len(candidates))
	for _, candidate := range candidates {
		candidateTags := tagsByUser[candidate.ID]
		candidateTagIDs := tagIDs(candidateTags)

		shared := SharedTagCount(userTagIDs, candidateTagIDs)
		similarity := TagSimilarity(userTagIDs, candidateTagIDs)

		names := make([]string, 0, len(candidateTags))
		for _, tag := range candidateTags {
			if len(names) == maxDisplayTags {
				break
			}
			names = append(names, tag.Name)
		}

		scored = append(scored, response_models.RecommendedUser{
			ID:           candidate.ID.String(),
			Username:     candidate.Username,
			Nickname:     candidate.Nickname,
			ProfileImage: candidate.ProfileImage,
			Tags:         names,
			Similarity:   similarity,
			Score:        float64(shared),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	total, err := r.userRepo.CountDiscoverCandidates(ctx, user)
	if err != nil {
		log.Printf("Error counting discover candidates: %v", err)
		return nil, 0, utils.ErrDatabaseError
	}

	return scored, total, nil
}

func tagIDs(tags []db_models.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	return ids
}
