package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindred/internal/models/db_models"
	"kindred/internal/repositories"
	"kindred/pkg/utils"
)

type fakeUserRepo struct {
	users      map[uuid.UUID]db_models.User
	candidates []db_models.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*db_models.User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*db_models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*db_models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]db_models.User, error) {
	out := make([]db_models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Insert(_ context.Context, user *db_models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *db_models.User) error {
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) FindDiscoverCandidates(_ context.Context, _ *db_models.User, offset, limit int) ([]db_models.User, error) {
	if offset >= len(f.candidates) {
		return []db_models.User{}, nil
	}
	end := offset + limit
	if end > len(f.candidates) {
		end = len(f.candidates)
	}
	return f.candidates[offset:end], nil
}

func (f *fakeUserRepo) CountDiscoverCandidates(_ context.Context, _ *db_models.User) (int64, error) {
	return int64(len(f.candidates)), nil
}

type fakeTagRepo struct {
	byUser map[uuid.UUID][]db_models.Tag
	all    []db_models.Tag
}

func (f *fakeTagRepo) GetAllTags(_ context.Context) ([]db_models.Tag, error) {
	return f.all, nil
}

func (f *fakeTagRepo) GetTagsByIDs(_ context.Context, ids []uuid.UUID) ([]db_models.Tag, error) {
	out := make([]db_models.Tag, 0, len(ids))
	for _, tag := range f.all {
		for _, id := range ids {
			if tag.ID == id {
				out = append(out, tag)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeTagRepo) GetTagsForUser(_ context.Context, userID uuid.UUID) ([]db_models.Tag, error) {
	return f.byUser[userID], nil
}

func (f *fakeTagRepo) GetTagsForUsers(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]db_models.Tag, error) {
	result := make(map[uuid.UUID][]db_models.Tag)
	for _, id := range userIDs {
		if tags, ok := f.byUser[id]; ok {
			result[id] = tags
		}
	}
	return result, nil
}

func (f *fakeTagRepo) ReplaceUserTags(_ context.Context, userID uuid.UUID, tagIDs []uuid.UUID) error {
	tags, _ := f.GetTagsByIDs(context.Background(), tagIDs)
	f.byUser[userID] = tags
	return nil
}

type fakeThoughtRepo struct {
	embeddings map[uuid.UUID]repositories.ThoughtEmbeddings
	inserted   []db_models.Thought
	listed     []db_models.Thought
	deleteErr  error
}

func (f *fakeThoughtRepo) MostRecentEmbedding(_ context.Context, userID uuid.UUID) ([]float32, error) {
	e := f.embeddings[userID]
	if len(e.Vectors) > 0 {
		return e.Vectors[0], nil
	}
	return nil, nil
}

func (f *fakeThoughtRepo) AllEmbeddings(_ context.Context, userID uuid.UUID) (repositories.ThoughtEmbeddings, error) {
	return f.embeddings[userID], nil
}

func (f *fakeThoughtRepo) Insert(_ context.Context, thought *db_models.Thought) error {
	f.inserted = append(f.inserted, *thought)
	return nil
}

func (f *fakeThoughtRepo) ListByUser(_ context.Context, _ uuid.UUID) ([]db_models.Thought, error) {
	return f.listed, nil
}

func (f *fakeThoughtRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return f.deleteErr }

type fakeVectorRepo struct {
	matches []repositories.VectorMatch
	err     error
	queries int
	upserts []db_models.DiscoverVector
	removed []uuid.UUID
}

func (f *fakeVectorRepo) QueryTopK(_ context.Context, _ []float32, _ uuid.UUID, k int) ([]repositories.VectorMatch, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.matches) > k {
		return f.matches[:k], nil
	}
	return f.matches, nil
}

func (f *fakeVectorRepo) Upsert(_ context.Context, entry db_models.DiscoverVector) error {
	f.upserts = append(f.upserts, entry)
	return nil
}

func (f *fakeVectorRepo) Remove(_ context.Context, userID uuid.UUID) error {
	f.removed = append(f.removed, userID)
	return nil
}

func newTestUser(username string) db_models.User {
	return db_models.User{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		Username:  username,
	}
}

func newRecommendationFixture(requester db_models.User, others ...db_models.User) (*fakeUserRepo, *fakeTagRepo, *fakeThoughtRepo, *fakeVectorRepo) {
	users := map[uuid.UUID]db_models.User{requester.ID: requester}
	for _, u := range others {
		users[u.ID] = u
	}
	return &fakeUserRepo{users: users},
		&fakeTagRepo{byUser: map[uuid.UUID][]db_models.Tag{}},
		&fakeThoughtRepo{embeddings: map[uuid.UUID]repositories.ThoughtEmbeddings{}},
		&fakeVectorRepo{}
}

func TestGetRecommendationsVectorPath(t *testing.T) {
	me := newTestUser("me")
	c1 := newTestUser("high")
	c2 := newTestUser("mid")
	c3 := newTestUser("low")

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, c1, c2, c3)
	thoughtRepo.embeddings[me.ID] = repositories.ThoughtEmbeddings{
		IDs:     []uuid.UUID{uuid.New()},
		Texts:   []string{"I love quiet mornings"},
		Vectors: [][]float32{{1, 0, 0}},
	}
	vectorRepo.matches = []repositories.VectorMatch{
		{UserID: c2.ID, Score: 0.8, Tags: []string{}},
		{UserID: c1.ID, Score: 0.9, Tags: []string{}},
		{UserID: c3.ID, Score: 0.5, Tags: []string{}},
	}

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	page1, err := svc.GetRecommendations(context.Background(), me.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1.Users, 2)
	assert.Equal(t, c1.ID.String(), page1.Users[0].ID)
	assert.Equal(t, c2.ID.String(), page1.Users[1].ID)
	assert.True(t, page1.HasMore)
	require.NotNil(t, page1.NextPage)
	assert.Equal(t, 2, *page1.NextPage)
	assert.Equal(t, 1, page1.CurrentPage)

	page2, err := svc.GetRecommendations(context.Background(), me.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Users, 1)
	assert.Equal(t, c3.ID.String(), page2.Users[0].ID)
	assert.False(t, page2.HasMore)
	assert.Nil(t, page2.NextPage)
}

func TestGetRecommendationsDatabaseFallbackForNewUser(t *testing.T) {
	me := newTestUser("newcomer")
	others := []db_models.User{
		newTestUser("a"), newTestUser("b"), newTestUser("c"),
		newTestUser("d"), newTestUser("e"),
	}

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, others...)
	userRepo.candidates = others

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	page, err := svc.GetRecommendations(context.Background(), me.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	for _, u := range page.Users {
		assert.Equal(t, 0.0, u.Score)
	}
	assert.True(t, page.HasMore)
	require.NotNil(t, page.TotalCount)
	assert.Equal(t, int64(5), *page.TotalCount)

	// The index was never consulted: the requester has no embedded thought.
	assert.Equal(t, 0, vectorRepo.queries)
}

func TestGetRecommendationsSurvivesVectorIndexOutage(t *testing.T) {
	me := newTestUser("me")
	others := []db_models.User{newTestUser("a"), newTestUser("b"), newTestUser("c")}

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, others...)
	userRepo.candidates = others
	thoughtRepo.embeddings[me.ID] = repositories.ThoughtEmbeddings{
		Texts:   []string{"hello"},
		Vectors: [][]float32{{0.2, 0.4}},
	}
	vectorRepo.err = errors.New("index unreachable")

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	page, err := svc.GetRecommendations(context.Background(), me.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.TotalCount)
	assert.Equal(t, int64(3), *page.TotalCount)
}

func TestGetRecommendationsNoDuplicatesAcrossPages(t *testing.T) {
	me := newTestUser("me")
	c1 := newTestUser("c1")
	c2 := newTestUser("c2")
	c3 := newTestUser("c3")
	c4 := newTestUser("c4")
	c5 := newTestUser("c5")

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, c1, c2, c3, c4, c5)
	thoughtRepo.embeddings[me.ID] = repositories.ThoughtEmbeddings{
		Texts:   []string{"ideas"},
		Vectors: [][]float32{{1, 1}},
	}
	vectorRepo.matches = []repositories.VectorMatch{
		{UserID: c1.ID, Score: 0.9, Tags: []string{}},
		{UserID: c2.ID, Score: 0.8, Tags: []string{}},
		{UserID: c3.ID, Score: 0.5, Tags: []string{}},
	}
	// The demographic pool repeats the embedding hits plus two fresh users.
	userRepo.candidates = []db_models.User{c1, c2, c3, c4, c5}

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	seen := make(map[string]int)
	for page := 1; page <= 10; page++ {
		result, err := svc.GetRecommendations(context.Background(), me.ID, page, 2)
		require.NoError(t, err)
		for _, u := range result.Users {
			seen[u.ID]++
		}
		if !result.HasMore {
			break
		}
	}

	// Walking the feed by has_more reaches every candidate exactly once;
	// pages where the fallback fetch was dominated by duplicates must not
	// terminate pagination early.
	assert.Len(t, seen, 5)
	for id, count := range seen {
		assert.Equal(t, 1, count, "user %s served more than once", id)
	}
}

func TestGetRecommendationsFallbackOffsetSkipsServedUsers(t *testing.T) {
	me := newTestUser("me")
	v1 := newTestUser("v1")
	d1 := newTestUser("d1")
	d2 := newTestUser("d2")
	d3 := newTestUser("d3")

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, v1, d1, d2, d3)
	thoughtRepo.embeddings[me.ID] = repositories.ThoughtEmbeddings{
		Texts:   []string{"ideas"},
		Vectors: [][]float32{{1, 1}},
	}
	vectorRepo.matches = []repositories.VectorMatch{
		{UserID: v1.ID, Score: 0.9, Tags: []string{}},
	}
	// The embedding hit is also the first row of the demographic pool, so
	// page one skips it there and page two's window must account for that.
	userRepo.candidates = []db_models.User{v1, d1, d2, d3}

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	page1, err := svc.GetRecommendations(context.Background(), me.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1.Users, 2)
	assert.Equal(t, v1.ID.String(), page1.Users[0].ID)
	assert.Equal(t, d1.ID.String(), page1.Users[1].ID)
	assert.True(t, page1.HasMore)

	page2, err := svc.GetRecommendations(context.Background(), me.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Users, 2)
	assert.Equal(t, d2.ID.String(), page2.Users[0].ID)
	assert.Equal(t, d3.ID.String(), page2.Users[1].ID)
	assert.False(t, page2.HasMore)

	page3, err := svc.GetRecommendations(context.Background(), me.ID, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, page3.Users)
	assert.False(t, page3.HasMore)
}

func TestGetRecommendationsEmbeddingMatchesPrecedeFallback(t *testing.T) {
	me := newTestUser("me")
	vectorHit := newTestUser("from-index")
	fallbackHit := newTestUser("from-db")

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, vectorHit, fallbackHit)
	userRepo.candidates = []db_models.User{fallbackHit}
	thoughtRepo.embeddings[me.ID] = repositories.ThoughtEmbeddings{
		Texts:   []string{"something"},
		Vectors: [][]float32{{1, 0}},
	}
	// Zero similarity ties the index hit with the tagless fallback candidate.
	vectorRepo.matches = []repositories.VectorMatch{
		{UserID: vectorHit.ID, Score: 0, Tags: []string{}},
	}

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	page, err := svc.GetRecommendations(context.Background(), me.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.Equal(t, vectorHit.ID.String(), page.Users[0].ID)
	assert.Equal(t, fallbackHit.ID.String(), page.Users[1].ID)
}

func TestGetRecommendationsProximityPerturbsRanking(t *testing.T) {
	me := newTestUser("me")
	far := newTestUser("far")
	near := newTestUser("near")

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, far, near)
	thoughtRepo.embeddings[me.ID] = repositories.ThoughtEmbeddings{
		Texts:   []string{"x"},
		Vectors: [][]float32{{1}},
	}
	distance := 100.0
	vectorRepo.matches = []repositories.VectorMatch{
		// 0.9 similarity at max distance blends to 0.63 and loses to a
		// plain 0.8.
		{UserID: near.ID, Score: 0.9, Tags: []string{}, Proximity: &distance},
		{UserID: far.ID, Score: 0.8, Tags: []string{}},
	}

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	page, err := svc.GetRecommendations(context.Background(), me.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.Equal(t, far.ID.String(), page.Users[0].ID)
	assert.Equal(t, near.ID.String(), page.Users[1].ID)
	assert.Greater(t, page.Users[0].Score, page.Users[1].Score)
}

func TestGetRecommendationsScoresNonIncreasingWithinPage(t *testing.T) {
	me := newTestUser("me")
	c1 := newTestUser("c1")
	c2 := newTestUser("c2")
	c3 := newTestUser("c3")

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, c1, c2, c3)
	thoughtRepo.embeddings[me.ID] = repositories.ThoughtEmbeddings{
		Texts:   []string{"x"},
		Vectors: [][]float32{{1}},
	}
	vectorRepo.matches = []repositories.VectorMatch{
		{UserID: c3.ID, Score: 0.31, Tags: []string{}},
		{UserID: c1.ID, Score: 0.92, Tags: []string{}},
		{UserID: c2.ID, Score: 0.74, Tags: []string{}},
	}

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	page, err := svc.GetRecommendations(context.Background(), me.ID, 1, 3)
	require.NoError(t, err)
	require.Len(t, page.Users, 3)
	for i := 1; i < len(page.Users); i++ {
		assert.GreaterOrEqual(t, page.Users[i-1].Score, page.Users[i].Score)
	}
}

func TestGetRecommendationsUnknownRequester(t *testing.T) {
	me := newTestUser("ghost")
	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me)
	delete(userRepo.users, me.ID)

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	_, err := svc.GetRecommendations(context.Background(), me.ID, 1, 10)
	assert.ErrorIs(t, err, utils.ErrUserNotFound)
}

func TestGetRecommendationsRejectsBadPaging(t *testing.T) {
	me := newTestUser("me")
	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me)
	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	_, err := svc.GetRecommendations(context.Background(), me.ID, 0, 10)
	assert.ErrorIs(t, err, utils.ErrInvalidPage)

	_, err = svc.GetRecommendations(context.Background(), me.ID, 1, 0)
	assert.ErrorIs(t, err, utils.ErrInvalidPageSize)

	_, err = svc.GetRecommendations(context.Background(), me.ID, 1, 101)
	assert.ErrorIs(t, err, utils.ErrInvalidPageSize)
}

func TestGetDatabaseRecommendationsTagOverlapOrdering(t *testing.T) {
	me := newTestUser("me")
	twoShared := newTestUser("two-shared")
	oneShared := newTestUser("one-shared")
	noShared := newTestUser("no-shared")

	hiking := db_models.Tag{BaseModel: db_models.BaseModel{ID: uuid.New()}, Name: "hiking", Category: db_models.CategoryInterest}
	cooking := db_models.Tag{BaseModel: db_models.BaseModel{ID: uuid.New()}, Name: "cooking", Category: db_models.CategoryInterest}
	chess := db_models.Tag{BaseModel: db_models.BaseModel{ID: uuid.New()}, Name: "chess", Category: db_models.CategoryInterest}

	userRepo, tagRepo, thoughtRepo, vectorRepo := newRecommendationFixture(me, twoShared, oneShared, noShared)
	userRepo.candidates = []db_models.User{noShared, oneShared, twoShared}
	tagRepo.byUser[me.ID] = []db_models.Tag{hiking, cooking}
	tagRepo.byUser[twoShared.ID] = []db_models.Tag{hiking, cooking}
	tagRepo.byUser[oneShared.ID] = []db_models.Tag{hiking, chess}
	tagRepo.byUser[noShared.ID] = []db_models.Tag{chess}

	svc := NewRecommendationService(userRepo, tagRepo, thoughtRepo, vectorRepo)

	page, err := svc.GetDatabaseRecommendations(context.Background(), me.ID, 1, 3)
	require.NoError(t, err)
	require.Len(t, page.Users, 3)
	assert.Equal(t, twoShared.ID.String(), page.Users[0].ID)
	assert.Equal(t, oneShared.ID.String(), page.Users[1].ID)
	assert.Equal(t, noShared.ID.String(), page.Users[2].ID)

	assert.Equal(t, 2.0, page.Users[0].Score)
	assert.InDelta(t, 1.0, page.Users[0].Similarity, 1e-9)
	assert.Equal(t, 1.0, page.Users[1].Score)
	assert.Equal(t, 0.0, page.Users[2].Score)
	assert.False(t, page.HasMore)
}

func TestBlendScore(t *testing.T) {
	assert.InDelta(t, 0.8, blendScore(0.8, nil), 1e-9)

	zero := 0.0
	assert.InDelta(t, 0.7*0.8+0.3, blendScore(0.8, &zero), 1e-9)

	half := 50.0
	assert.InDelta(t, 0.7*0.8+0.15, blendScore(0.8, &half), 1e-9)

	// Distances beyond the cap contribute nothing extra.
	far := 100.0
	veryFar := 4000.0
	assert.InDelta(t, blendScore(0.8, &far), blendScore(0.8, &veryFar), 1e-9)
	assert.InDelta(t, 0.7*0.8, blendScore(0.8, &veryFar), 1e-9)

	// A corrupt negative distance is treated as zero, keeping the
	// proximity term inside its 0.3 share.
	negative := -50.0
	assert.InDelta(t, 0.7*0.8+0.3, blendScore(0.8, &negative), 1e-9)
}
