package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nivora-be/internal/dto"
	"nivora-be/internal/entity"
	"nivora-be/internal/pkg/serverutils"
	"nivora-be/internal/repository/contract"
	"nivora-be/internal/repository/memory"
	"nivora-be/internal/repository/specification"
	"nivora-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNoteRepo returns canned results; specifications are applied by the
// real gorm repository, so the fake just hands back what the test staged.
type fakeNoteRepo struct {
	findOneResult *entity.Note
	findAllResult []*entity.Note
	findAllCalls  int
	createCalls   int
	updateCalls   int
	deleteCalls   int
	lastCreated   *entity.Note
	lastUpdated   *entity.Note
	createErr     error
}

func (f *fakeNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.lastCreated = note
	return nil
}

func (f *fakeNoteRepo) Update(ctx context.Context, note *entity.Note) error {
	f.updateCalls++
	f.lastUpdated = note
	return nil
}

func (f *fakeNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleteCalls++
	return nil
}

func (f *fakeNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	return f.findOneResult, nil
}

func (f *fakeNoteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	f.findAllCalls++
	return f.findAllResult, nil
}

func (f *fakeNoteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.findAllResult)), nil
}

type fakeUow struct {
	noteRepo *fakeNoteRepo
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }

func (f *fakeUow) UserRepository() contract.UserRepository           { return nil }
func (f *fakeUow) NoteRepository() contract.NoteRepository           { return f.noteRepo }
func (f *fakeUow) ProfileRepository() contract.ProfileRepository     { return nil }
func (f *fakeUow) SystemLogRepository() contract.SystemLogRepository { return nil }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeActivityPublisher struct {
	payloads [][]byte
}

func (f *fakeActivityPublisher) Publish(ctx context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func newTestNoteService(repo *fakeNoteRepo) (INoteService, *memory.NoteCache, *fakeActivityPublisher) {
	cache := memory.NewNoteCache()
	activity := &fakeActivityPublisher{}
	svc := NewNoteService(&fakeUowFactory{uow: &fakeUow{noteRepo: repo}}, cache, activity, nil)
	return svc, cache, activity
}

func strPtr(s string) *string { return &s }

func TestListUsesCacheAfterFirstFetch(t *testing.T) {
	userId := uuid.New()
	repo := &fakeNoteRepo{
		findAllResult: []*entity.Note{
			{Id: uuid.New(), UserId: userId, Title: "groceries", CreatedAt: time.Now()},
		},
	}
	svc, _, _ := newTestNoteService(repo)

	first, err := svc.List(context.Background(), userId, nil)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := svc.List(context.Background(), userId, nil)
	require.NoError(t, err)
	assert.Len(t, second, 1)

	assert.Equal(t, 1, repo.findAllCalls, "second list should be served from cache")
}

func TestListSanitizesLoadedNotes(t *testing.T) {
	userId := uuid.New()
	repo := &fakeNoteRepo{
		findAllResult: []*entity.Note{
			{
				Id:        uuid.New(),
				UserId:    userId,
				Title:     "FAVOURITES shopping",
				Content:   strPtr("my FAVORITES list"),
				Tags:      []string{"favourites", "home"},
				CreatedAt: time.Now(),
			},
		},
	}
	svc, _, _ := newTestNoteService(repo)

	res, err := svc.List(context.Background(), userId, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)

	assert.Equal(t, "shopping", res[0].Title)
	assert.Equal(t, "my  list", *res[0].Content)
	assert.Equal(t, []string{"home"}, res[0].Tags)
}

func TestListWithoutIdentityReturnsEmpty(t *testing.T) {
	repo := &fakeNoteRepo{}
	svc, _, _ := newTestNoteService(repo)

	res, err := svc.List(context.Background(), uuid.Nil, nil)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, 0, repo.findAllCalls)
}

func TestListAppliesProjection(t *testing.T) {
	userId := uuid.New()
	repo := &fakeNoteRepo{
		findAllResult: []*entity.Note{
			{Id: uuid.New(), UserId: userId, Title: "wifi password", CreatedAt: time.Now()},
			{Id: uuid.New(), UserId: userId, Title: "essay", Content: strPtr("a very long body that goes on and on and on and on and on and on and on and on and on and on and on"), CreatedAt: time.Now()},
		},
	}
	svc, _, _ := newTestNoteService(repo)

	res, err := svc.List(context.Background(), userId, &dto.ListNotesQuery{Category: "passwords"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "wifi password", res[0].Title)
}

func TestCreateRejectsBlankTitleBeforeRepo(t *testing.T) {
	repo := &fakeNoteRepo{}
	svc, _, _ := newTestNoteService(repo)

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateNoteRequest{Title: "  FAVOURITES  "})
	require.Error(t, err)

	var apiErr *serverutils.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, 0, repo.createCalls, "invalid input must never reach the repository")
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := &fakeNoteRepo{}
	svc, _, _ := newTestNoteService(repo)

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateNoteRequest{Title: "plain"})
	require.NoError(t, err)

	require.NotNil(t, repo.lastCreated)
	assert.Equal(t, "#ffffff", repo.lastCreated.BgColor)
	require.NotNil(t, repo.lastCreated.Content)
	assert.Equal(t, "", *repo.lastCreated.Content)
	assert.Equal(t, []string{}, repo.lastCreated.Tags)
	assert.False(t, repo.lastCreated.NoteDate.IsZero())
}

func TestCreateSanitizesBeforeSave(t *testing.T) {
	repo := &fakeNoteRepo{}
	svc, _, _ := newTestNoteService(repo)

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateNoteRequest{
		Title:   "FAVORITES dinner plans",
		Content: strPtr("see favourites tab"),
		Tags:    []string{"Favourites", "food"},
	})
	require.NoError(t, err)

	require.NotNil(t, repo.lastCreated)
	assert.Equal(t, "dinner plans", repo.lastCreated.Title)
	assert.Equal(t, "see  tab", *repo.lastCreated.Content)
	assert.Equal(t, []string{"food"}, repo.lastCreated.Tags)
}

func TestCreateInvalidatesCachedList(t *testing.T) {
	userId := uuid.New()
	repo := &fakeNoteRepo{
		findAllResult: []*entity.Note{
			{Id: uuid.New(), UserId: userId, Title: "old", CreatedAt: time.Now()},
		},
	}
	svc, _, _ := newTestNoteService(repo)

	_, err := svc.List(context.Background(), userId, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findAllCalls)

	_, err = svc.Create(context.Background(), userId, &dto.CreateNoteRequest{Title: "new"})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), userId, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findAllCalls, "mutation must force a refetch")
}

func TestCreateFailureLeavesCacheIntact(t *testing.T) {
	userId := uuid.New()
	repo := &fakeNoteRepo{
		findAllResult: []*entity.Note{
			{Id: uuid.New(), UserId: userId, Title: "old", CreatedAt: time.Now()},
		},
		createErr: errors.New("connection refused"),
	}
	svc, _, _ := newTestNoteService(repo)

	_, err := svc.List(context.Background(), userId, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), userId, &dto.CreateNoteRequest{Title: "new"})
	require.Error(t, err)

	_, err = svc.List(context.Background(), userId, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findAllCalls, "failed create must not drop the cached list")
}

func TestUpdateUnknownNoteIsNotFound(t *testing.T) {
	repo := &fakeNoteRepo{findOneResult: nil}
	svc, _, _ := newTestNoteService(repo)

	title := "renamed"
	_, err := svc.Update(context.Background(), uuid.New(), &dto.UpdateNoteRequest{Id: uuid.New(), Title: &title})
	require.Error(t, err)

	var apiErr *serverutils.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	userId := uuid.New()
	existing := &entity.Note{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "original",
		Content:   strPtr("body"),
		BgColor:   "#abcdef",
		CreatedAt: time.Now(),
	}
	repo := &fakeNoteRepo{findOneResult: existing}
	svc, _, _ := newTestNoteService(repo)

	fav := true
	_, err := svc.Update(context.Background(), userId, &dto.UpdateNoteRequest{
		Id:         existing.Id,
		IsFavorite: &fav,
	})
	require.NoError(t, err)

	require.NotNil(t, repo.lastUpdated)
	assert.Equal(t, "original", repo.lastUpdated.Title)
	assert.Equal(t, "#abcdef", repo.lastUpdated.BgColor)
	assert.True(t, repo.lastUpdated.IsFavorite)
	require.NotNil(t, repo.lastUpdated.UpdatedAt)
}

func TestUpdateCleansStoredLegacyMarkers(t *testing.T) {
	userId := uuid.New()
	existing := &entity.Note{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "FAVOURITES shopping",
		Content:   strPtr("see FAVORITES tab"),
		Tags:      []string{"favourites", "home"},
		CreatedAt: time.Now(),
	}
	repo := &fakeNoteRepo{findOneResult: existing}
	svc, _, _ := newTestNoteService(repo)

	fav := true
	_, err := svc.Update(context.Background(), userId, &dto.UpdateNoteRequest{
		Id:         existing.Id,
		IsFavorite: &fav,
	})
	require.NoError(t, err)

	// Patching an unrelated field still scrubs the whole stored row.
	require.NotNil(t, repo.lastUpdated)
	assert.Equal(t, "shopping", repo.lastUpdated.Title)
	assert.Equal(t, "see  tab", *repo.lastUpdated.Content)
	assert.Equal(t, []string{"home"}, repo.lastUpdated.Tags)
}

func TestToggleCleansStoredLegacyMarkers(t *testing.T) {
	userId := uuid.New()
	existing := &entity.Note{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "FAVOURITES shopping",
		Tags:      []string{"Favourites", "food"},
		CreatedAt: time.Now(),
	}
	repo := &fakeNoteRepo{findOneResult: existing}
	svc, _, _ := newTestNoteService(repo)

	err := svc.ToggleFavorite(context.Background(), userId, &dto.ToggleFavoriteRequest{Id: existing.Id, IsFavorite: false})
	require.NoError(t, err)

	require.NotNil(t, repo.lastUpdated)
	assert.Equal(t, "shopping", repo.lastUpdated.Title)
	assert.Equal(t, []string{"food"}, repo.lastUpdated.Tags)
}

func TestDeleteUnknownNoteIsNotFound(t *testing.T) {
	repo := &fakeNoteRepo{findOneResult: nil}
	svc, _, _ := newTestNoteService(repo)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)

	var apiErr *serverutils.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, 0, repo.deleteCalls)
}

func TestToggleFavoriteFlipsCurrentValue(t *testing.T) {
	userId := uuid.New()
	existing := &entity.Note{Id: uuid.New(), UserId: userId, Title: "n", IsFavorite: false, CreatedAt: time.Now()}
	repo := &fakeNoteRepo{findOneResult: existing}
	svc, _, activity := newTestNoteService(repo)

	err := svc.ToggleFavorite(context.Background(), userId, &dto.ToggleFavoriteRequest{Id: existing.Id, IsFavorite: false})
	require.NoError(t, err)

	require.NotNil(t, repo.lastUpdated)
	assert.True(t, repo.lastUpdated.IsFavorite)
	assert.Len(t, activity.payloads, 1, "toggles are audited")
}

func TestTogglePinInvalidatesCache(t *testing.T) {
	userId := uuid.New()
	existing := &entity.Note{Id: uuid.New(), UserId: userId, Title: "n", IsPinned: true, CreatedAt: time.Now()}
	repo := &fakeNoteRepo{
		findOneResult: existing,
		findAllResult: []*entity.Note{existing},
	}
	svc, _, _ := newTestNoteService(repo)

	_, err := svc.List(context.Background(), userId, nil)
	require.NoError(t, err)

	err = svc.TogglePin(context.Background(), userId, &dto.TogglePinRequest{Id: existing.Id, IsPinned: true})
	require.NoError(t, err)
	assert.False(t, repo.lastUpdated.IsPinned)

	_, err = svc.List(context.Background(), userId, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findAllCalls)
}
