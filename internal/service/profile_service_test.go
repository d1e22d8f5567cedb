package service

import (
	"context"
	"testing"

	"nivora-be/internal/dto"
	"nivora-be/internal/entity"
	"nivora-be/internal/repository/contract"
	"nivora-be/internal/repository/specification"
	"nivora-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfileRepo struct {
	stored      *entity.Profile
	createCalls int
	updateCalls int
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *entity.Profile) error {
	f.createCalls++
	f.stored = profile
	return nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *entity.Profile) error {
	f.updateCalls++
	f.stored = profile
	return nil
}

func (f *fakeProfileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Profile, error) {
	return f.stored, nil
}

type fakeProfileUow struct {
	fakeUow
	profileRepo *fakeProfileRepo
	beginCalls  int
	commitCalls int
}

func (f *fakeProfileUow) Begin(ctx context.Context) error {
	f.beginCalls++
	return nil
}

func (f *fakeProfileUow) Commit() error {
	f.commitCalls++
	return nil
}

func (f *fakeProfileUow) ProfileRepository() contract.ProfileRepository {
	return f.profileRepo
}

type fakeProfileUowFactory struct {
	uow *fakeProfileUow
}

func (f *fakeProfileUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func TestGetMissingProfileIsNil(t *testing.T) {
	uow := &fakeProfileUow{profileRepo: &fakeProfileRepo{}}
	svc := NewProfileService(&fakeProfileUowFactory{uow: uow}, nil)

	res, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, res, "fresh accounts have no profile row")
}

func TestSetAvatarCreatesWhenAbsent(t *testing.T) {
	repo := &fakeProfileRepo{}
	uow := &fakeProfileUow{profileRepo: repo}
	svc := NewProfileService(&fakeProfileUowFactory{uow: uow}, nil)
	userId := uuid.New()

	res, err := svc.SetAvatar(context.Background(), userId, &dto.UpdateAvatarRequest{AvatarURL: "https://cdn.example/a.png"})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, 0, repo.updateCalls)
	assert.Equal(t, userId, res.UserId)
	require.NotNil(t, res.AvatarURL)
	assert.Equal(t, "https://cdn.example/a.png", *res.AvatarURL)
	assert.Equal(t, 1, uow.beginCalls, "upsert runs inside a transaction")
	assert.Equal(t, 1, uow.commitCalls)
}

func TestSetAvatarUpdatesExistingRow(t *testing.T) {
	userId := uuid.New()
	old := "https://cdn.example/old.png"
	repo := &fakeProfileRepo{
		stored: &entity.Profile{Id: uuid.New(), UserId: userId, AvatarURL: &old},
	}
	uow := &fakeProfileUow{profileRepo: repo}
	svc := NewProfileService(&fakeProfileUowFactory{uow: uow}, nil)

	res, err := svc.SetAvatar(context.Background(), userId, &dto.UpdateAvatarRequest{AvatarURL: "https://cdn.example/new.png"})
	require.NoError(t, err)

	assert.Equal(t, 0, repo.createCalls)
	assert.Equal(t, 1, repo.updateCalls)
	assert.Equal(t, "https://cdn.example/new.png", *res.AvatarURL)
	require.NotNil(t, res.UpdatedAt)
}
