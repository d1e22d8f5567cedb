package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nivora-be/internal/config"
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
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	user          *entity.User
	otpTokens     []*entity.EmailVerificationToken
	refreshTokens map[string]*entity.UserRefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{refreshTokens: map[string]*entity.UserRefreshToken{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.user = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.user = user
	return nil
}

func (f *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return f.user, nil
}

func (f *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if f.user == nil {
		return 0, nil
	}
	return 1, nil
}

func (f *fakeUserRepo) CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error {
	f.otpTokens = append(f.otpTokens, token)
	return nil
}

func (f *fakeUserRepo) FindEmailVerificationToken(ctx context.Context, userId uuid.UUID, token string) (*entity.EmailVerificationToken, error) {
	for _, t := range f.otpTokens {
		if t.UserId == userId && t.Token == token {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) DeleteEmailVerificationTokens(ctx context.Context, userId uuid.UUID) error {
	f.otpTokens = nil
	return nil
}

func (f *fakeUserRepo) CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error {
	f.refreshTokens[token.TokenHash] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.UserRefreshToken, error) {
	return f.refreshTokens[tokenHash], nil
}

func (f *fakeUserRepo) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	for _, t := range f.refreshTokens {
		if t.Id == id {
			t.Revoked = true
		}
	}
	return nil
}

type fakeAuthUow struct {
	fakeUow
	userRepo *fakeUserRepo
}

func (f *fakeAuthUow) UserRepository() contract.UserRepository { return f.userRepo }

type fakeAuthUowFactory struct {
	uow *fakeAuthUow
}

func (f *fakeAuthUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeMailer struct{}

func (f *fakeMailer) SendOTP(toEmail, otp string) error { return nil }

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JwtSecret:        "test-secret",
		AccessTokenTTL:   15,
		RefreshTokenTTL:  168,
		VerificationsTTL: 15,
	}
}

func activeUser(password string) *entity.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	hashStr := string(hash)
	return &entity.User{
		Id:            uuid.New(),
		Email:         "user@example.com",
		FullName:      "Test User",
		PasswordHash:  &hashStr,
		Role:          entity.UserRoleUser,
		Status:        entity.UserStatusActive,
		EmailVerified: true,
		CreatedAt:     time.Now(),
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	repo.user = activeUser("pw123456")
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "user@example.com", Password: "pw123456", FullName: "Dup",
	})
	require.Error(t, err)

	var apiErr *serverutils.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 409, apiErr.Status)
}

func TestRegisterStoresHashedPasswordAndOTP(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, nil, testAuthConfig())

	res, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email: "fresh@example.com", Password: "pw123456", FullName: "Fresh",
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", res.Email)

	require.NotNil(t, repo.user)
	require.NotNil(t, repo.user.PasswordHash)
	assert.NotEqual(t, "pw123456", *repo.user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*repo.user.PasswordHash), []byte("pw123456")))
	assert.Equal(t, entity.UserStatusPending, repo.user.Status)

	require.Len(t, repo.otpTokens, 1)
	assert.Len(t, repo.otpTokens[0].Token, 6)
}

func TestVerifyEmailActivatesAndBurnsToken(t *testing.T) {
	repo := newFakeUserRepo()
	user := activeUser("pw123456")
	user.Status = entity.UserStatusPending
	user.EmailVerified = false
	repo.user = user
	repo.otpTokens = []*entity.EmailVerificationToken{{
		Id: uuid.New(), UserId: user.Id, Token: "123456", ExpiresAt: time.Now().Add(10 * time.Minute),
	}}
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, nil, testAuthConfig())

	err := svc.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{Email: user.Email, Token: "123456"})
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusActive, repo.user.Status)
	assert.True(t, repo.user.EmailVerified)
	assert.Empty(t, repo.otpTokens)
}

func TestVerifyEmailExpiredTokenRejected(t *testing.T) {
	repo := newFakeUserRepo()
	user := activeUser("pw123456")
	user.Status = entity.UserStatusPending
	user.EmailVerified = false
	repo.user = user
	repo.otpTokens = []*entity.EmailVerificationToken{{
		Id: uuid.New(), UserId: user.Id, Token: "123456", ExpiresAt: time.Now().Add(-1 * time.Minute),
	}}
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, nil, testAuthConfig())

	err := svc.VerifyEmail(context.Background(), &dto.VerifyEmailRequest{Email: user.Email, Token: "123456"})
	require.Error(t, err)

	var apiErr *serverutils.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	repo := newFakeUserRepo()
	repo.user = activeUser("correct-pw")
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "user@example.com", Password: "wrong"}, "1.2.3.4", "test")
	require.Error(t, err)

	var apiErr *serverutils.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.Status)
}

func TestLoginUnverifiedEmailRejected(t *testing.T) {
	repo := newFakeUserRepo()
	user := activeUser("pw123456")
	user.Status = entity.UserStatusPending
	user.EmailVerified = false
	repo.user = user
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "pw123456"}, "1.2.3.4", "test")
	require.Error(t, err)

	var apiErr *serverutils.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.Status)
}

func TestLoginIssuesTokens(t *testing.T) {
	repo := newFakeUserRepo()
	repo.user = activeUser("pw123456")
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "user@example.com", Password: "pw123456"}, "1.2.3.4", "test")
	require.NoError(t, err)

	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Len(t, repo.refreshTokens, 1, "refresh token persisted hashed")
	_, rawStored := repo.refreshTokens[res.RefreshToken]
	assert.False(t, rawStored, "raw token must never be persisted")
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newFakeUserRepo()
	repo.user = activeUser("pw123456")
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "user@example.com", Password: "pw123456"}, "1.2.3.4", "test")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token is revoked; a second use must fail.
	_, err = svc.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestLogoutTearsDownNoteCache(t *testing.T) {
	repo := newFakeUserRepo()
	user := activeUser("pw123456")
	repo.user = user
	cache := memory.NewNoteCache()
	svc := NewAuthService(&fakeAuthUowFactory{uow: &fakeAuthUow{userRepo: repo}}, &fakeMailer{}, cache, testAuthConfig())

	cache.Set(user.Id, []*entity.Note{{Id: uuid.New(), UserId: user.Id, Title: "n"}})

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Email: user.Email, Password: "pw123456"}, "1.2.3.4", "test")
	require.NoError(t, err)

	err = svc.Logout(context.Background(), user.Id, &dto.LogoutRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	_, found := cache.Get(user.Id)
	assert.False(t, found, "logout drops the cached note list")

	for _, tok := range repo.refreshTokens {
		assert.True(t, tok.Revoked)
	}
}
