package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"nivora-be/internal/config"
	"nivora-be/internal/dto"
	"nivora-be/internal/entity"
	"nivora-be/internal/pkg/mailer"
	"nivora-be/internal/pkg/serverutils"
	"nivora-be/internal/repository/memory"
	"nivora-be/internal/repository/specification"
	"nivora-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userId uuid.UUID, req *dto.LogoutRequest) error
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	noteCache    *memory.NoteCache
	authCfg      config.AuthConfig
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	noteCache *memory.NoteCache,
	authCfg config.AuthConfig,
) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		emailService: emailService,
		noteCache:    noteCache,
		authCfg:      authCfg,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	if existing != nil {
		return nil, serverutils.NewConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: &hashStr,
		Role:         entity.UserRoleUser,
		Status:       entity.UserStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// User plus verification token land atomically.
	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	otpCode, err := generateOTP()
	if err != nil {
		return nil, err
	}

	verificationToken := &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     otpCode,
		ExpiresAt: time.Now().Add(time.Duration(s.authCfg.VerificationsTTL) * time.Minute),
		CreatedAt: time.Now(),
	}

	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, verificationToken); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	go func() {
		if emailErr := s.emailService.SendOTP(user.Email, otpCode); emailErr != nil {
			fmt.Printf("Error sending registration email: %v\n", emailErr)
		}
	}()

	return &dto.RegisterResponse{Id: user.Id, Email: user.Email}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return serverutils.NewGatewayError(err)
	}
	if user == nil {
		return serverutils.NewNotFoundError("user not found")
	}
	if user.Status == entity.UserStatusActive {
		return nil
	}

	tokenEntity, err := uow.UserRepository().FindEmailVerificationToken(ctx, user.Id, req.Token)
	if err != nil {
		return serverutils.NewGatewayError(err)
	}
	if tokenEntity == nil {
		return serverutils.NewValidationError("invalid otp code")
	}
	if time.Now().After(tokenEntity.ExpiresAt) {
		return serverutils.NewValidationError("otp code expired")
	}

	if err := uow.Begin(ctx); err != nil {
		return serverutils.NewGatewayError(err)
	}
	defer uow.Rollback()

	now := time.Now()
	user.Status = entity.UserStatusActive
	user.EmailVerified = true
	user.EmailVerifiedAt = &now
	user.UpdatedAt = now
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return serverutils.NewGatewayError(err)
	}

	if err := uow.UserRepository().DeleteEmailVerificationTokens(ctx, user.Id); err != nil {
		return serverutils.NewGatewayError(err)
	}

	if err := uow.Commit(); err != nil {
		return serverutils.NewGatewayError(err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	if user == nil || user.PasswordHash == nil {
		// Same error as a bad password so the response leaks nothing.
		return nil, serverutils.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serverutils.NewUnauthorizedError("invalid credentials")
	}

	if user.Status == entity.UserStatusPending || !user.EmailVerified {
		return nil, serverutils.NewUnauthorizedError("email not verified")
	}

	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	rawRefreshToken := uuid.New().String()
	refreshTokenEntity := &entity.UserRefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hashToken(rawRefreshToken),
		ExpiresAt: time.Now().Add(time.Duration(s.authCfg.RefreshTokenTTL) * time.Hour),
		Revoked:   false,
		IpAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, refreshTokenEntity); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: rawRefreshToken,
		User: dto.UserSummary{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	stored, err := uow.UserRepository().FindRefreshTokenByHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	if stored == nil || stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, serverutils.NewUnauthorizedError("invalid refresh token")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: stored.UserId})
	if err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	if user == nil {
		return nil, serverutils.NewUnauthorizedError("invalid refresh token")
	}

	accessToken, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}

	// Rotate: the presented token dies, a fresh one takes its place.
	if err := uow.UserRepository().RevokeRefreshToken(ctx, stored.Id); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	rawRefreshToken := uuid.New().String()
	rotated := &entity.UserRefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hashToken(rawRefreshToken),
		ExpiresAt: time.Now().Add(time.Duration(s.authCfg.RefreshTokenTTL) * time.Hour),
		Revoked:   false,
		IpAddress: stored.IpAddress,
		UserAgent: stored.UserAgent,
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, rotated); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: rawRefreshToken,
		User: dto.UserSummary{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}

func (s *authService) Logout(ctx context.Context, userId uuid.UUID, req *dto.LogoutRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	stored, err := uow.UserRepository().FindRefreshTokenByHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		return serverutils.NewGatewayError(err)
	}
	if stored != nil && stored.UserId == userId {
		if err := uow.UserRepository().RevokeRefreshToken(ctx, stored.Id); err != nil {
			return serverutils.NewGatewayError(err)
		}
	}

	// Session teardown drops the cached note list with it.
	if s.noteCache != nil {
		s.noteCache.Invalidate(userId)
	}
	return nil
}

func (s *authService) signAccessToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Duration(s.authCfg.AccessTokenTTL) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.authCfg.JwtSecret))
}
