package service

import (
	"context"
	"fmt"
	"time"

	"nivora-be/internal/dto"
	"nivora-be/internal/entity"
	"nivora-be/internal/pkg/serverutils"
	"nivora-be/internal/repository/specification"
	"nivora-be/internal/repository/unitofwork"
	"nivora-be/pkg/events"
	pktNats "nivora-be/pkg/nats"

	"github.com/google/uuid"
)

type IProfileService interface {
	Get(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error)
	SetAvatar(ctx context.Context, userId uuid.UUID, req *dto.UpdateAvatarRequest) (*dto.ProfileResponse, error)
}

type profileService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewProfileService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher) IProfileService {
	return &profileService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

// Get returns the user's profile, or nil when none exists yet. A missing
// profile is a normal state for fresh accounts, not an error.
func (s *profileService) Get(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error) {
	if userId == uuid.Nil {
		return nil, serverutils.NewUnauthorizedError("not authenticated")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ProfileRepository().FindOne(ctx, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	if profile == nil {
		return nil, nil
	}

	return toProfileResponse(profile), nil
}

// SetAvatar upserts the avatar URL. The check and the write run inside one
// transaction so two concurrent calls cannot both insert a row.
func (s *profileService) SetAvatar(ctx context.Context, userId uuid.UUID, req *dto.UpdateAvatarRequest) (*dto.ProfileResponse, error) {
	if userId == uuid.Nil {
		return nil, serverutils.NewUnauthorizedError("not authenticated")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	defer uow.Rollback()

	profile, err := uow.ProfileRepository().FindOne(ctx, specification.OwnedByUser{UserID: userId})
	if err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	now := time.Now()
	avatarURL := req.AvatarURL

	if profile == nil {
		profile = &entity.Profile{
			Id:        uuid.New(),
			UserId:    userId,
			AvatarURL: &avatarURL,
			CreatedAt: now,
		}
		if err := uow.ProfileRepository().Create(ctx, profile); err != nil {
			return nil, serverutils.NewGatewayError(err)
		}
	} else {
		profile.AvatarURL = &avatarURL
		profile.UpdatedAt = &now
		if err := uow.ProfileRepository().Update(ctx, profile); err != nil {
			return nil, serverutils.NewGatewayError(err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeProfileUpdated,
			Data: map[string]interface{}{
				"user_id": userId.String(),
				"message": "Profile updated successfully",
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", events.TypeProfileUpdated, err)
		}
	}

	return toProfileResponse(profile), nil
}

func toProfileResponse(p *entity.Profile) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		Id:        p.Id,
		UserId:    p.UserId,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
