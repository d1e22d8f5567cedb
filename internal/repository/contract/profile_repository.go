package contract

import (
	"context"

	"nivora-be/internal/entity"
	"nivora-be/internal/repository/specification"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	Update(ctx context.Context, profile *entity.Profile) error
	// FindOne returns (nil, nil) when no profile row exists yet.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Profile, error)
}
