package contract

import (
	"context"

	"nivora-be/internal/model"
)

type SystemLogRepository interface {
	Create(ctx context.Context, entry *model.SystemLog) error
}
