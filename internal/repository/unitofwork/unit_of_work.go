package unitofwork

import (
	"context"

	"nivora-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	ProfileRepository() contract.ProfileRepository
	SystemLogRepository() contract.SystemLogRepository
}
