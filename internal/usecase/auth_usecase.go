package usecase

import (
	"context"
	"errors"

	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/apperror"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

// NewAuthUsecase creates the identity lookup used by the auth middleware.
// Token verification happens at the gateway adapter; this only resolves the
// verified subject to a local user and role.
func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

func (uc *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.Unauthorized("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
