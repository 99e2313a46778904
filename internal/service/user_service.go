package service

import (
	"context"
	"fmt"

	"cargo-shop/internal/idp"
	"cargo-shop/internal/model"
	"cargo-shop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	userRepo  repository.UserRepository
	idpClient idp.Client
	logger    zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, idpClient idp.Client, logger zerolog.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		idpClient: idpClient,
		logger:    logger.With().Str("service", "user").Logger(),
	}
}

// SyncWithIdP resolves the token subject against the identity provider,
// creating the user on first sight and refreshing stored attributes when
// the token reports a newer sign-in.
func (s *userService) SyncWithIdP(ctx context.Context, token IdPToken) (*model.User, error) {
	info, err := s.idpClient.UserInfo(ctx, token.Subject)
	if err != nil {
		s.logger.Error().Err(err).Str("subject", token.Subject).Msg("failed to resolve userinfo")
		return nil, fmt.Errorf("failed to resolve userinfo: %w", err)
	}

	incoming, err := model.NewUser(info.Email, info.FirstName, info.LastName, info.ImageURL, token.Roles)
	if err != nil {
		return nil, fmt.Errorf("invalid identity provider attributes: %w", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if existing == nil {
		if err := s.userRepo.Upsert(ctx, incoming); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info().
			Str("user_public_id", incoming.PublicID.String()).
			Str("email", incoming.Email).
			Msg("user created from identity provider")
		return incoming, nil
	}

	// Refresh only when the provider reports a sign-in newer than our last
	// stored modification.
	if !token.LastSignedIn.IsZero() && token.LastSignedIn.After(existing.LastModifiedAt) {
		existing.UpdateFrom(incoming)
		if err := s.userRepo.Upsert(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to refresh user: %w", err)
		}
		s.logger.Debug().
			Str("user_public_id", existing.PublicID.String()).
			Msg("user refreshed from identity provider")
	}

	return existing, nil
}

// GetByPublicID retrieves a user by public id. Returns nil when absent.
func (s *userService) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
