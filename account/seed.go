package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog"
)

// SeedAdmin creates a staff superuser with a filled-in profile unless the
// username is already taken. An existing user is left untouched.
func (s *Service) SeedAdmin(ctx context.Context, username, email, password string) error {
	_, err := s.repo.UserByUsername(ctx, username)
	if err == nil {
		zerolog.Ctx(ctx).Info().Str("username", username).Msg("admin user already present")
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username:    username,
		Email:       email,
		Password:    hash,
		FirstName:   "Admin",
		LastName:    "User",
		IsStaff:     true,
		IsSuperuser: true,
		Profile: &models.UserProfile{
			Phone:      "+1234567890",
			Address:    "123 Admin St",
			City:       "Admin City",
			State:      "Admin State",
			PostalCode: "12345",
			Country:    "Admin Country",
		},
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("username", username).Msg("admin user created")
	return nil
}
