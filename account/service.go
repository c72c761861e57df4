// Package account registers users and maintains their profile, password
// and avatar.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/rs/zerolog"
)

const MinPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type Repository interface {
	// CreateUser inserts u and, when set, u.Profile in one transaction.
	CreateUser(ctx context.Context, u *models.User) error
	// UserByID loads the profile too; Profile is nil when none exists yet.
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, hash string) error
	CreateProfile(ctx context.Context, p *models.UserProfile) error
	// SaveProfile writes the user's names and the whole profile row together.
	SaveProfile(ctx context.Context, u *models.User) error
}

type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
	files  storage.Storage
}

func NewService(repo Repository, hasher auth.PasswordHasher, files storage.Storage) *Service {
	return &Service{repo: repo, hasher: hasher, files: files}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	errs := apperr.Fields{}
	errs.Required("username", in.Username)
	errs.Required("email", in.Email)
	errs.Required("password", in.Password)
	errs.Required("password_confirm", in.PasswordConfirm)
	if in.Username != "" && (len(in.Username) > 150 || !usernamePattern.MatchString(in.Username)) {
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if in.Email != "" && !validEmail(in.Email) {
		errs.Add("email", "Enter a valid email address.")
	}
	if in.Password != "" && len(in.Password) < MinPasswordLength {
		errs.Add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if in.Password != in.PasswordConfirm {
		errs.Add("password", "Password fields didn't match.")
	}
	if len(errs["username"]) == 0 {
		if taken, err := s.exists(ctx, s.repo.UserByUsername, in.Username); err != nil {
			return nil, err
		} else if taken {
			errs.Add("username", "A user with that username already exists.")
		}
	}
	if len(errs["email"]) == 0 {
		if taken, err := s.exists(ctx, s.repo.UserByEmail, in.Email); err != nil {
			return nil, err
		} else if taken {
			errs.Add("email", "A user with that email already exists.")
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Profile:   &models.UserProfile{},
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			return nil, apperr.Field("username", "A user with that username or email already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	zerolog.Ctx(ctx).Info().Uint("user_id", u.ID).Msg("user registered")
	return u, nil
}

func (s *Service) exists(ctx context.Context, lookup func(context.Context, string) (*models.User, error), key string) (bool, error) {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperr.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("look up user: %w", err)
	}
}

// Authenticate checks credentials for token issuance.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthenticated("No active account found with the given credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !s.hasher.Verify(u.Password, password) {
		return nil, apperr.Unauthenticated("No active account found with the given credentials")
	}
	return u, nil
}

// User loads a user by id, e.g. to re-issue tokens.
func (s *Service) User(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return u, nil
}

// GetProfile returns the user with a profile, creating an empty one for
// users registered before profiles existed.
func (s *Service) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	if u.Profile != nil {
		return u, nil
	}
	p := &models.UserProfile{UserID: u.ID}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		if !errors.Is(err, apperr.ErrDuplicate) {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		// Created concurrently; reload.
		return s.repo.UserByID(ctx, userID)
	}
	u.Profile = p
	return u, nil
}

// ProfilePatch holds the fields to change; nil means unchanged.
type ProfilePatch struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Address     *string
	City        *string
	State       *string
	PostalCode  *string
	Country     *string
	DateOfBirth **time.Time
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*models.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	errs := apperr.Fields{}
	set := func(field string, dst *string, src *string, max int) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if len(v) > max {
			errs.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", max))
			return
		}
		*dst = v
	}
	set("first_name", &u.FirstName, patch.FirstName, 150)
	set("last_name", &u.LastName, patch.LastName, 150)
	set("phone", &u.Profile.Phone, patch.Phone, 20)
	set("address", &u.Profile.Address, patch.Address, 255)
	set("city", &u.Profile.City, patch.City, 100)
	set("state", &u.Profile.State, patch.State, 100)
	set("postal_code", &u.Profile.PostalCode, patch.PostalCode, 20)
	set("country", &u.Profile.Country, patch.Country, 100)
	if patch.DateOfBirth != nil {
		u.Profile.DateOfBirth = *patch.DateOfBirth
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.SaveProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return u, nil
}

type PasswordChange struct {
	OldPassword     string
	NewPassword     string
	NewPasswordConf string
}

func (s *Service) ChangePassword(ctx context.Context, userID uint, in PasswordChange) error {
	errs := apperr.Fields{}
	errs.Required("old_password", in.OldPassword)
	errs.Required("new_password", in.NewPassword)
	if in.NewPassword != "" && len(in.NewPassword) < MinPasswordLength {
		errs.Add("new_password", "This password is too short. It must contain at least 8 characters.")
	}
	if in.NewPasswordConf != "" && in.NewPasswordConf != in.NewPassword {
		errs.Add("new_password", "Password fields didn't match.")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	u, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user %d: %w", userID, err)
	}
	if !s.hasher.Verify(u.Password, in.OldPassword) {
		return apperr.Auth("old_password", "Wrong password.")
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	zerolog.Ctx(ctx).Info().Uint("user_id", userID).Msg("password changed")
	return nil
}

// UpdateAvatar stores the new file before touching the profile. The new file
// is removed if the profile cannot be saved, the old one once it has been.
func (s *Service) UpdateAvatar(ctx context.Context, userID uint, filename string, r io.Reader) (*models.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	ref, err := s.files.Save(ctx, "avatars", filename, r)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return nil, apperr.Field("avatar", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	previous := u.Profile.Avatar
	u.Profile.Avatar = ref
	if err := s.repo.SaveProfile(ctx, u); err != nil {
		if delErr := s.files.Delete(ctx, ref); delErr != nil {
			zerolog.Ctx(ctx).Warn().Err(delErr).Str("ref", ref).Msg("failed to remove orphaned avatar")
		}
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	if previous != "" && previous != ref {
		if err := s.files.Delete(ctx, previous); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("ref", previous).Msg("failed to remove previous avatar")
		}
	}
	return u, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
