package memory

import (
	"context"
	"strings"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
)

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Username == u.Username || strings.EqualFold(other.Email, u.Email) {
			return apperr.ErrDuplicate
		}
	}
	u.ID = s.nextID()
	u.DateJoined = s.tick()
	if u.Profile != nil {
		u.Profile.ID = s.nextID()
		u.Profile.UserID = u.ID
		u.Profile.CreatedAt = u.DateJoined
		u.Profile.UpdatedAt = u.DateJoined
		s.profiles[u.ID] = *u.Profile
	}
	stored := *u
	stored.Profile = nil
	s.users[u.ID] = stored
	return nil
}

// withProfile copies the user and attaches a copy of its profile. Callers hold the lock.
func (s *Store) withProfile(u models.User) *models.User {
	if p, ok := s.profiles[u.ID]; ok {
		u.Profile = &p
	}
	return &u
}

func (s *Store) UserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return s.withProfile(u), nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return s.withProfile(u), nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return s.withProfile(u), nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (s *Store) UpdatePassword(_ context.Context, userID uint, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperr.NotFound("user")
	}
	u.Password = hash
	s.users[userID] = u
	return nil
}

func (s *Store) CreateProfile(_ context.Context, p *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.UserID]; !ok {
		return apperr.NotFound("user")
	}
	if _, ok := s.profiles[p.UserID]; ok {
		return apperr.ErrDuplicate
	}
	p.ID = s.nextID()
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	s.profiles[p.UserID] = *p
	return nil
}

func (s *Store) SaveProfile(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[u.ID]
	if !ok {
		return apperr.NotFound("user")
	}
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	s.users[u.ID] = stored
	if u.Profile != nil {
		u.Profile.UserID = u.ID
		u.Profile.UpdatedAt = s.tick()
		s.profiles[u.ID] = *u.Profile
	}
	return nil
}
