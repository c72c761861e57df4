package postgres

import (
	"context"

	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}
		if u.Profile == nil {
			return nil
		}
		u.Profile.UserID = u.ID
		return tx.Create(u.Profile).Error
	})
	return translate(err, "user")
}

func (r *UserRepo) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where(query, arg).First(&u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", hash)
	if res.Error == nil && res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "user")
	}
	return translate(res.Error, "user")
}

func (r *UserRepo) CreateProfile(ctx context.Context, p *models.UserProfile) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, "profile")
}

func (r *UserRepo) SaveProfile(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
		}).Error
		if err != nil {
			return err
		}
		if u.Profile == nil {
			return nil
		}
		u.Profile.UserID = u.ID
		return tx.Save(u.Profile).Error
	})
	return translate(err, "user")
}
