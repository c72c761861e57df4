package render

import (
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
)

type UserSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Profile struct {
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	DateOfBirth *string   `json:"date_of_birth"`
	Avatar      *string   `json:"avatar"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserDetail struct {
	UserSummary
	Profile *Profile `json:"profile"`
}

const DateLayout = "2006-01-02"

func NewUserSummary(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

func NewUserDetail(u *models.User) UserDetail {
	d := UserDetail{UserSummary: NewUserSummary(u)}
	if p := u.Profile; p != nil {
		d.Profile = &Profile{
			Phone:      p.Phone,
			Address:    p.Address,
			City:       p.City,
			State:      p.State,
			PostalCode: p.PostalCode,
			Country:    p.Country,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
		}
		if p.DateOfBirth != nil {
			dob := p.DateOfBirth.Format(DateLayout)
			d.Profile.DateOfBirth = &dob
		}
		if p.Avatar != "" {
			avatar := p.Avatar
			d.Profile.Avatar = &avatar
		}
	}
	return d
}
