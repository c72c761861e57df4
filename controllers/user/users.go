package userControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/account"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/controllers/render"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Password2       string `json:"password2"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// POST /api/accounts/register
func Register(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		confirm := req.PasswordConfirm
		if confirm == "" {
			confirm = req.Password2
		}
		u, err := svc.Register(c.Request.Context(), account.RegisterInput{
			Username:        req.Username,
			Email:           req.Email,
			Password:        req.Password,
			PasswordConfirm: confirm,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
		})
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, render.NewUserSummary(u))
	}
}

// GET /api/accounts/profile
func GetProfile(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			render.Error(c, apperr.Unauthenticated("Authentication credentials were not provided."))
			return
		}
		u, err := svc.GetProfile(c.Request.Context(), userID)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewUserDetail(u))
	}
}

// optionalDate tells a missing date_of_birth apart from an explicit null.
type optionalDate struct {
	set   bool
	value *time.Time
	bad   bool
}

func (d *optionalDate) UnmarshalJSON(b []byte) error {
	d.set = true
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		d.bad = true
		return nil
	}
	if s == "" {
		return nil
	}
	t, err := time.Parse(render.DateLayout, s)
	if err != nil {
		d.bad = true
		return nil
	}
	d.value = &t
	return nil
}

type profileFields struct {
	Phone       *string      `json:"phone"`
	PhoneNumber *string      `json:"phone_number"`
	Address     *string      `json:"address"`
	City        *string      `json:"city"`
	State       *string      `json:"state"`
	PostalCode  *string      `json:"postal_code"`
	Country     *string      `json:"country"`
	DateOfBirth optionalDate `json:"date_of_birth"`
}

// profileRequest accepts profile fields at the top level or nested under
// "profile"; nested values win.
type profileRequest struct {
	FirstName *string        `json:"first_name"`
	LastName  *string        `json:"last_name"`
	Profile   *profileFields `json:"profile"`
	profileFields
}

func (r *profileRequest) patch() (account.ProfilePatch, error) {
	merged := r.profileFields
	if n := r.Profile; n != nil {
		pick := func(dst **string, src *string) {
			if src != nil {
				*dst = src
			}
		}
		pick(&merged.Phone, n.Phone)
		pick(&merged.PhoneNumber, n.PhoneNumber)
		pick(&merged.Address, n.Address)
		pick(&merged.City, n.City)
		pick(&merged.State, n.State)
		pick(&merged.PostalCode, n.PostalCode)
		pick(&merged.Country, n.Country)
		if n.DateOfBirth.set {
			merged.DateOfBirth = n.DateOfBirth
		}
	}
	if merged.Phone == nil {
		merged.Phone = merged.PhoneNumber
	}
	if merged.DateOfBirth.bad {
		return account.ProfilePatch{}, apperr.Field("date_of_birth", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}

	p := account.ProfilePatch{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Phone:      merged.Phone,
		Address:    merged.Address,
		City:       merged.City,
		State:      merged.State,
		PostalCode: merged.PostalCode,
		Country:    merged.Country,
	}
	if merged.DateOfBirth.set {
		dob := merged.DateOfBirth.value
		p.DateOfBirth = &dob
	}
	return p, nil
}

// PUT|PATCH /api/accounts/profile. Both verbs update only the fields sent.
func UpdateProfile(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			render.Error(c, apperr.Unauthenticated("Authentication credentials were not provided."))
			return
		}
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		patch, err := req.patch()
		if err != nil {
			render.Error(c, err)
			return
		}
		u, err := svc.UpdateProfile(c.Request.Context(), userID, patch)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewUserDetail(u))
	}
}

type passwordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// PUT /api/accounts/change-password
func ChangePassword(svc *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			render.Error(c, apperr.Unauthenticated("Authentication credentials were not provided."))
			return
		}
		var req passwordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			render.BadRequest(c, "Invalid JSON body.")
			return
		}
		err := svc.ChangePassword(c.Request.Context(), userID, account.PasswordChange{
			OldPassword:     req.OldPassword,
			NewPassword:     req.NewPassword,
			NewPasswordConf: req.ConfirmPassword,
		})
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}

// PUT /api/accounts/profile-picture, multipart with the file in "avatar".
func UpdateProfilePicture(svc *account.Service, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUser(c)
		if !ok {
			render.Error(c, apperr.Unauthenticated("Authentication credentials were not provided."))
			return
		}
		file, err := c.FormFile("avatar")
		if err != nil {
			render.Error(c, apperr.Field("avatar", "No file was submitted."))
			return
		}
		if maxBytes > 0 && file.Size > maxBytes {
			render.Error(c, apperr.Field("avatar", "File is too large."))
			return
		}
		body, err := file.Open()
		if err != nil {
			render.Error(c, err)
			return
		}
		defer body.Close()

		u, err := svc.UpdateAvatar(c.Request.Context(), userID, file.Filename, body)
		if err != nil {
			render.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, render.NewUserDetail(u))
	}
}
