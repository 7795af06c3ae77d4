package user

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmtshikala/academia/core"
	"github.com/dmtshikala/academia/core/access"
	"github.com/dmtshikala/academia/core/validation"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"nombre"`
	Email        string    `json:"correo"`
	CI           string    `json:"ci"`
	Phone        string    `json:"telefono"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role == name {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool   { return u.HasRole(access.RoleAdmin) }
func (u *User) IsTeacher() bool { return u.HasRole(access.RoleTeacher) }
func (u *User) IsStudent() bool { return u.HasRole(access.RoleStudent) }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"nombre" validate:"required"`
	Email           string   `json:"correo" validate:"required,email"`
	CI              string   `json:"ci" validate:"omitempty,ci_"`
	Phone           string   `json:"telefono" validate:"omitempty,phone_"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(ctx context.Context, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.CI = core.CleanString(nu.CI)
	nu.Phone = core.CleanString(nu.Phone)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Email, nu.CI)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"nombre"`
	Email           string   `json:"correo" validate:"omitempty,email"`
	CI              string   `json:"ci" validate:"omitempty,ci_"`
	Phone           string   `json:"telefono" validate:"omitempty,phone_"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, svc *Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if ci := core.CleanString(uu.CI); ci != "" {
		uu.CI = ci
	} else {
		uu.CI = origUsr.CI
	}
	if phone := core.CleanString(uu.Phone); phone != "" {
		uu.Phone = phone
	} else {
		uu.Phone = origUsr.Phone
	}

	if err := core.Validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, uu.Email, uu.CI, origUsr)
}

// ChangePassword carries a password change request. It is validated with the
// form rule engine so failures surface per field, mirroring the profile form.
type ChangePassword struct {
	PasswordActual  string `json:"password_actual"`
	PasswordNueva   string `json:"password_nueva"`
	PasswordConfirm string `json:"password_confirm"`
}

func changePasswordRules() validation.RuleSet {
	return validation.RuleSet{
		"password_actual":  {validation.Required},
		"password_nueva":   {validation.Required, validation.MinLength(8)},
		"password_confirm": {validation.Required, validation.Matches("password_nueva")},
	}
}

func (cp *ChangePassword) Validate() error {
	return validation.Check(changePasswordRules(), validation.Values{
		"password_actual":  cp.PasswordActual,
		"password_nueva":   cp.PasswordNueva,
		"password_confirm": cp.PasswordConfirm,
	})
}

// UpdateProfile defines the profile fields a user may change on themselves.
type UpdateProfile struct {
	Name  string `json:"nombre"`
	Email string `json:"correo" validate:"omitempty,email"`
	Phone string `json:"telefono" validate:"omitempty,phone_"`
}

func (up *UpdateProfile) Validate() error {
	up.Name = core.CleanString(up.Name)
	up.Email = core.CleanString(up.Email, true /* lower */)
	up.Phone = core.CleanString(up.Phone)
	return core.Validate.Struct(up)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
