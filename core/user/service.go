package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/dmtshikala/academia/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
	ErrCIExists    = errors.New("a user with this CI already exists")
)

type (
	Repository interface {
		// CheckUniqueness reports ErrEmailExists/ErrCIExists when another
		// user (not in excludedUsers) already holds the email or CI.
		CheckUniqueness(ctx context.Context, email, ci string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Email or User.CI.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		UpdateLastLogin(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) checkUniqueness(ctx context.Context, email, ci string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(ctx, email, ci, exclUsers...); err != nil {
		var field, msg string
		switch err {
		case ErrEmailExists:
			field, msg = "correo", "Ya existe un usuario con este correo"
		case ErrCIExists:
			field, msg = "ci", "Ya existe un usuario con esta cédula"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: msg})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.New().String(),
		Name:      nu.Name,
		Email:     nu.Email,
		CI:        nu.CI,
		Phone:     nu.Phone,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Bienvenido a Academia",
		Body:    fmt.Sprintf("Hola %s,\n\nTu cuenta ha sido creada. Ya puedes iniciar sesión con tu correo.\n", usr.Name),
	})
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllUsers(ctx)
	}
	filter.Clean()
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Email:     uu.Email,
		CI:        uu.CI,
		Phone:     uu.Phone,
		Roles:     uu.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

// ChangePassword verifies the current password and sets the new one.
// A wrong current password surfaces as a field error on password_actual so
// the form can re-prompt just that field.
func (svc *Service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) (User, error) {
	if err := usr.CheckPassword(cp.PasswordActual); err != nil {
		return User{}, core.NewValidationError(
			errors.New("contraseña actual incorrecta"),
			core.FieldError{Field: "password_actual", Error: "Contraseña actual incorrecta"},
		)
	}

	// password policy
	policy := UpdateUser{
		Name:            usr.Name,
		Email:           usr.Email,
		Password:        cp.PasswordNueva,
		PasswordConfirm: cp.PasswordNueva,
	}
	if err := core.Validate.Struct(&policy); err != nil {
		return User{}, err
	}

	if err := usr.SetPassword(cp.PasswordNueva); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()

	updated, err := svc.repo.UpdateUser(ctx, usr, nil)
	if err != nil {
		return User{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: updated.Name, Address: updated.Email}},
		Subject: "Tu contraseña ha cambiado",
		Body:    fmt.Sprintf("Hola %s,\n\nTu contraseña acaba de ser actualizada. Si no fuiste tú, contacta al administrador.\n", updated.Name),
	})
	return updated, nil
}

// UpdateOwnProfile applies the self-service profile fields to the user.
func (svc *Service) UpdateOwnProfile(ctx context.Context, usr User, up UpdateProfile) (User, error) {
	if up.Email != "" && up.Email != usr.Email {
		if err := svc.checkUniqueness(ctx, up.Email, "", usr); err != nil {
			return User{}, err
		}
		usr.Email = up.Email
	}
	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Phone != "" {
		usr.Phone = up.Phone
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateLastLogin(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
