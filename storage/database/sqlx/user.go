// Package sqlxrepos implements the repositories over postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/dmtshikala/academia/core/user"
)

type dbUser struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Email        string       `db:"email"`
	CI           string       `db:"ci"`
	Phone        string       `db:"phone"`
	IsActive     bool         `db:"is_active"`
	Roles        string       `db:"roles"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (du dbUser) toUser() user.User {
	usr := user.User{
		ID:           du.ID,
		Name:         du.Name,
		Email:        du.Email,
		CI:           du.CI,
		Phone:        du.Phone,
		IsActive:     du.IsActive,
		PasswordHash: du.PasswordHash,
		CreatedAt:    du.CreatedAt,
		UpdatedAt:    du.UpdatedAt,
	}
	if du.Roles != "" {
		usr.Roles = strings.Split(du.Roles, ",")
	}
	if du.LastLogin.Valid {
		usr.LastLogin = du.LastLogin.Time
	}
	return usr
}

func joinRoles(roles []string) string { return strings.Join(roles, ",") }

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sql.DB) user.Repository {
	return &userRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, email, ci string, exclUsers ...user.User) error {
	exclIDs := make([]string, 0, len(exclUsers))
	for _, usr := range exclUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	check := func(column, value string, existsErr error) error {
		if value == "" {
			return nil
		}
		q := `SELECT COUNT(*) FROM "user" WHERE lower(` + column + `) = lower(?)`
		args := []interface{}{value}
		if len(exclIDs) > 0 {
			var err error
			q, args, err = sqlx.In(q+" AND id NOT IN (?)", value, exclIDs)
			if err != nil {
				return errors.Wrap(err, "building uniqueness query")
			}
		}
		var count int
		if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(q), args...); err != nil {
			return errors.Wrap(err, "checking uniqueness")
		}
		if count > 0 {
			return existsErr
		}
		return nil
	}

	if err := check("email", email, user.ErrEmailExists); err != nil {
		return err
	}
	return check("ci", ci, user.ErrCIExists)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
	INSERT INTO "user" (id, name, email, ci, phone, is_active, roles, password_hash, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.Name, usr.Email, usr.CI, usr.Phone, usr.IsActive,
		joinRoles(usr.Roles), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *userRepository) getUser(ctx context.Context, q string, args ...interface{}) (user.User, error) {
	var row dbUser
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE lower(email) = lower($1)`, email)
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	q := `SELECT * FROM "user" WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		q += ` AND (name ILIKE ? OR email ILIKE ? OR ci ILIKE ?)`
		args = append(args, args[len(args)-1], args[len(args)-1])
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		q += ` AND is_active = ?`
	}
	if !filter.CreatedFrom.IsZero() {
		args = append(args, filter.CreatedFrom)
		q += ` AND created_at >= ?`
	}
	if !filter.CreatedTo.IsZero() {
		args = append(args, filter.CreatedTo)
		q += ` AND created_at <= ?`
	}
	q += ` ORDER BY created_at`

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		usr := row.toUser()
		// roles are a CSV column; match them here
		if len(filter.Roles) > 0 {
			var found bool
			for _, role := range filter.Roles {
				if usr.HasRole(role) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		users = append(users, usr)
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	orig, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}
	if usr.Name != "" {
		orig.Name = usr.Name
	}
	if usr.Email != "" {
		orig.Email = usr.Email
	}
	if usr.CI != "" {
		orig.CI = usr.CI
	}
	if usr.Phone != "" {
		orig.Phone = usr.Phone
	}
	if usr.Roles != nil {
		orig.Roles = usr.Roles
	}
	if len(usr.PasswordHash) > 0 {
		orig.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = usr.UpdatedAt

	const q = `
	UPDATE "user"
	SET name = $2, email = $3, ci = $4, phone = $5, is_active = $6, roles = $7,
	    password_hash = $8, updated_at = $9
	WHERE id = $1`

	_, err = repo.db.ExecContext(ctx, q,
		orig.ID, orig.Name, orig.Email, orig.CI, orig.Phone, orig.IsActive,
		joinRoles(orig.Roles), orig.PasswordHash, orig.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return orig, nil
}

func (repo *userRepository) UpdateLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE "user" SET last_login = $2 WHERE id = $1`, usr.ID, usr.LastLogin)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating last login")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
