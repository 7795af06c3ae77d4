package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/dmtshikala/academia/core/user"
)

type userRepo struct {
	db *DB
}

var _ user.Repository = (*userRepo)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepo{db: db}
}

func (repo *userRepo) CheckUniqueness(ctx context.Context, email, ci string, exclUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := func(id string) bool {
		for _, u := range exclUsers {
			if u.ID == id {
				return true
			}
		}
		return false
	}
	for _, usr := range repo.db.users {
		if excluded(usr.ID) {
			continue
		}
		if email != "" && strings.EqualFold(usr.Email, email) {
			return user.ErrEmailExists
		}
		if ci != "" && usr.CI == ci {
			return user.ErrCIExists
		}
	}
	return nil
}

func (repo *userRepo) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cp := usr
	repo.db.users[usr.ID] = &cp
	return usr, nil
}

func (repo *userRepo) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (repo *userRepo) GetUserByID(ctx context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepo) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if strings.EqualFold(usr.Email, email) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepo) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	all, _ := repo.QueryAllUsers(ctx)

	matches := func(usr user.User) bool {
		if filter.Search != "" {
			search := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(usr.Name), search) &&
				!strings.Contains(strings.ToLower(usr.Email), search) &&
				!strings.Contains(strings.ToLower(usr.CI), search) {
				return false
			}
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			return false
		}
		if len(filter.Roles) > 0 {
			var found bool
			for _, role := range filter.Roles {
				if usr.HasRole(role) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
			return false
		}
		if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
			return false
		}
		return true
	}

	var users []user.User
	for _, usr := range all {
		if matches(usr) {
			users = append(users, usr)
		}
	}
	return users, nil
}

func (repo *userRepo) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
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
	return *orig, nil
}

func (repo *userRepo) UpdateLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	orig.LastLogin = usr.LastLogin
	return *orig, nil
}

func (repo *userRepo) DeleteUsersByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
	}
	return nil
}
