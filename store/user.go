package store

import "context"

// UserRole is the access role of an account.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleStaff UserRole = "staff"
	UserRoleUser  UserRole = "user"
)

// User is an administrative account. PasswordHash is a bcrypt hash and is
// never exposed through the API layer.
type User struct {
	ID           int32
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Department   string
	IsActive     bool
	CreatedTs    int64
	LastLoginTs  *int64
}

type FindUser struct {
	ID    *int32
	Email *string
}

// UpdateUser carries a partial update addressed by ID.
type UpdateUser struct {
	ID int32

	Name         *string
	Email        *string
	PasswordHash *string
	Department   *string
	Role         *UserRole
	IsActive     *bool
	LastLoginTs  *int64
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.ID), user, 0)
	return user, nil
}

// GetUser looks up a user, serving by-ID lookups from the cache when warm.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.Email == nil {
		if v, ok := s.userCache.Get(userCacheKey(*find.ID)); ok {
			if user, ok := v.(*User); ok {
				return user, nil
			}
		}
	}
	user, err := s.driver.GetUser(ctx, find)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.ID), user, 0)
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.ID), user, 0)
	return user, nil
}
