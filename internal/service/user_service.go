package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"terminal-portal/internal/auth"
	"terminal-portal/internal/model"
)

type userStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

type UserService struct {
	users userStore
}

func NewUserService(users userStore) *UserService {
	return &UserService{users: users}
}

// Authenticate checks credentials. Unknown users, inactive users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, missing("username")
	}
	if password == "" {
		return nil, missing("password")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionDenied
		}
		return nil, &TechnicalError{Op: "find user", Err: err}
	}
	if !user.Activo || !user.Rol.Valid() {
		return nil, ErrPermissionDenied
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, ErrPermissionDenied
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, principal model.Principal) ([]model.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError("list users", "usuario", "", err)
	}
	return users, nil
}

type UserInput struct {
	ID       int64
	Username string
	Rut      string
	Password string
	Rol      string
	Activo   bool
}

// Save creates (ID == 0) or updates an account. On update an empty password
// keeps the current one.
func (s *UserService) Save(ctx context.Context, principal model.Principal, input UserInput) (*model.User, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if input.ID != 0 && input.ID == principal.UserID && (!input.Activo || model.UserRole(strings.ToLower(strings.TrimSpace(input.Rol))) != principal.Role) {
		// an admin cannot lock themselves out
		return nil, ErrInvalidInput
	}
	return s.save(ctx, input)
}

// Bootstrap creates an account without a principal. It backs the admin CLI.
func (s *UserService) Bootstrap(ctx context.Context, input UserInput) (*model.User, error) {
	input.ID = 0
	input.Activo = true
	return s.save(ctx, input)
}

func (s *UserService) save(ctx context.Context, input UserInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, missing("username")
	}
	role := model.UserRole(strings.ToLower(strings.TrimSpace(input.Rol)))
	if role == "" {
		return nil, missing("rol")
	}
	if !role.Valid() {
		return nil, ErrInvalidInput
	}

	user := &model.User{
		ID:       input.ID,
		Username: username,
		Rut:      strings.TrimSpace(input.Rut),
		Rol:      role,
		Activo:   input.Activo,
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, ErrInvalidInput
		}
		user.PasswordHash = hash
	} else if user.ID == 0 {
		return nil, missing("password")
	}

	var err error
	if user.ID == 0 {
		err = s.users.Create(ctx, user)
	} else {
		err = s.users.Update(ctx, user)
	}
	if err != nil {
		return nil, storeError("save user", "usuario", username, err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, principal model.Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if id == principal.UserID {
		return ErrInvalidInput
	}
	return storeError("delete user", "usuario", "", s.users.Delete(ctx, id))
}
